// Command kerf evaluates a kerf script and prints the plane sections it
// requests.
//
// Usage:
//
//	kerf [-json] [-timeout d] [-kernel sdfx|manifold] [-cells n] [-segments n] [-v] script.kerf
//
// A script of "-" is read from standard input.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/kernel/manifold"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
)

// errScript marks a script that evaluated with errors; they have already
// been printed.
var errScript = errors.New("script has errors")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errScript) {
			fmt.Fprintln(os.Stderr, "kerf:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("kerf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the result as JSON")
	timeout := fs.Duration("timeout", engine.EvalTimeout, "evaluation time limit")
	kernelName := fs.String("kernel", "sdfx", "geometry kernel: sdfx or manifold")
	cells := fs.Int("cells", sdfx.DefaultMeshCells, "marching cubes resolution for sdfx solids")
	segments := fs.Int("segments", manifold.DefaultSegments, "circular resolution for manifold solids")
	verbose := fs.Bool("v", false, "log debug records to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: kerf [flags] script.kerf")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one script, got %d", fs.NArg())
	}
	if *cells <= 0 {
		return fmt.Errorf("-cells must be positive, got %d", *cells)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	source, err := readScript(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	app, err := NewApp(Config{
		Options:  engine.Options{Timeout: *timeout},
		Kernel:   *kernelName,
		Cells:    *cells,
		Segments: *segments,
	}, log)
	if err != nil {
		return err
	}
	result := app.Evaluate(string(source))

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else {
		printText(stdout, stderr, result)
	}
	if len(result.Errors) > 0 {
		return errScript
	}
	return nil
}

func readScript(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return b, nil
}

// printText writes sections to w and errors to errw.
func printText(w, errw io.Writer, result EvalResult) {
	for _, e := range result.Errors {
		fmt.Fprintln(errw, e.Error())
	}
	for _, s := range result.Sections {
		o, n := s.Plane.Origin, s.Plane.Normal
		fmt.Fprintf(w, "%s %q: origin (%g %g %g) normal (%g %g %g), %d paths, perimeter %.6g\n",
			s.Mode, s.Name, o.X, o.Y, o.Z, n.X, n.Y, n.Z, len(s.Paths), s.Perimeter)
		for i, p := range s.Paths {
			kind := "open"
			if p.Closed {
				kind = "closed"
			}
			fmt.Fprintf(w, "  path %d: %s, %d points\n", i, kind, p.Len())
			for _, v := range p.Points {
				fmt.Fprintf(w, "    %.6g %.6g %.6g\n", v.X, v.Y, v.Z)
			}
		}
	}
}
