package main

import (
	"fmt"
	"log/slog"

	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/manifold"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
	"github.com/chazu/kerf/pkg/section"
)

// colorPalette is a default palette used to assign distinct colors to sections.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the scripting engine to a geometry kernel.
type App struct {
	engine *engine.Engine
	log    *slog.Logger
}

// SectionData is the JSON-serializable form of one section.
type SectionData struct {
	Name      string         `json:"name"`
	Mode      section.Mode   `json:"mode"`
	Plane     section.Plane  `json:"plane"`
	Paths     []section.Path `json:"paths"`
	Perimeter float64        `json:"perimeter"`
	Color     string         `json:"color"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Sections []SectionData      `json:"sections"`
	Errors   []engine.EvalError `json:"errors"`
}

// Config is what the command line controls.
type Config struct {
	engine.Options
	// Kernel names the geometry backend: "sdfx" (the default) or
	// "manifold".
	Kernel string
	// Cells is the sdfx marching cubes resolution.
	Cells int
	// Segments is the Manifold circular resolution.
	Segments int
}

func newKernel(cfg Config) (kernel.Kernel, error) {
	switch cfg.Kernel {
	case "", "sdfx":
		return sdfx.New(sdfx.Options{Cells: cfg.Cells}), nil
	case "manifold":
		return manifold.New(manifold.Options{Segments: cfg.Segments})
	}
	return nil, fmt.Errorf("unknown kernel %q", cfg.Kernel)
}

// NewApp creates a new App with an engine and the configured kernel.
func NewApp(cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	k, err := newKernel(cfg)
	if err != nil {
		return nil, err
	}
	opts := cfg.Options
	opts.Logger = log
	return &App{
		engine: engine.NewEngine(k, opts),
		log:    log,
	}, nil
}

// Evaluate runs a script and returns its sections or errors. Fatal engine
// failures come back as a single error without line information.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Sections: []SectionData{},
		Errors:   []engine.EvalError{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, engine.EvalError{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		return result
	}

	for i, s := range res.Sections {
		var perimeter float64
		for _, p := range s.Paths {
			perimeter += p.Perimeter()
		}
		paths := s.Paths
		if paths == nil {
			paths = []section.Path{}
		}
		result.Sections = append(result.Sections, SectionData{
			Name:      s.Name,
			Mode:      s.Mode,
			Plane:     s.Plane,
			Paths:     paths,
			Perimeter: perimeter,
			Color:     colorPalette[i%len(colorPalette)],
		})
	}
	return result
}
