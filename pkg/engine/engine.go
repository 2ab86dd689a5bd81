// Package engine provides the Lisp evaluation engine for kerf.
// It wraps zygomys in a sandboxed environment; scripts build solids and
// meshes and request plane sections of them, which Evaluate collects into
// a Result.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/section"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Section is one cut requested by a script.
type Section struct {
	Name  string         `json:"name"`
	Mode  section.Mode   `json:"mode"`
	Plane section.Plane  `json:"plane"`
	Paths []section.Path `json:"paths"`
}

// Result is everything a script produced, sections in the order the
// script requested them.
type Result struct {
	Sections []Section `json:"sections"`
}

// Lookup returns the section with the given name, or nil.
func (r *Result) Lookup(name string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return &r.Sections[i]
		}
	}
	return nil
}

func (r *Result) add(s Section) error {
	if r.Lookup(s.Name) != nil {
		return fmt.Errorf("section %q already defined", s.Name)
	}
	r.Sections = append(r.Sections, s)
	return nil
}

// Options configures an Engine.
type Options struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration
	// Logger receives debug records. Nil means slog.Default().
	Logger *slog.Logger
}

// Engine wraps the zygomys interpreter for kerf scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	kernel  kernel.Kernel
	timeout time.Duration
	log     *slog.Logger

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine that builds solids with k. With a nil k,
// scripts can still cut literal meshes but the solid builtins fail.
func NewEngine(k kernel.Kernel, opts Options) *Engine {
	e := &Engine{kernel: k, timeout: opts.Timeout, log: opts.Logger}
	if e.timeout <= 0 {
		e.timeout = EvalTimeout
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Evaluate runs a kerf script and returns the sections it requested.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	start := time.Now()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	res, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	attrs := []any{"generation", gen, "elapsed", time.Since(start), "errors", len(evalErrs)}
	if res != nil {
		attrs = append(attrs, "sections", len(res.Sections))
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	e.log.Debug("evaluate", attrs...)
	return res, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	res := &Result{}

	// Empty source is a valid program that produces no sections.
	if strings.TrimSpace(source) == "" {
		return res, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, e.kernel, res)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
