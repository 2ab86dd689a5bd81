package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past its time limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to an evaluation that finished after a
	// newer one had started on the same Engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries the sections a script requested, or its script
// errors, from the evaluating goroutine back to Evaluate.
type evalResult struct {
	result *Result
	errors []EvalError
	err    error
}

// waitWithTimeout returns the outcome sent on ch unless timeout passes
// first. Outcomes from generations older than *currentGen are discarded.
// A timed-out goroutine keeps running and its late send goes to the
// buffered channel unread.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*Result, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case out := <-ch:
		mu.Lock()
		stale := gen != *currentGen
		mu.Unlock()
		if stale {
			return nil, nil, ErrSuperseded
		}
		return out.result, out.errors, out.err
	}
}
