package pipeline

import (
	"context"
	"errors"
	"sync"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"
)

// ErrBusy is returned by Submit while a request is in flight.
var ErrBusy = errors.New("a request is already in progress")

// FetchFunc performs one request. ctx is cancelled when the request is
// superseded or the executor is reset.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// -----------------------------------------------------------------------------

// Executor is the Idle -> Loading -> Success | Failure state machine of one
// screen. Every run gets a generation number; a response is applied only if
// its generation is still the current one, so the last request always wins.
type Executor[T any] struct {
	mu         sync.Mutex
	state      models.MQueryResult[T]
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	onChange   func(models.MQueryResult[T])
}

// -----------------------------------------------------------------------------

// NewExecutor creates an idle executor. onChange, if set, is called after
// every applied transition with a snapshot of the new state.
func NewExecutor[T any](onChange func(models.MQueryResult[T])) *Executor[T] {
	return &Executor[T]{onChange: onChange}
}

// -----------------------------------------------------------------------------

// Submit starts fetch from Idle, Success or Failure. While Loading it returns
// ErrBusy and leaves the running request alone.
func (e *Executor[T]) Submit(fetch FetchFunc[T]) (uint64, error) {
	e.mu.Lock()
	if e.state.Status == models.StatusLoading {
		e.mu.Unlock()
		return 0, ErrBusy
	}
	gen, snapshot, launch := e.startLocked(fetch)
	e.mu.Unlock()

	e.notify(snapshot)
	launch()
	return gen, nil
}

// -----------------------------------------------------------------------------

// Supersede starts fetch regardless of state. A request still in flight is
// cancelled and its response, if it arrives anyway, is discarded.
func (e *Executor[T]) Supersede(fetch FetchFunc[T]) uint64 {
	e.mu.Lock()
	gen, snapshot, launch := e.startLocked(fetch)
	e.mu.Unlock()

	e.notify(snapshot)
	launch()
	return gen
}

// -----------------------------------------------------------------------------

// startLocked moves to Loading under e.mu. The returned launch starts the
// fetch; callers run it after publishing the Loading snapshot.
func (e *Executor[T]) startLocked(fetch FetchFunc[T]) (uint64, models.MQueryResult[T], func()) {
	if e.cancel != nil {
		e.cancel()
	}
	e.generation++
	gen := e.generation

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.state = models.MQueryResult[T]{Status: models.StatusLoading, Generation: gen}
	snapshot := e.state

	launch := func() { go e.run(ctx, gen, done, fetch) }
	return gen, snapshot, launch
}

// -----------------------------------------------------------------------------

func (e *Executor[T]) run(ctx context.Context, gen uint64, done chan struct{}, fetch FetchFunc[T]) {
	defer close(done)

	records, err := e.safeFetch(ctx, fetch)

	e.mu.Lock()
	if gen != e.generation {
		// superseded
		e.mu.Unlock()
		return
	}
	if err != nil {
		de := helpers.AsDashboardError(err)
		e.state = models.MQueryResult[T]{
			Status:     models.StatusFailure,
			Message:    de.UserMessage(),
			ErrorKind:  de.Kind.String(),
			Generation: gen,
		}
	} else {
		if records == nil {
			records = []T{}
		}
		e.state = models.MQueryResult[T]{Status: models.StatusSuccess, Records: records, Generation: gen}
	}
	e.cancel = nil
	snapshot := e.state
	e.mu.Unlock()

	e.notify(snapshot)
}

// -----------------------------------------------------------------------------

// safeFetch turns a panic in fetch into a transport failure.
func (e *Executor[T]) safeFetch(ctx context.Context, fetch FetchFunc[T]) (records []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = helpers.NewTransportError("Unexpected error while loading records.", 0, nil)
		}
	}()
	return fetch(ctx)
}

// -----------------------------------------------------------------------------

// State returns a snapshot of the current state.
func (e *Executor[T]) State() models.MQueryResult[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// -----------------------------------------------------------------------------

// Reset cancels any request in flight and returns to Idle.
func (e *Executor[T]) Reset() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
	e.state = models.MQueryResult[T]{Status: models.StatusIdle, Generation: e.generation}
	snapshot := e.state
	e.mu.Unlock()

	e.notify(snapshot)
}

// -----------------------------------------------------------------------------

// Wait blocks until the most recently started request has resolved or ctx
// is done.
func (e *Executor[T]) Wait(ctx context.Context) error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (e *Executor[T]) notify(state models.MQueryResult[T]) {
	if e.onChange != nil {
		e.onChange(state)
	}
}
