package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/models"
	"trade-dashboard/src/network"
)

// Outcome results.
const (
	ResultSuccess    = "success"
	ResultFailure    = "failure"
	ResultAuth       = "auth"
	ResultValidation = "validation"
	ResultBusy       = "busy"
	ResultCancelled  = "cancelled"
)

const (
	ActionQuery  = "query"
	ActionLoad   = "load"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// -----------------------------------------------------------------------------

// Outcome describes one submission, accepted or not.
type Outcome struct {
	Screen   string
	Action   string // query | load | create | update | delete
	Criteria models.MFilterCriteria
	Request  string
	Result   string // one of the Result* constants
	Message  string
	Duration time.Duration
}

// Observer receives state transitions and submission outcomes. Both calls
// must return quickly; they run on the request path.
type Observer interface {
	StateChanged(screen string, status models.QueryStatus, generation uint64)
	Submitted(outcome Outcome)
}

// -----------------------------------------------------------------------------

// Pipeline wires filter state, validation, request building and the
// executor for one inquiry screen over records of type T.
type Pipeline[T any] struct {
	screen   string
	rules    Rules
	endpoint EndpointSpec
	client   interfaces.IBackendClient
	observer Observer
	exec     *Executor[T]

	mu       sync.Mutex
	criteria models.MFilterCriteria
	invalid  string
	lastReq  *models.MRequest
	lastCrit models.MFilterCriteria
}

// -----------------------------------------------------------------------------

func NewPipeline[T any](screen string, rules Rules, endpoint EndpointSpec, client interfaces.IBackendClient, observer Observer) *Pipeline[T] {
	p := &Pipeline[T]{
		screen:   screen,
		rules:    rules,
		endpoint: endpoint,
		client:   client,
		observer: observer,
	}
	p.exec = NewExecutor[T](func(state models.MQueryResult[T]) {
		if p.observer != nil {
			p.observer.StateChanged(p.screen, state.Status, state.Generation)
		}
	})
	return p
}

// -----------------------------------------------------------------------------

// Submit validates c and, if it passes, starts the query. A validation
// failure returns a KindValidation error and issues no request; a request
// already in flight yields ErrBusy.
func (p *Pipeline[T]) Submit(c models.MFilterCriteria) error {
	p.mu.Lock()
	p.criteria = c

	if err := Validate(c, p.rules); err != nil {
		p.invalid = helpers.AsDashboardError(err).UserMessage()
		p.mu.Unlock()
		p.report(Outcome{Screen: p.screen, Action: ActionQuery, Criteria: c, Result: ResultValidation, Message: p.invalid})
		return err
	}
	p.invalid = ""

	req := p.endpoint.Build(c)
	if _, err := p.exec.Submit(p.fetcher(c, req)); err != nil {
		p.mu.Unlock()
		p.report(Outcome{Screen: p.screen, Action: ActionQuery, Criteria: c, Request: req.URL(), Result: ResultBusy, Message: err.Error()})
		return err
	}
	p.lastReq = &req
	p.lastCrit = c
	p.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------

// Refresh re-runs the last accepted request, superseding one in flight.
// It is a no-op before the first accepted submission.
func (p *Pipeline[T]) Refresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastReq == nil {
		return false
	}
	p.exec.Supersede(p.fetcher(p.lastCrit, *p.lastReq))
	return true
}

// -----------------------------------------------------------------------------

func (p *Pipeline[T]) fetcher(c models.MFilterCriteria, req models.MRequest) FetchFunc[T] {
	return func(ctx context.Context) ([]T, error) {
		start := time.Now()
		records, err := network.FetchList[T](ctx, p.client, req)
		elapsed := time.Since(start)

		ObserveDuration(p.screen, elapsed)
		result, message := ClassifyRun(ctx, err)
		p.report(Outcome{
			Screen:   p.screen,
			Action:   ActionQuery,
			Criteria: c,
			Request:  req.URL(),
			Result:   result,
			Message:  message,
			Duration: elapsed,
		})
		return records, err
	}
}

// -----------------------------------------------------------------------------

func (p *Pipeline[T]) report(o Outcome) {
	Report(p.observer, o)
}

// Classify maps err to an outcome result and its user-facing message.
func Classify(err error) (string, string) {
	if err == nil {
		return ResultSuccess, ""
	}
	if IsBusy(err) {
		return ResultBusy, err.Error()
	}
	de := helpers.AsDashboardError(err)
	switch de.Kind {
	case helpers.KindAuth:
		return ResultAuth, de.UserMessage()
	case helpers.KindValidation:
		return ResultValidation, de.UserMessage()
	}
	return ResultFailure, de.UserMessage()
}

// ClassifyRun is Classify for a fetch that ran under ctx. A run whose ctx was
// cancelled was superseded or reset; its result is never shown.
func ClassifyRun(ctx context.Context, err error) (string, string) {
	if ctx.Err() != nil {
		return ResultCancelled, ""
	}
	return Classify(err)
}

// Report counts o and hands it to observer, which may be nil.
func Report(observer Observer, o Outcome) {
	queryCounters.WithLabelValues(o.Screen, o.Result).Inc()
	if observer != nil {
		observer.Submitted(o)
	}
}

// ObserveDuration records the backend round trip of one request.
func ObserveDuration(screen string, d time.Duration) {
	queryDurations.WithLabelValues(screen).Observe(d.Seconds())
}

// -----------------------------------------------------------------------------

func (p *Pipeline[T]) Screen() string {
	return p.screen
}

// Criteria returns the last submitted filter values.
func (p *Pipeline[T]) Criteria() models.MFilterCriteria {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.criteria
}

// Refreshable reports whether there is an accepted request to re-run.
func (p *Pipeline[T]) Refreshable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReq != nil
}

// ValidationMessage is the inline message of the last rejected submission,
// cleared by the next accepted one.
func (p *Pipeline[T]) ValidationMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invalid
}

func (p *Pipeline[T]) State() models.MQueryResult[T] {
	return p.exec.State()
}

func (p *Pipeline[T]) Wait(ctx context.Context) error {
	return p.exec.Wait(ctx)
}

// Reset clears criteria and results, cancelling any request in flight.
func (p *Pipeline[T]) Reset() {
	p.mu.Lock()
	p.criteria = models.MFilterCriteria{}
	p.invalid = ""
	p.lastReq = nil
	p.lastCrit = models.MFilterCriteria{}
	p.mu.Unlock()
	p.exec.Reset()
}

// -----------------------------------------------------------------------------

// IsBusy reports whether err is the rejection of a re-entrant submit.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
