package screens

import (
	"context"
	"net/url"
	"time"

	"trade-dashboard/src/grid"
	"trade-dashboard/src/inspector"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/models"
	"trade-dashboard/src/pipeline"
)

// Screen is the type-erased view of a screen used by the HTTP layer.
type Screen interface {
	Definition() Definition
	Render(opts grid.Options) grid.Page
	Inspect(rowKey string) (inspector.View, bool)
	Status() (models.QueryStatus, uint64)
	// Snapshot is the current query result, ready for JSON encoding.
	Snapshot() interface{}
	Wait(ctx context.Context) error
}

// InquiryScreen is a Screen with a filter form.
type InquiryScreen interface {
	Screen
	SubmitForm(values url.Values) error
	Form() FormValues
	ValidationMessage() string
	// EnsureLoaded queries the default criteria of an AutoLoad screen that
	// has never been submitted.
	EnsureLoaded(now time.Time) bool
	// Refresh re-runs the last accepted query; false when there is none.
	Refresh() bool
	Refreshable() bool
}

// -----------------------------------------------------------------------------

// Inquiry binds a Definition to a pipeline over records of type T.
type Inquiry[T grid.Record] struct {
	def      Definition
	pipeline *pipeline.Pipeline[T]
	loc      *time.Location
	defaults func(now time.Time) models.MFilterCriteria
}

// -----------------------------------------------------------------------------

func NewInquiry[T grid.Record](def Definition, client interfaces.IBackendClient, observer pipeline.Observer, loc *time.Location) *Inquiry[T] {
	if loc == nil {
		loc = time.UTC
	}
	return &Inquiry[T]{
		def:      def,
		pipeline: pipeline.NewPipeline[T](def.Name, def.Rules, def.Endpoint, client, observer),
		loc:      loc,
	}
}

// WithDefaults sets the criteria used by EnsureLoaded.
func (q *Inquiry[T]) WithDefaults(fn func(now time.Time) models.MFilterCriteria) *Inquiry[T] {
	q.defaults = fn
	return q
}

// -----------------------------------------------------------------------------

func (q *Inquiry[T]) Definition() Definition {
	return q.def
}

// SubmitForm parses the posted filter and submits it.
func (q *Inquiry[T]) SubmitForm(values url.Values) error {
	c, err := ParseCriteria(values, q.def.InputLayout, q.loc)
	if err != nil {
		return err
	}
	return q.pipeline.Submit(c)
}

func (q *Inquiry[T]) Refresh() bool {
	return q.pipeline.Refresh()
}

func (q *Inquiry[T]) Refreshable() bool {
	return q.pipeline.Refreshable()
}

func (q *Inquiry[T]) Submit(c models.MFilterCriteria) error {
	return q.pipeline.Submit(c)
}

// -----------------------------------------------------------------------------

func (q *Inquiry[T]) EnsureLoaded(now time.Time) bool {
	if !q.def.AutoLoad || q.defaults == nil {
		return false
	}
	if q.pipeline.State().Status != models.StatusIdle || !q.pipeline.Criteria().IsEmpty() {
		return false
	}
	return q.pipeline.Submit(q.defaults(now)) == nil
}

// -----------------------------------------------------------------------------

func (q *Inquiry[T]) Form() FormValues {
	c := q.pipeline.Criteria()
	if c.IsEmpty() && q.defaults != nil {
		c = q.defaults(time.Now())
	}
	return ToFormValues(c, q.def.InputLayout, q.loc)
}

func (q *Inquiry[T]) ValidationMessage() string {
	return q.pipeline.ValidationMessage()
}

// -----------------------------------------------------------------------------

func (q *Inquiry[T]) Render(opts grid.Options) grid.Page {
	if opts.EmptyText == "" {
		opts.EmptyText = q.def.EmptyText
	}
	if opts.Actions == nil {
		opts.Actions = q.def.Actions
	}
	return grid.Render(q.pipeline.State(), q.def.Columns, opts)
}

// Inspect formats the payload of one row of the current result. It never
// refetches or changes the result.
func (q *Inquiry[T]) Inspect(rowKey string) (inspector.View, bool) {
	state := q.pipeline.State()
	if state.Status != models.StatusSuccess {
		return inspector.View{}, false
	}
	record, ok := grid.FindByKey(state.Records, rowKey)
	if !ok {
		return inspector.View{}, false
	}
	p, ok := any(record).(grid.Payloader)
	if !ok {
		return inspector.View{}, false
	}
	return inspector.Inspect(p.Payload()), true
}

// -----------------------------------------------------------------------------

func (q *Inquiry[T]) Status() (models.QueryStatus, uint64) {
	s := q.pipeline.State()
	return s.Status, s.Generation
}

func (q *Inquiry[T]) Snapshot() interface{} {
	return q.pipeline.State()
}

func (q *Inquiry[T]) State() models.MQueryResult[T] {
	return q.pipeline.State()
}

func (q *Inquiry[T]) Wait(ctx context.Context) error {
	return q.pipeline.Wait(ctx)
}

func (q *Inquiry[T]) Reset() {
	q.pipeline.Reset()
}
