package screens

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"trade-dashboard/src/grid"
	"trade-dashboard/src/inspector"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/models"
	"trade-dashboard/src/network"
	"trade-dashboard/src/pipeline"
)

const fundsResource = "/api/funds"

const (
	MsgFundCreated = "Fund created successfully!"
	MsgFundUpdated = "Fund updated successfully!"
	MsgFundDeleted = "Fund deleted successfully!"
)

// ErrConfirmationRequired is returned by Delete until the user confirms.
var ErrConfirmationRequired = errors.New("delete requires confirmation")

// NoticeSink receives the transient notices of fund mutations.
type NoticeSink interface {
	Push(severity models.NoticeSeverity, message string)
}

// -----------------------------------------------------------------------------

// FundMaster is the fund reference table: a full list query plus create,
// update and delete. Every successful mutation re-fetches the whole list;
// a failed one leaves the list as it was.
type FundMaster struct {
	client   interfaces.IBackendClient
	observer pipeline.Observer
	notices  NoticeSink
	exec     *pipeline.Executor[models.MFundRecord]
	def      Definition
}

// -----------------------------------------------------------------------------

func NewFundMaster(client interfaces.IBackendClient, observer pipeline.Observer, notices NoticeSink) *FundMaster {
	fm := &FundMaster{
		client:   client,
		observer: observer,
		notices:  notices,
		def: Definition{
			Name:      Funds,
			Title:     "Fund Master",
			Columns:   FundColumns(),
			EmptyText: EmptyFunds,
			Actions:   []grid.Action{{Name: "edit", Label: "Edit"}, {Name: "delete", Label: "Delete"}},
			AutoLoad:  true,
		},
	}
	// Only applied transitions reach here, so a superseded load raises no notice.
	fm.exec = pipeline.NewExecutor[models.MFundRecord](func(state models.MQueryResult[models.MFundRecord]) {
		if fm.observer != nil {
			fm.observer.StateChanged(Funds, state.Status, state.Generation)
		}
		if state.Status == models.StatusFailure {
			fm.push(models.SeverityError, state.Message)
		}
	})
	return fm
}

// -----------------------------------------------------------------------------

// Load fetches the full fund list, superseding a load in flight.
func (fm *FundMaster) Load() uint64 {
	return fm.exec.Supersede(fm.fetchAll)
}

// EnsureLoaded loads the list on the first visit.
func (fm *FundMaster) EnsureLoaded(time.Time) bool {
	if fm.exec.State().Status != models.StatusIdle {
		return false
	}
	fm.Load()
	return true
}

func (fm *FundMaster) fetchAll(ctx context.Context) ([]models.MFundRecord, error) {
	req := models.MRequest{Method: http.MethodGet, Path: fundsResource}
	start := time.Now()
	records, err := network.FetchList[models.MFundRecord](ctx, fm.client, req)
	elapsed := time.Since(start)

	pipeline.ObserveDuration(Funds, elapsed)
	result, message := pipeline.ClassifyRun(ctx, err)
	pipeline.Report(fm.observer, pipeline.Outcome{
		Screen:   Funds,
		Action:   pipeline.ActionLoad,
		Request:  req.URL(),
		Result:   result,
		Message:  message,
		Duration: elapsed,
	})
	return records, err
}

// -----------------------------------------------------------------------------

// Create validates f against the loaded list and posts it.
func (fm *FundMaster) Create(ctx context.Context, values url.Values) error {
	f, err := ParseFund(values)
	if err == nil {
		err = pipeline.ValidateFundCreate(f, fm.exec.State().Records)
	}
	if err != nil {
		return fm.fail(pipeline.ActionCreate, fundsResource, err, 0)
	}
	req := models.MRequest{Method: http.MethodPost, Path: fundsResource, Body: f}
	return fm.mutate(ctx, pipeline.ActionCreate, req, MsgFundCreated)
}

// -----------------------------------------------------------------------------

// Update replaces the fund id with the posted values. The id itself never
// changes.
func (fm *FundMaster) Update(ctx context.Context, id string, values url.Values) error {
	path := fundsResource + "/" + url.PathEscape(id)
	f, err := ParseFund(values)
	if err == nil {
		f.FundID = id
		err = pipeline.ValidateFundUpdate(f)
	}
	if err != nil {
		return fm.fail(pipeline.ActionUpdate, path, err, 0)
	}
	req := models.MRequest{Method: http.MethodPut, Path: path, Body: f}
	return fm.mutate(ctx, pipeline.ActionUpdate, req, MsgFundUpdated)
}

// -----------------------------------------------------------------------------

// Delete removes fund id. Without confirmed it returns
// ErrConfirmationRequired and sends nothing.
func (fm *FundMaster) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	req := models.MRequest{Method: http.MethodDelete, Path: fundsResource + "/" + url.PathEscape(id)}
	return fm.mutate(ctx, pipeline.ActionDelete, req, MsgFundDeleted)
}

// -----------------------------------------------------------------------------

func (fm *FundMaster) mutate(ctx context.Context, action string, req models.MRequest, success string) error {
	start := time.Now()
	body, err := fm.client.Send(ctx, req)
	if err == nil {
		err = network.CheckAck(body)
	}
	elapsed := time.Since(start)
	pipeline.ObserveDuration(Funds, elapsed)

	if err != nil {
		return fm.fail(action, req.Method+" "+req.URL(), err, elapsed)
	}

	pipeline.Report(fm.observer, pipeline.Outcome{
		Screen:   Funds,
		Action:   action,
		Request:  req.Method + " " + req.URL(),
		Result:   pipeline.ResultSuccess,
		Duration: elapsed,
	})
	fm.push(models.SeveritySuccess, success)
	fm.Load()
	return nil
}

func (fm *FundMaster) fail(action, request string, err error, elapsed time.Duration) error {
	result, message := pipeline.Classify(err)
	pipeline.Report(fm.observer, pipeline.Outcome{
		Screen:   Funds,
		Action:   action,
		Request:  request,
		Result:   result,
		Message:  message,
		Duration: elapsed,
	})
	fm.push(models.SeverityError, "Error: "+message)
	return err
}

func (fm *FundMaster) push(severity models.NoticeSeverity, message string) {
	if fm.notices != nil {
		fm.notices.Push(severity, message)
	}
}

// -----------------------------------------------------------------------------

func (fm *FundMaster) Definition() Definition {
	return fm.def
}

func (fm *FundMaster) Render(opts grid.Options) grid.Page {
	if opts.EmptyText == "" {
		opts.EmptyText = fm.def.EmptyText
	}
	if opts.Actions == nil {
		opts.Actions = fm.def.Actions
	}
	return grid.Render(fm.exec.State(), fm.def.Columns, opts)
}

// Inspect shows the fund as JSON; funds carry no raw payload of their own.
func (fm *FundMaster) Inspect(rowKey string) (inspector.View, bool) {
	f, ok := fm.Fund(rowKey)
	if !ok {
		return inspector.View{}, false
	}
	data, err := network.MarshalRecord(f)
	if err != nil {
		return inspector.View{}, false
	}
	return inspector.Inspect(&data), true
}

// Fund returns the loaded fund with the given id.
func (fm *FundMaster) Fund(id string) (models.MFundRecord, bool) {
	state := fm.exec.State()
	if state.Status != models.StatusSuccess {
		return models.MFundRecord{}, false
	}
	return grid.FindByKey(state.Records, id)
}

func (fm *FundMaster) Status() (models.QueryStatus, uint64) {
	s := fm.exec.State()
	return s.Status, s.Generation
}

func (fm *FundMaster) Snapshot() interface{} {
	return fm.exec.State()
}

func (fm *FundMaster) State() models.MQueryResult[models.MFundRecord] {
	return fm.exec.State()
}

func (fm *FundMaster) Wait(ctx context.Context) error {
	return fm.exec.Wait(ctx)
}
