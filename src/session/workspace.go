package session

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"
	"trade-dashboard/src/pipeline"
	"trade-dashboard/src/screens"
	"trade-dashboard/src/utils"
)

// ClientFactory derives a backend client carrying one browser's credentials.
type ClientFactory func(cookies []*http.Cookie, authorization string) interfaces.IBackendClient

// Credentials are the backend credentials forwarded from the browser.
type Credentials struct {
	Cookies       []*http.Cookie
	Authorization string
}

func (c Credentials) fingerprint() string {
	parts := make([]string, 0, len(c.Cookies)+1)
	for _, ck := range c.Cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	sort.Strings(parts)
	return strings.Join(append(parts, c.Authorization), ";")
}

// -----------------------------------------------------------------------------

// swappableClient lets the screens keep one client while the workspace
// replaces the credentials behind it.
type swappableClient struct {
	mu     sync.RWMutex
	client interfaces.IBackendClient
}

func (s *swappableClient) Send(ctx context.Context, req models.MRequest) ([]byte, error) {
	s.mu.RLock()
	c := s.client
	s.mu.RUnlock()
	return c.Send(ctx, req)
}

func (s *swappableClient) swap(c interfaces.IBackendClient) {
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Workspace is the server-side state of one browser session: its screens,
// notices and recent searches. Nothing in it is shared with other sessions.
type Workspace struct {
	ID        string
	CreatedAt time.Time
	Screens   *screens.Set
	Notices   *NoticeBoard

	client   *swappableClient
	factory  ClientFactory
	notifier interfaces.INotifier
	audit    interfaces.IAuditStore
	logger   *logger.Logger

	mu          sync.Mutex
	credentials string
	history     *utils.RingBuffer[models.MHistoryEntry]
}

// Deps are the shared collaborators every workspace is built with.
type Deps struct {
	Factory     ClientFactory
	Notifier    interfaces.INotifier
	Audit       interfaces.IAuditStore
	Logger      *logger.Logger
	Location    *time.Location
	Calendar    *utils.TradingCalendar
	NoticeTTL   time.Duration
	HistorySize int
}

// -----------------------------------------------------------------------------

func NewWorkspace(id string, creds Credentials, deps Deps) *Workspace {
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	ws := &Workspace{
		ID:          id,
		CreatedAt:   time.Now(),
		Notices:     NewNoticeBoard(deps.NoticeTTL),
		client:      &swappableClient{client: deps.Factory(creds.Cookies, creds.Authorization)},
		factory:     deps.Factory,
		notifier:    deps.Notifier,
		audit:       deps.Audit,
		logger:      log,
		credentials: creds.fingerprint(),
		history:     utils.NewRingBuffer[models.MHistoryEntry](deps.HistorySize),
	}
	ws.Screens = screens.NewSet(ws.client, ws, ws.Notices, deps.Location, deps.Calendar)
	return ws
}

// -----------------------------------------------------------------------------

// UpdateCredentials swaps in a new backend client when the browser's
// credentials changed since the last request.
func (w *Workspace) UpdateCredentials(creds Credentials) bool {
	fp := creds.fingerprint()
	w.mu.Lock()
	defer w.mu.Unlock()

	if fp == w.credentials {
		return false
	}
	w.credentials = fp
	w.client.swap(w.factory(creds.Cookies, creds.Authorization))
	return true
}

// -----------------------------------------------------------------------------

// StateChanged implements pipeline.Observer.
func (w *Workspace) StateChanged(screen string, status models.QueryStatus, generation uint64) {
	if w.notifier == nil {
		return
	}
	w.notifier.Notify(w.ID, models.MStateEvent{
		Type:       "STATE",
		Screen:     screen,
		Status:     status.String(),
		Generation: generation,
		Timestamp:  time.Now().UnixMilli(),
	})
}

// -----------------------------------------------------------------------------

// Submitted implements pipeline.Observer: the outcome goes to the recent
// searches and the audit log.
func (w *Workspace) Submitted(o pipeline.Outcome) {
	now := time.Now()
	criteria := describe(o)

	if o.Action == pipeline.ActionQuery {
		w.mu.Lock()
		w.history.Append(models.MHistoryEntry{
			Screen:      o.Screen,
			Criteria:    criteria,
			Outcome:     o.Result,
			SubmittedAt: now,
		})
		w.mu.Unlock()
	}

	switch o.Result {
	case pipeline.ResultFailure:
		w.logger.Warning("[%s] %s %s failed: %s", w.ID, o.Screen, o.Action, o.Message)
	case pipeline.ResultAuth:
		w.logger.Warning("[%s] %s %s: backend rejected credentials", w.ID, o.Screen, o.Action)
	default:
		w.logger.Debug("[%s] %s %s: %s", w.ID, o.Screen, o.Action, o.Result)
	}

	if w.audit == nil {
		return
	}
	params := o.Request
	if params == "" {
		params = criteria
	}
	entry := models.MAuditEntry{
		SessionID:  w.ID,
		Screen:     o.Screen,
		Action:     o.Action,
		Params:     params,
		Outcome:    o.Result,
		Message:    o.Message,
		DurationMs: o.Duration.Milliseconds(),
		CreatedAt:  now,
	}
	if err := w.audit.SaveAuditEntry(entry); err != nil {
		w.logger.Error("Failed to write audit entry: %v", err)
	}
}

// -----------------------------------------------------------------------------

// History returns the recent searches, newest first.
func (w *Workspace) History(n int) []models.MHistoryEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.GetLatest(n)
}

// Close cancels every request the workspace still has in flight.
func (w *Workspace) Close() {
	w.Screens.Trades.Reset()
	w.Screens.Exceptions.Reset()
	w.Screens.Messages.Reset()
	w.Screens.Summary.Reset()
}

// -----------------------------------------------------------------------------

func describe(o pipeline.Outcome) string {
	c := o.Criteria
	parts := []string{}
	if c.ReferenceID != "" {
		parts = append(parts, "ref="+c.ReferenceID)
	}
	if c.StartDate != nil {
		parts = append(parts, "from="+c.StartDate.Format(utils.InputDateTimeLayout))
	}
	if c.EndDate != nil {
		parts = append(parts, "to="+c.EndDate.Format(utils.InputDateTimeLayout))
	}
	if len(parts) == 0 {
		return o.Request
	}
	return strings.Join(parts, " ")
}
