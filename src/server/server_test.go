package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"
	"trade-dashboard/src/pipeline"
	"trade-dashboard/src/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) Send(ctx context.Context, req models.MRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func method(m string) interface{} {
	return mock.MatchedBy(func(req models.MRequest) bool { return req.Method == m })
}

// -----------------------------------------------------------------------------

type harness struct {
	t      *testing.T
	server *DashboardServer
	store  *session.Store
	client *MockBackendClient
	cookie *http.Cookie
}

func testConfig() *models.MConfig {
	return &models.MConfig{
		Name:     "dashboard",
		Host:     "127.0.0.1",
		Port:     8080,
		LogLevel: "INFO",
		Backend:  models.MBackendConfig{LoginURL: "/login", ForwardCookies: []string{"JSESSIONID"}},
		Session:  models.MSessionConfig{CookieName: "dashboard_session", TTLMinutes: 5},
		Grid:     models.MGridConfig{DefaultPageSize: 10, PageSizes: []int{10, 25}},
	}
}

func newHarness(t *testing.T, cfg *models.MConfig) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logger.NewNopLogger()
	hub := NewHub(log)
	go hub.Run(ctx)

	client := new(MockBackendClient)
	store := session.NewStore(time.Minute, session.Deps{
		Factory:  func([]*http.Cookie, string) interfaces.IBackendClient { return client },
		Notifier: hub,
		Logger:   log,
	})

	srv, err := NewDashboardServer(cfg, log, store, hub, nil)
	require.NoError(t, err)
	return &harness{t: t, server: srv, store: store, client: client}
}

func (h *harness) do(verb, path string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(verb, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(verb, path, nil)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "dashboard_session" {
			h.cookie = ck
		}
	}
	return rec
}

func (h *harness) workspace() *session.Workspace {
	h.t.Helper()
	require.NotNil(h.t, h.cookie, "no session cookie issued")
	ws, ok := h.store.Get(h.cookie.Value)
	require.True(h.t, ok)
	return ws
}

func waitFor(t *testing.T, wait func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wait(ctx))
}

// -----------------------------------------------------------------------------

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, testConfig())

	rec := h.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Nil(t, h.cookie, "health checks do not open sessions")

	rec = h.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_http_requests_total")
}

// -----------------------------------------------------------------------------

func TestTradeInquiry_Flow(t *testing.T) {
	h := newHarness(t, testConfig())
	h.client.On("Send", mock.Anything, models.MRequest{Method: "GET", Path: "/api/trades/CR-1"}).
		Return([]byte(`{"success":true,"data":[
			{"clientReferenceNumber":"CR-1","fundNumber":"F1","quantity":1500,"outboundJson":"{\"a\":1}"}
		]}`), nil).Once()

	rec := h.do(http.MethodGet, "/trades", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Trade Inquiry")
	require.NotNil(t, h.cookie)

	t.Run("invalid criteria re-render with the message", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/trades", url.Values{"referenceId": {""}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), template.HTMLEscapeString(pipeline.MsgReferenceOrRange))
		h.client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("unparseable date", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/trades", url.Values{"startDate": {"yesterday"}, "endDate": {"2024-01-02"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Start date is not a valid date.")
	})

	rec = h.do(http.MethodPost, "/trades", url.Values{"referenceId": {"CR-1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/trades", rec.Header().Get("Location"))

	ws := h.workspace()
	waitFor(t, ws.Screens.Trades.Wait)

	rec = h.do(http.MethodGet, "/trades", nil)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>CR-1</td>")
	assert.Contains(t, body, "<td>1,500</td>")
	assert.Contains(t, body, `value="CR-1"`)
	assert.Contains(t, body, "Page 1 of 1 (1 records)")

	t.Run("inspect opens the overlay without refetching", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/trades?inspect=row-1", nil)
		assert.Contains(t, rec.Body.String(), "&#34;a&#34;: 1")
		h.client.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("state endpoint", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/state/trades", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)

		rec = h.do(http.MethodGet, "/state/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	// the unparseable date never reached the pipeline
	assert.Len(t, ws.History(10), 2)
}

// -----------------------------------------------------------------------------

func TestTradeInquiry_AuthFailure(t *testing.T) {
	h := newHarness(t, testConfig())
	h.client.On("Send", mock.Anything, mock.Anything).Return(nil, helpers.NewAuthError(nil)).Once()

	h.do(http.MethodGet, "/trades", nil)
	h.do(http.MethodPost, "/trades", url.Values{"referenceId": {"CR-1"}})
	waitFor(t, h.workspace().Screens.Trades.Wait)

	body := h.do(http.MethodGet, "/trades", nil).Body.String()
	assert.Contains(t, body, template.HTMLEscapeString(helpers.AuthMessage))
	assert.Contains(t, body, `href="/login"`)
}

// -----------------------------------------------------------------------------

func TestFundMaster_DeleteFlow(t *testing.T) {
	h := newHarness(t, testConfig())
	h.client.On("Send", mock.Anything, method("GET")).Return([]byte(`[{"fundID":"F1","fundName":"Alpha"},{"fundID":"F2","fundName":"Beta"}]`), nil).Once()

	rec := h.do(http.MethodGet, "/funds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ws := h.workspace()
	waitFor(t, ws.Screens.Funds.Wait)

	body := h.do(http.MethodGet, "/funds", nil).Body.String()
	assert.Contains(t, body, "<td>Alpha</td>")
	assert.Contains(t, body, `href="/funds/F2/delete"`)

	t.Run("confirmation page", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/funds/F2/delete", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Beta")
	})

	t.Run("unconfirmed delete sends nothing", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/funds/F2/delete", url.Values{})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/funds/F2/delete", rec.Header().Get("Location"))
		h.client.AssertNotCalled(t, "Send", mock.Anything, method("DELETE"))
	})

	h.client.On("Send", mock.Anything, models.MRequest{Method: "DELETE", Path: "/api/funds/F2"}).Return([]byte{}, nil).Once()
	h.client.On("Send", mock.Anything, method("GET")).Return([]byte(`[{"fundID":"F1","fundName":"Alpha"}]`), nil).Once()

	rec = h.do(http.MethodPost, "/funds/F2/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/funds", rec.Header().Get("Location"))
	waitFor(t, ws.Screens.Funds.Wait)

	body = h.do(http.MethodGet, "/funds", nil).Body.String()
	assert.NotContains(t, body, "<td>Beta</td>")
	assert.Contains(t, body, "Fund deleted successfully!")
	h.client.AssertNumberOfCalls(t, "Send", 3)
}

// -----------------------------------------------------------------------------

func TestFundMaster_EditForm(t *testing.T) {
	h := newHarness(t, testConfig())
	h.client.On("Send", mock.Anything, method("GET")).Return([]byte(`[{"fundID":"F1","fundName":"Alpha"}]`), nil)

	h.do(http.MethodGet, "/funds", nil)
	waitFor(t, h.workspace().Screens.Funds.Wait)

	body := h.do(http.MethodGet, "/funds?edit=F1", nil).Body.String()
	assert.Contains(t, body, `action="/funds/F1"`)
	assert.Contains(t, body, `name="fundID" value="F1" readonly`)

	body = h.do(http.MethodGet, "/funds?new=1", nil).Body.String()
	assert.Contains(t, body, "Add Fund")
	assert.NotContains(t, body, "readonly")

	body = h.do(http.MethodGet, "/funds?edit=F9", nil).Body.String()
	assert.Contains(t, body, "Error: Fund not found.")
}

// -----------------------------------------------------------------------------

func TestFundMaster_RejectedFormKeepsInput(t *testing.T) {
	h := newHarness(t, testConfig())
	h.client.On("Send", mock.Anything, method("GET")).Return([]byte(`[{"fundID":"F1","fundName":"Alpha"}]`), nil)

	h.do(http.MethodGet, "/funds", nil)
	waitFor(t, h.workspace().Screens.Funds.Wait)

	t.Run("duplicate id on create", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/funds", url.Values{"fundID": {"F1"}, "fundName": {"Alpha Two"}, "fundTicker": {"ALP2"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `<form class="fund" method="post" action="/funds">`)
		assert.Contains(t, body, `class="form-error"`)
		assert.Contains(t, body, fmt.Sprintf(pipeline.MsgFundIDExists, "F1"))
		assert.Contains(t, body, `name="fundName" value="Alpha Two"`)
		assert.Contains(t, body, `name="fundTicker" value="ALP2"`)
		assert.NotContains(t, body, "readonly")
	})

	t.Run("bad fee on update", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/funds/F1", url.Values{"fundName": {"Alpha Prime"}, "managementFee": {"lots"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `action="/funds/F1"`)
		assert.Contains(t, body, `class="form-error"`)
		assert.Contains(t, body, `name="fundID" value="F1" readonly`)
		assert.Contains(t, body, `name="fundName" value="Alpha Prime"`)
		assert.Contains(t, body, `name="managementFee" value="lots"`)
	})

	h.client.AssertNotCalled(t, "Send", mock.Anything, method("POST"))
	h.client.AssertNotCalled(t, "Send", mock.Anything, method("PUT"))
}

// -----------------------------------------------------------------------------

func TestSummary_SubmitAndRefresh(t *testing.T) {
	h := newHarness(t, testConfig())
	h.client.On("Send", mock.Anything, method("GET")).Return([]byte(`[{"fundNumber":"F1","tradesReceived":4}]`), nil)

	rec := h.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ws := h.workspace()
	waitFor(t, ws.Screens.Summary.Wait)

	rec = h.do(http.MethodPost, "/", url.Values{"startDate": {"2024-01-01"}, "endDate": {"2024-01-05"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	waitFor(t, ws.Screens.Summary.Wait)

	body := h.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `value="2024-01-01"`)
	assert.Contains(t, body, `action="/refresh"`)

	t.Run("reversed range is rejected", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/", url.Values{"startDate": {"2024-01-05"}, "endDate": {"2024-01-01"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), template.HTMLEscapeString(pipeline.MsgStartBeforeEnd))
		assert.Contains(t, rec.Body.String(), `value="2024-01-05"`)
	})

	rec = h.do(http.MethodPost, "/refresh", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	waitFor(t, ws.Screens.Summary.Wait)

	// default load, the accepted range, then its refresh
	h.client.AssertNumberOfCalls(t, "Send", 3)
	submittedReq := h.client.Calls[1].Arguments.Get(1).(models.MRequest)
	refreshedReq := h.client.Calls[2].Arguments.Get(1).(models.MRequest)
	assert.Equal(t, submittedReq, refreshedReq)
}

func TestInquiryRefresh_NothingToRerun(t *testing.T) {
	h := newHarness(t, testConfig())

	body := h.do(http.MethodGet, "/trades", nil).Body.String()
	assert.NotContains(t, body, `action="/trades/refresh"`)

	rec := h.do(http.MethodPost, "/trades/refresh", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/trades", rec.Header().Get("Location"))
	h.client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

// -----------------------------------------------------------------------------

func TestSessionsAreIsolated(t *testing.T) {
	h := newHarness(t, testConfig())
	h.do(http.MethodGet, "/trades", nil)
	first := h.cookie

	h.cookie = nil
	h.do(http.MethodGet, "/trades", nil)
	second := h.cookie

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)
	assert.Equal(t, 2, h.store.Count())
	assert.True(t, second.HttpOnly)
}

// -----------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = models.MRateConfig{EveryMillis: 60000, Burst: 1}
	h := newHarness(t, cfg)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/trades", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, h.do(http.MethodGet, "/trades", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", nil).Code)
}

// -----------------------------------------------------------------------------

func TestDismissNotice(t *testing.T) {
	h := newHarness(t, testConfig())
	h.do(http.MethodGet, "/trades", nil)
	ws := h.workspace()
	ws.Notices.Push(models.SeveritySuccess, "Fund created successfully!")
	id := ws.Notices.Active()[0].ID

	rec := h.do(http.MethodPost, "/notices/"+strconv.FormatUint(id, 10)+"/dismiss", url.Values{"back": {"//evil.example"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, ws.Notices.Active())
}

// -----------------------------------------------------------------------------

func TestWebSocket_DeliversSessionEvents(t *testing.T) {
	h := newHarness(t, testConfig())
	h.do(http.MethodGet, "/trades", nil)
	ws := h.workspace()

	ts := httptest.NewServer(h.server.Handler())
	defer ts.Close()

	header := http.Header{}
	header.Set("Cookie", h.cookie.Name+"="+h.cookie.Value)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool {
		return h.server.hub.Connections(context.Background()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.server.hub.Notify("someone-else", models.MStateEvent{Type: "STATE", Screen: "funds", Status: "loading"})
	h.server.hub.Notify(ws.ID, models.MStateEvent{Type: "STATE", Screen: "trades", Status: "success", Generation: 3})

	var event models.MStateEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "trades", event.Screen)
	assert.Equal(t, "success", event.Status)
	assert.Equal(t, uint64(3), event.Generation)
}
