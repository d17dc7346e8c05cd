package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"
	"trade-dashboard/src/screens"
	"trade-dashboard/src/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server

	store   *session.Store
	hub     *Hub
	audit   interfaces.IAuditStore
	errors  *helpers.ErrorHandler
	limiter *rateLimiter
	started time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewDashboardServer wires the routes. audit may be nil when the audit log
// is disabled.
func NewDashboardServer(cfg *models.MConfig, log *logger.Logger, store *session.Store, hub *Hub, audit interfaces.IAuditStore) (*DashboardServer, error) {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.New(),
		store:   store,
		hub:     hub,
		audit:   audit,
		errors:  helpers.NewErrorHandler(log),
		started: time.Now(),
	}
	if cfg.RateLimit.EveryMillis > 0 {
		s.limiter = newRateLimiter(time.Duration(cfg.RateLimit.EveryMillis)*time.Millisecond, cfg.RateLimit.Burst)
	}

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.engine.SetHTMLTemplate(tmpl)
	s.engine.Use(s.recovery(), s.accessLog())

	s.setupRoutes()
	return s, nil
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// Operational endpoints, outside sessions and rate limits
	s.engine.GET("/healthz", s.getHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app := s.engine.Group("/", s.rateLimit(), s.sessionHandler())

	for _, name := range []string{screens.Summary, screens.Trades, screens.Exceptions, screens.Messages} {
		app.GET(screenPath(name), s.inquiryPage(name))
		app.POST(screenPath(name), s.inquirySubmit(name))
		app.POST(refreshPath(name), s.inquiryRefresh(name))
	}

	app.GET("/funds", s.fundsPage)
	app.POST("/funds", s.fundCreate)
	app.POST("/funds/:id", s.fundUpdate)
	app.GET("/funds/:id/delete", s.fundDeleteConfirm)
	app.POST("/funds/:id/delete", s.fundDelete)

	app.POST("/notices/:id/dismiss", s.dismissNotice)
	app.GET("/state/:screen", s.getState)
	app.GET("/api/audit", s.getAudit)

	// WebSocket endpoint
	app.GET("/ws", s.handleWebSocket)
}

// Handler exposes the routes, for tests and embedding.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop is called.
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Operational Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"sessions":    s.store.Count(),
		"connections": s.hub.Connections(ctx),
		"uptime":      time.Since(s.started).Round(time.Second).String(),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getState(c *gin.Context) {
	name := c.Param("screen")
	if !contains(screens.Names(), name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown screen"})
		return
	}
	scr, _ := workspace(c).Screens.Screen(name)
	c.JSON(http.StatusOK, scr.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getAudit(c *gin.Context) {
	if s.audit == nil {
		c.JSON(http.StatusOK, []models.MAuditEntry{})
		return
	}
	entries, err := s.audit.RecentEntries(safeInt(c, "limit", 50))
	if err != nil {
		s.errors.Handle(err, "audit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read the audit log."})
		return
	}
	c.JSON(http.StatusOK, entries)
}
