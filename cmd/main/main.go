package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-dashboard/src/config"
	"trade-dashboard/src/grpc_control"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/network"
	"trade-dashboard/src/server"
	"trade-dashboard/src/session"
	"trade-dashboard/src/storage"
	"trade-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.MConfig, config.Name)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Backend client (shared transport, per-session credentials)
	base, err := network.NewBackendClient(config.MConfig, appLogger.Named("Backend"))
	if err != nil {
		appLogger.Critical("Failed to create backend client: %v", err)
		os.Exit(1)
	}
	factory := func(cookies []*http.Cookie, authorization string) interfaces.IBackendClient {
		return base.WithCredentials(cookies, authorization)
	}

	// 2. Audit log (optional)
	audit, err := storage.NewAuditStore(config.MConfig, appLogger.Named("Audit"))
	if err != nil {
		appLogger.Critical("Failed to init audit store: %v", err)
		os.Exit(1)
	}

	// 3. Notification hub
	hub := server.NewHub(appLogger.Named("Hub"))
	go hub.Run(ctx)

	// 4. Sessions
	store := session.NewStore(time.Duration(config.Session.TTLMinutes)*time.Minute, session.Deps{
		Factory:     factory,
		Notifier:    hub,
		Audit:       audit,
		Logger:      appLogger.Named("Session"),
		Location:    config.Location(),
		Calendar:    utils.GetCalendar(config.Calendar),
		NoticeTTL:   time.Duration(config.Session.NoticeSeconds) * time.Second,
		HistorySize: config.Session.HistorySize,
	})

	// 5. HTTP server
	srv, err := server.NewDashboardServer(config.MConfig, appLogger.Named("Server"), store, hub, audit)
	if err != nil {
		appLogger.Critical("Failed to create server: %v", err)
		os.Exit(1)
	}
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
			cancel()
		}
	}()

	// 6. gRPC health with backend probe
	var control *grpc_control.ControlService
	if config.GrpcPort != 0 {
		control = grpc_control.NewControlService(config.MConfig, appLogger.Named("ControlService"), base)
		go func() {
			if err := control.Serve(); err != nil {
				appLogger.Error("gRPC server failed: %v", err)
			}
		}()
		go control.RunProbe(ctx, time.Duration(config.Backend.ProbeIntervalSec)*time.Second)
	}

	// 7. Audit retention
	if audit != nil {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := audit.CleanupOldData(); err != nil {
						appLogger.Warning("Audit cleanup failed: %v", err)
					}
				}
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Dashboard running on http://%s:%d", config.Host, config.Port)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		appLogger.Warning("HTTP shutdown: %v", err)
	}
	if control != nil {
		control.Stop()
	}
	cancel()
	if audit != nil {
		if err := audit.Close(); err != nil {
			appLogger.Warning("Audit close: %v", err)
		}
	}
}
