package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	"github.com/ugaemi/horsingaround-server/internal/config"
	"github.com/ugaemi/horsingaround-server/internal/handler"
	"github.com/ugaemi/horsingaround-server/internal/level"
	"github.com/ugaemi/horsingaround-server/internal/session"
	"github.com/ugaemi/horsingaround-server/internal/store"
	"github.com/ugaemi/horsingaround-server/internal/telemetry"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func main() {
	// Local development reads .env; in production the variables are set directly
	envErr := godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg)
	if envErr != nil {
		slog.Debug(".env file not loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTelemetry := setupTelemetry(ctx, cfg)
	defer shutdownTelemetry()

	roundStore, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN())
	if err != nil {
		slog.Error("failed to open round store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	if roundStore != nil {
		defer roundStore.Close()
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		slog.Error("failed to load levels", "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub()
	sm := session.NewManager(session.Options{Store: roundStore, Tracer: tracer})
	router := handler.NewRouter(sm, catalog)
	rounds := handler.NewRoundsHandler(roundStore)

	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect

	// The hub outlives ctx so sessions stop before clients are closed.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})
	mux.HandleFunc("GET /rounds", rounds.HandleList)
	mux.HandleFunc("GET /rounds/{id}", rounds.HandleGet)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		sm.StopAll()
		stopHub()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", srv.Addr, "levels", catalog.Names(), "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(hub, conn)
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// loadCatalog loads the embedded levels plus LEVEL_FILE if set.
func loadCatalog(cfg *config.Config) (*level.Catalog, error) {
	catalog, err := level.LoadEmbedded()
	if err != nil {
		return nil, err
	}
	if cfg.LevelFile != "" {
		l, err := level.LoadFile(cfg.LevelFile)
		if err != nil {
			return nil, err
		}
		catalog.Add(l)
		slog.Info("level loaded", "name", l.Name, "file", cfg.LevelFile)
	}
	return catalog, nil
}

// setupTelemetry exports round spans over OTLP when enabled. The server keeps
// running without tracing if the exporter cannot be set up.
func setupTelemetry(ctx context.Context, cfg *config.Config) (trace.Tracer, func()) {
	if !cfg.TelemetryEnabled {
		return telemetry.NoopTracer(), func() {}
	}

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		slog.Warn("telemetry setup failed, running without tracing", "error", err)
		return telemetry.NoopTracer(), func() {}
	}
	return telemetry.Tracer("session"), func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
