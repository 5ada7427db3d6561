package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bighogz/fintable/internal/cache"
	"github.com/bighogz/fintable/internal/config"
	"github.com/bighogz/fintable/internal/render"
	"github.com/bighogz/fintable/internal/source"
	"github.com/bighogz/fintable/internal/telemetry"
	"github.com/bighogz/fintable/internal/view"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup("fintable-api", cfg.Trace, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	snapshots, err := cache.Open(cfg.SnapshotPath())
	if err != nil {
		if cfg.Offline {
			return fmt.Errorf("offline mode needs the snapshot cache: %w", err)
		}
		logger.Warn("Snapshot cache unavailable", "path", cfg.SnapshotPath(), "error", err)
		snapshots = nil
	} else {
		defer snapshots.Close()
	}

	srv := newServer(cfg, logger, snapshots)
	go srv.refresh(ctx)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting server", "port", cfg.Port, "api_url", cfg.APIURL, "offline", cfg.Offline)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const refreshDebounce = time.Minute

type server struct {
	cfg       *config.Config
	logger    *slog.Logger
	session   *view.Session
	loader    view.Loader
	snapshots *cache.Cache
	reloads   *rateLimiter

	refreshMu     sync.Mutex
	lastRefreshAt time.Time
}

// newServer wires the session to its loader: the backend, or the newest
// snapshot when running offline. snapshots may be nil.
func newServer(cfg *config.Config, logger *slog.Logger, snapshots *cache.Cache) *server {
	s := &server{
		cfg:       cfg,
		logger:    logger,
		session:   view.NewSession(),
		snapshots: snapshots,
		reloads:   newRateLimiter(5 * time.Second),
	}
	if cfg.Offline && snapshots != nil {
		s.loader = snapshots
	} else {
		s.loader = source.New(cfg, logger)
	}
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(render.Static())))
	r.Get("/api/records", s.handleRecords)
	r.Get("/api/records/meta", s.handleMeta)
	r.With(adminOrRateLimit(s.cfg.AdminAPIKey, s.reloads)).Post("/api/records/reload", s.handleReload)
	r.Get("/api/health", s.handleHealth)
	return r
}

// refresh loads the full set. Calls within refreshDebounce of the last
// successful one are dropped.
func (s *server) refresh(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if !s.lastRefreshAt.IsZero() && time.Since(s.lastRefreshAt) < refreshDebounce {
		return
	}
	s.lastRefreshAt = time.Now()

	if err := s.session.Load(ctx, s.loader); err != nil {
		s.logger.Error("Failed to load records", "error", err)
		s.lastRefreshAt = time.Time{}
		return
	}
	if s.snapshots == nil || s.cfg.Offline {
		return
	}
	if _, err := s.snapshots.Write(ctx, s.cfg.APIURL, s.session.Full()); err != nil {
		s.logger.Warn("Failed to write snapshot", "error", err)
	}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := view.DecodeState(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, s.session.Page(r.Context(), st)); err != nil {
		s.logger.Error("Failed to render page", "error", err)
	}
}

func (s *server) handleRecords(w http.ResponseWriter, r *http.Request) {
	st, err := view.DecodeState(r.URL.Query())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, s.session.Page(r.Context(), st))
}

func (s *server) handleMeta(w http.ResponseWriter, r *http.Request) {
	p := s.session.Page(r.Context(), view.State{})
	var cachedAt *string
	if s.snapshots != nil {
		if t := s.snapshots.CachedAt(r.Context()); t != nil {
			formatted := t.Format(time.RFC3339)
			cachedAt = &formatted
		}
	}
	var loadedAt *string
	if p.LoadedAt != nil {
		formatted := p.LoadedAt.Format(time.RFC3339)
		loadedAt = &formatted
	}
	jsonResponse(w, map[string]interface{}{
		"status":    p.Status,
		"error":     p.Error,
		"total":     p.Total,
		"loaded_at": loadedAt,
		"cached_at": cachedAt,
		"offline":   s.cfg.Offline,
	})
}

func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	go s.refresh(context.WithoutCancel(r.Context()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "reload started"})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"})
}

func jsonResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
