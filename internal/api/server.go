// Package api serves the macro table over a small JSON API.
//
// The server loads the catalog once at startup. In watch mode it
// reloads the catalog whenever a file under the catalog directory
// changes and swaps the table atomically, so in-flight requests keep a
// consistent view.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapion/internal/catalog"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":7341".
	Addr string
	// CatalogDir is the directory of catalog files to serve.
	CatalogDir string
	// Watch reloads the catalog when files under CatalogDir change.
	Watch bool
	// Logger receives server logs. Defaults to a discard logger.
	Logger *slog.Logger
}

// snapshot is one immutable view of the loaded catalog. Reloads build a
// whole new snapshot rather than mutating the live one. Each successful
// load gets a fresh build ID so clients can tell reloads apart.
type snapshot struct {
	table    *macro.Table
	files    map[string]string
	buildID  string
	loadedAt time.Time
	err      error
}

// Server exposes macro table inspection over HTTP.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	instanceID string

	mu   sync.RWMutex
	snap snapshot
}

// NewServer creates a server and performs the initial catalog load. A
// catalog that fails to load is a startup error; later reload failures
// keep the previous table and surface through the status endpoint.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:        cfg,
		logger:     cfg.Logger,
		instanceID: uuid.NewString(),
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting api server", "addr", s.cfg.Addr, "watch", s.cfg.Watch)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.cfg.Watch {
		eg.Go(func() error {
			return catalog.Watch(egctx, s.cfg.CatalogDir, s.logger, func() {
				_ = s.reload(egctx)
			})
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down api server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/macros", s.handleMacros)
		r.Get("/macros/{id}", s.handleMacro)
	})

	return r
}

// reload loads the catalog into a fresh table and swaps it in. On
// failure the previous table stays live and the error is recorded for
// the status endpoint.
func (s *Server) reload(ctx context.Context) error {
	loader := catalog.NewLoader(s.cfg.CatalogDir, s.logger)

	cat, err := loader.Load(ctx)
	var table *macro.Table
	if err == nil {
		table = macro.NewTableWithSystemMacros()
		err = cat.InstallInto(table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.loadedAt = time.Now()
	s.snap.err = err
	if err != nil {
		s.logger.Error("catalog reload failed", "error", err)
		return err
	}

	files := make(map[string]string, cat.Len())
	for _, e := range cat.Entries() {
		if name, ok := e.Template.Name(); ok {
			files[name] = e.File
		}
	}
	s.snap.table = table
	s.snap.files = files
	s.snap.buildID = uuid.NewString()

	s.logger.Info("catalog loaded", "dir", s.cfg.CatalogDir, "macros", table.Len(), "build_id", s.snap.buildID)
	return nil
}

// current returns the latest snapshot.
func (s *Server) current() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
