package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"steward/internal/auth"
	"steward/internal/config"
	"steward/internal/logging"
	"steward/internal/metrics"
	"steward/internal/organize"
	"steward/internal/store"
)

// OrganizeTrigger runs the organize pipeline on demand. Implemented by the
// workflow manager; stubbed in tests.
type OrganizeTrigger interface {
	OrganizeNow(ctx context.Context, dryRun bool) (organize.Stats, error)
}

// Server is the HTTP API. Construct with New and mount via ServeHTTP or
// run with Start.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	auth      *auth.Authenticator
	organizer OrganizeTrigger
	hub       *Hub
	metrics   *metrics.Metrics
	logger    *slog.Logger
	router    chi.Router
	startedAt time.Time
}

// New wires the API against its collaborators.
func New(cfg *config.Config, st *store.Store, organizer OrganizeTrigger, m *metrics.Metrics, logger *slog.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		cfg:       cfg,
		store:     st,
		auth:      auth.New(cfg),
		organizer: organizer,
		hub:       NewHub(logger),
		metrics:   m,
		logger:    logging.WithComponent(logger, "server"),
		router:    chi.NewRouter(),
		startedAt: time.Now().UTC(),
	}
	s.routes()
	return s
}

// Hub returns the websocket broadcast hub so other components can publish
// events.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Duration("duration", time.Since(start)),
			)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Post("/api/auth/login", s.handleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/auth/me", s.handleMe)
		r.Get("/api/status", s.handleStatus)
		r.Post("/api/organize", s.handleOrganizeNow)
		r.Get("/api/activity", s.handleActivity)

		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Post("/", s.handleCreateJob)
			r.Get("/{id}", s.handleGetJob)
			r.Put("/{id}", s.handleUpdateJob)
			r.Delete("/{id}", s.handleDeleteJob)
		})

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Delete("/{id}", s.handleDeleteTask)
			r.Post("/{id}/comments", s.handleAddTaskComment)
		})

		r.Get("/api/modules", s.handleListModules)

		r.Group(func(r chi.Router) {
			r.Use(s.requireHubMaster)

			r.Route("/api/users", func(r chi.Router) {
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser)
				r.Put("/{id}", s.handleUpdateUser)
				r.Delete("/{id}", s.handleDeactivateUser)
			})

			r.Post("/api/modules/{name}/activate", s.handleModuleActivate)
			r.Post("/api/modules/{name}/deactivate", s.handleModuleDeactivate)
			r.Post("/api/modules/{name}/run", s.handleModuleRun)
		})
	})

	s.router.Get("/api/ws", s.handleWebsocket)
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Paths.APIBind,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.Info("http api listening", logging.String("bind", s.cfg.Paths.APIBind))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
