// Package httpserver wires the GraphQL endpoint, middleware, and health
// checking over chi.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"
	"github.com/rs/cors"

	"github.com/tastelog/tastelog/internal/catalog"
	"github.com/tastelog/tastelog/internal/config"
	"github.com/tastelog/tastelog/internal/identity"
	"github.com/tastelog/tastelog/internal/store"
)

// Server hosts the GraphQL API.
type Server struct {
	cfg       config.Config
	store     *store.Store
	queries   *catalog.QueryService
	mutations *catalog.MutationService
	identity  *identity.Manager
	users     identity.UserStore
	logger    *log.Logger
	schema    graphql.Schema
	router    chi.Router
	httpSrv   *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, queries *catalog.QueryService, mutations *catalog.MutationService, idm *identity.Manager, users identity.UserStore, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		queries:   queries,
		mutations: mutations,
		identity:  idm,
		users:     users,
		logger:    logger,
	}

	schema, err := s.buildSchema()
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	s.schema = schema

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	s.router = r
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.With(s.resolveIdentity).Post("/graphql", s.handleGraphQL)
}

// resolveIdentity turns the bearer credential into the acting user exactly
// once per request. Invalid or absent credentials pass through as anonymous;
// only an unreachable identity store fails the request.
func (s *Server) resolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := s.identity.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			s.logger.Printf("identity resolution failed: %v", err)
			s.respondGraphQLError(w, "UNAVAILABLE", "service temporarily unavailable")
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

// Start boots the HTTP server and blocks until it stops or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
