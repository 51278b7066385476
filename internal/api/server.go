package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 90 * time.Second

//go:generate mockery --name=Backend --output=../../tests/mocks --outpkg=mocks --filename=mock_backend.go
type Backend interface {
	RefreshStaking(ctx context.Context, force bool) (*types.StakingOverview, error)
	RefreshUserStaking(ctx context.Context, user common.Address, force bool) (*types.UserStakingData, error)
	RefreshReferral(ctx context.Context, referrer common.Address, force bool) (*types.ReferralData, error)
	RefreshToken(ctx context.Context, force bool) (*types.TokenData, error)
	RefreshVault(ctx context.Context, force bool) (*types.VaultOverview, error)
	RefreshVaultUser(ctx context.Context, user common.Address, force bool) (*types.VaultUserData, error)
	RefreshDomain(ctx context.Context, domain types.Domain, address string) (any, error)
	State(domain types.Domain, address string) types.State
	States() []types.State
}

type Server struct {
	router  *chi.Mux
	server  *http.Server
	backend Backend
}

func New(cfg *config.ServerConfig, backend Backend) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		backend: backend,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(loggingMiddleware)
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/staking", s.handleStaking)
		r.Get("/token", s.handleToken)
		r.Get("/vault", s.handleVault)
		r.Get("/state", s.handleStates)
		r.Post("/refresh/{domain}", s.handleRefresh)

		r.Route("/users/{address}", func(r chi.Router) {
			r.Get("/staking", s.handleUserStaking)
			r.Get("/referrals", s.handleReferrals)
			r.Get("/vault", s.handleUserVault)
		})
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	log.Info().Str("address", s.server.Addr).Msg("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down API server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware attaches a request scoped logger to the context and logs
// every request once it completes.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
