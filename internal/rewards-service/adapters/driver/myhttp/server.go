package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"waste-collect/internal/config"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/rewards-service/adapters/driven/db"
	"waste-collect/internal/rewards-service/adapters/driver/myhttp/handle"
	"waste-collect/internal/rewards-service/adapters/driver/myhttp/middleware"
	"waste-collect/internal/rewards-service/core/services"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const WaitTime = 10

type Server struct {
	router *chi.Mux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	ctx    context.Context
	mu     sync.Mutex
}

func NewServer(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		cfg:    cfg,
		mylog:  mylog,
		router: chi.NewRouter(),
	}
}

// Run initializes adapters and routes and starts listening. It returns when
// the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	database, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = database
	mylog.Info("successful database connection")

	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.RewardsServicePort),
		Handler: s.router,
	}
	s.mu.Unlock()

	mylog.WithGroup("details").With("port", s.cfg.Srv.RewardsServicePort).Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("shutting down rewards service...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("database closed")
	}

	s.mylog.Info("rewards service shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure wires repositories, services and routes.
func (s *Server) Configure() {
	ledgerRepo := db.NewLedgerRepo(s.db)
	catalogRepo := db.NewCatalogRepo(s.db)
	redemptionsRepo := db.NewRedemptionsRepo(s.db)

	rewardsService := services.NewRewardsService(s.mylog, ledgerRepo, catalogRepo, redemptionsRepo)

	rewardsHandler := handle.NewRewardsHandler(rewardsService, s.mylog)
	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.IsAlive(); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(authMiddleware.Wrap)

		r.Get("/balance", rewardsHandler.Balance())
		r.Get("/ledger", rewardsHandler.Ledger())
		r.Get("/rewards", rewardsHandler.ListRewards())
		r.Post("/rewards/{item_id}/redeem", rewardsHandler.Redeem())
		r.Get("/redemptions/{redemption_id}", rewardsHandler.GetRedemption())
		r.Post("/redemptions/{redemption_id}/status", rewardsHandler.AdvanceRedemption())
	})
}
