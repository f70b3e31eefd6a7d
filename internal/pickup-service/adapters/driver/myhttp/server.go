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
	"waste-collect/internal/pickup-service/adapters/driven/bm"
	"waste-collect/internal/pickup-service/adapters/driven/db"
	"waste-collect/internal/pickup-service/adapters/driven/notification"
	"waste-collect/internal/pickup-service/adapters/driver/myhttp/handle"
	"waste-collect/internal/pickup-service/adapters/driver/myhttp/middleware"
	"waste-collect/internal/pickup-service/adapters/driver/myhttp/ws"
	"waste-collect/internal/pickup-service/core/ports"
	"waste-collect/internal/pickup-service/core/services"

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
	mb     ports.IPickupBroker
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
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

	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("successful message broker connection")

	if err := s.Configure(); err != nil {
		return err
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.PickupServicePort),
		Handler: s.router,
	}
	s.mu.Unlock()

	mylog.WithGroup("details").With("port", s.cfg.Srv.PickupServicePort).Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("shutting down pickup service...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	s.wg.Wait()

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("failed to close message broker", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("database closed")
	}

	s.mylog.Info("pickup service shut down gracefully")
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
func (s *Server) Configure() error {
	pickupRepo := db.NewPickupsRepo(s.db)
	ratesRepo := db.NewRatesRepo(s.db)

	pickupService := services.NewPickupService(s.mylog, pickupRepo, ratesRepo, s.mb)

	pickupHandler := handle.NewPickupHandler(pickupService, s.mylog)
	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	dispatcher := ws.NewDispatcher(s.mylog)
	notifier := notification.New(s.appCtx, &s.wg, s.mylog, dispatcher, s.mb)
	if err := notifier.Run(); err != nil {
		return fmt.Errorf("cannot start notification consumers: %w", err)
	}

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

		r.Post("/pickups", pickupHandler.RequestPickup())
		r.Get("/pickups/offerable", pickupHandler.ListOfferable())
		r.Get("/pickups/{pickup_id}", pickupHandler.GetPickup())
		r.Post("/pickups/{pickup_id}/accept", pickupHandler.AcceptPickup())
		r.Post("/pickups/{pickup_id}/status", pickupHandler.AdvanceStatus())
		r.Post("/pickups/{pickup_id}/complete", pickupHandler.CompletePickup())
		r.Post("/pickups/{pickup_id}/cancel", pickupHandler.CancelPickup())
	})

	s.router.Get("/ws/citizens/{citizen_id}", dispatcher.WsHandler())

	return nil
}
