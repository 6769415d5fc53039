package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/broadcast"
	"papertrader/src/engine"
	"papertrader/src/handler"
	"papertrader/src/monitoring"
	"papertrader/src/repository"
	"papertrader/src/risk"
)

// StartServer wires the HTTP surface and blocks until SIGINT/SIGTERM.
func StartServer(port string, eng *engine.Engine, hub *broadcast.Hub, riskMgr *risk.Manager, strategies *repository.GormStrategyRepository) {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("healthcheck write failed")
		}
	})
	r.Post("/webhook/signal", handler.WebhookSignalHandler(eng))
	r.Get("/ws", broadcast.Handler(hub))
	r.Handle("/metrics", monitoring.Handler())

	// Admin routes
	r.Post("/admin/strategies/{strategyID}/reset-risk", handler.ResetRiskHandler(riskMgr))
	r.Post("/admin/strategies/{strategyID}/deactivate", handler.DeactivateStrategyHandler(strategies))

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
