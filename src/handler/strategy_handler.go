package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

type strategyDeactivator interface {
	Deactivate(ctx context.Context, id uint) error
}

// DeactivateStrategyHandler soft-disables a strategy so the next signal
// carrying its secret is rejected at admission. The row stays: audit
// history references it.
func DeactivateStrategyHandler(repo strategyDeactivator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "strategyID")
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			http.Error(w, "invalid strategyID", http.StatusBadRequest)
			return
		}

		if err := repo.Deactivate(r.Context(), uint(id)); err != nil {
			logger.WithError(err).WithField("strategy_id", id).Error("failed to deactivate strategy")
			http.Error(w, "failed to deactivate strategy", http.StatusInternalServerError)
			return
		}

		logger.WithField("strategy_id", id).Info("strategy deactivated via admin API")
		w.WriteHeader(http.StatusNoContent)
	}
}
