package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

type riskResetter interface {
	ResetStrategyCounters(strategyID uint)
}

// ResetRiskHandler clears one strategy's risk counters ahead of the
// scheduled daily reset.
func ResetRiskHandler(mgr riskResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "strategyID")
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			http.Error(w, "invalid strategyID", http.StatusBadRequest)
			return
		}

		mgr.ResetStrategyCounters(uint(id))
		logger.WithField("strategy_id", id).Info("risk counters reset via admin API")
		w.WriteHeader(http.StatusNoContent)
	}
}
