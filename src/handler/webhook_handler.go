package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/engine"
	"papertrader/src/externalmodel"
)

type signalProcessor interface {
	Process(ctx context.Context, signal externalmodel.WebhookSignal) engine.Result
}

// WebhookSignalHandler receives alert payloads from the charting service
// and maps pipeline outcomes to transport codes. Risk rejections and
// duplicates are expected traffic and acknowledged with 200 so the sender
// does not retry or alert on them.
func WebhookSignalHandler(proc signalProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var signal externalmodel.WebhookSignal
		if err := json.NewDecoder(r.Body).Decode(&signal); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}

		result := proc.Process(r.Context(), signal)
		writeResult(w, result)
	}
}

func writeResult(w http.ResponseWriter, result engine.Result) {
	status := http.StatusOK

	switch result.Status {
	case engine.StatusRejected:
		switch result.Reason {
		case engine.ReasonValidation:
			status = http.StatusBadRequest
		case engine.ReasonStrategyNotFound:
			status = http.StatusUnauthorized
		}
	case engine.StatusError:
		if result.Reason == engine.ReasonExecutionError {
			status = http.StatusInternalServerError
		} else {
			status = http.StatusUnprocessableEntity
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.WithError(err).Error("failed to encode webhook response")
	}
}
