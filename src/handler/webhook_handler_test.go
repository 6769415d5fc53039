package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"papertrader/src/engine"
	"papertrader/src/externalmodel"
)

type stubProcessor struct {
	result engine.Result
	got    externalmodel.WebhookSignal
	calls  int
}

func (s *stubProcessor) Process(_ context.Context, signal externalmodel.WebhookSignal) engine.Result {
	s.calls++
	s.got = signal
	return s.result
}

func TestWebhookSignalHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		result     engine.Result
		wantStatus int
	}{
		{"executed", engine.Result{Status: engine.StatusExecuted}, http.StatusOK},
		{"duplicate acknowledged", engine.Result{Status: engine.StatusDuplicate, Reason: engine.ReasonDuplicateSignal}, http.StatusOK},
		{"risk rejection acknowledged", engine.Result{Status: engine.StatusRejected, Reason: engine.ReasonRiskLimitExceeded}, http.StatusOK},
		{"instrument rejection acknowledged", engine.Result{Status: engine.StatusRejected, Reason: engine.ReasonInstrumentUnavailable}, http.StatusOK},
		{"validation failure", engine.Result{Status: engine.StatusRejected, Reason: engine.ReasonValidation}, http.StatusBadRequest},
		{"unknown secret", engine.Result{Status: engine.StatusRejected, Reason: engine.ReasonStrategyNotFound}, http.StatusUnauthorized},
		{"insufficient balance", engine.Result{Status: engine.StatusError, Reason: engine.ReasonInsufficientBalance}, http.StatusUnprocessableEntity},
		{"no holding", engine.Result{Status: engine.StatusError, Reason: engine.ReasonNoHolding}, http.StatusUnprocessableEntity},
		{"execution failure", engine.Result{Status: engine.StatusError, Reason: engine.ReasonExecutionError}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc := &stubProcessor{result: tc.result}
			req := httptest.NewRequest(http.MethodPost, "/webhook/signal",
				strings.NewReader(`{"symbol":"NSE:RELIANCE","action":"BUY","quantity":10,"strategy":"momo","secret":"whs_x","timestamp":"2025-03-04T10:30:00Z"}`))
			rec := httptest.NewRecorder()

			WebhookSignalHandler(proc)(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status mismatch. got=%d want=%d", rec.Code, tc.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type mismatch. got=%s", ct)
			}

			var body engine.Result
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("response must be JSON: %v", err)
			}
			if body.Status != tc.result.Status || body.Reason != tc.result.Reason {
				t.Fatalf("body mismatch. got=%+v", body)
			}
		})
	}
}

func TestWebhookSignalHandlerDecodesPayload(t *testing.T) {
	proc := &stubProcessor{result: engine.Result{Status: engine.StatusExecuted}}
	req := httptest.NewRequest(http.MethodPost, "/webhook/signal",
		strings.NewReader(`{"symbol":"NSE:TCS","action":"SELL","quantity":5,"price":"3600.50","strategy":"tcs-swing","secret":"whs_y","timestamp":"2025-03-04T11:00:00Z"}`))
	rec := httptest.NewRecorder()

	WebhookSignalHandler(proc)(rec, req)

	if proc.calls != 1 {
		t.Fatalf("processor must run once. got=%d", proc.calls)
	}
	if proc.got.Symbol != "NSE:TCS" || proc.got.Action != "SELL" || proc.got.Quantity != 5 {
		t.Fatalf("decoded signal mismatch: %+v", proc.got)
	}
	if proc.got.Price == nil || !proc.got.Price.Equal(decimalFromString(t, "3600.50")) {
		t.Fatalf("price must decode. got=%v", proc.got.Price)
	}
}

func TestWebhookSignalHandlerRejectsBadJSON(t *testing.T) {
	proc := &stubProcessor{}
	req := httptest.NewRequest(http.MethodPost, "/webhook/signal", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	WebhookSignalHandler(proc)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status mismatch. got=%d want=400", rec.Code)
	}
	if proc.calls != 0 {
		t.Fatal("processor must not run on a malformed payload")
	}
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return v
}
