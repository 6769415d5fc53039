package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type stubDeactivator struct {
	deactivated []uint
	err         error
}

func (s *stubDeactivator) Deactivate(_ context.Context, id uint) error {
	if s.err != nil {
		return s.err
	}
	s.deactivated = append(s.deactivated, id)
	return nil
}

func TestDeactivateStrategyHandler(t *testing.T) {
	repo := &stubDeactivator{}

	req := httptest.NewRequest(http.MethodPost, "/admin/strategies/7/deactivate", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("strategyID", "7")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	DeactivateStrategyHandler(repo)(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status mismatch. got=%d want=204", rec.Code)
	}
	if len(repo.deactivated) != 1 || repo.deactivated[0] != 7 {
		t.Fatalf("deactivate calls mismatch: %v", repo.deactivated)
	}
}

func TestDeactivateStrategyHandlerStoreFailure(t *testing.T) {
	repo := &stubDeactivator{err: errors.New("db down")}

	req := httptest.NewRequest(http.MethodPost, "/admin/strategies/7/deactivate", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("strategyID", "7")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	DeactivateStrategyHandler(repo)(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status mismatch. got=%d want=500", rec.Code)
	}
}
