package upgrades

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	upgradedomain "tiffin-app-go/internal/domain/upgrade"
	"tiffin-app-go/internal/transport/httpserver/middleware"
	"tiffin-app-go/pkg/logger"
)

type stubService struct {
	upgrade *upgradedomain.Upgrade
	err     error
	input   upgradedomain.ApplyInput
	removed string
}

func (s *stubService) Apply(ctx context.Context, userID string, input upgradedomain.ApplyInput) (*upgradedomain.Upgrade, error) {
	s.input = input
	return s.upgrade, s.err
}

func (s *stubService) ListActive(ctx context.Context, userID string) ([]upgradedomain.Upgrade, error) {
	return nil, s.err
}

func (s *stubService) Remove(ctx context.Context, userID, upgradeID string) error {
	s.removed = upgradeID
	return s.err
}

func newTestRouter(svc Service, withUser bool) http.Handler {
	h := New(svc, logger.Nop())
	r := chi.NewRouter()
	if withUser {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.WithUser(req.Context(), middleware.User{ID: "user-1"})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	r.Post("/upgrades", h.ApplyUpgrade)
	r.Delete("/upgrades/{id}", h.RemoveUpgrade)
	return r
}

func TestApplyMealScopeUpgrade(t *testing.T) {
	lunch := catalog.ItemLunch
	svc := &stubService{upgrade: &upgradedomain.Upgrade{
		ID:          "d1b2c3d4-0000-4000-8000-000000000001",
		UpgradeType: catalog.UpgradeVegToNonVeg,
		Scope:       catalog.ScopeMeal,
		MealType:    &lunch,
		StartDate:   clock.Date(2026, time.March, 4),
		EndDate:     clock.Date(2026, time.March, 5),
		Price:       decimal.RequireFromString("80"),
	}}
	body := `{"upgrade_type":"veg_to_nonveg","scope":"meal","meal_type":"lunch","start_date":"2026-03-04","end_date":"2026-03-05"}`
	rec := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upgrades", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input.MealType == nil || *svc.input.MealType != catalog.ItemLunch {
		t.Fatalf("expected meal type lunch, got %v", svc.input.MealType)
	}

	var resp upgradeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Price != "80.00" || resp.MealType == nil || *resp.MealType != "lunch" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestApplyUpgradeErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "no subscription", err: upgradedomain.ErrNoActiveSubscription, status: http.StatusUnprocessableEntity},
		{name: "not allowed", err: upgradedomain.ErrUpgradeNotAllowed, status: http.StatusUnprocessableEntity},
		{name: "overlap", err: upgradedomain.ErrUpgradeOverlap, status: http.StatusConflict},
		{name: "range", err: upgradedomain.ErrInvalidRange, status: http.StatusBadRequest},
	}
	body := `{"upgrade_type":"south_to_north","scope":"week","start_date":"2026-03-04","end_date":"2026-03-10"}`
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(&stubService{err: tc.err}, true).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upgrades", strings.NewReader(body)))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRemoveUpgrade(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/upgrades/d1b2c3d4-0000-4000-8000-000000000001", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newTestRouter(&stubService{err: upgradedomain.ErrUpgradeStarted}, true).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/upgrades/d1b2c3d4-0000-4000-8000-000000000001", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRemoveUpgradeRejectsBadID(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/upgrades/123", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.removed != "" {
		t.Fatalf("expected service not to be called")
	}
}

func TestUpgradesRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubService{}, false).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/upgrades/d1b2c3d4-0000-4000-8000-000000000001", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
