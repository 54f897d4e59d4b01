package meals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	mealsdomain "tiffin-app-go/internal/domain/meals"
	"tiffin-app-go/internal/transport/httpserver/middleware"
	"tiffin-app-go/pkg/logger"
)

type stubService struct {
	views    []mealsdomain.MealView
	err      error
	lastCall string
	lastDate time.Time
	lastType string
	lastSlot string
	schedule []mealsdomain.DaySchedule
}

func (s *stubService) Schedule(ctx context.Context, userID string) ([]mealsdomain.DaySchedule, error) {
	return s.schedule, s.err
}

func (s *stubService) Pause(ctx context.Context, userID string, date time.Time, mealType string) ([]mealsdomain.MealView, error) {
	s.lastCall, s.lastDate, s.lastType = "pause", date, mealType
	return s.views, s.err
}

func (s *stubService) Unpause(ctx context.Context, userID string, date time.Time, mealType string) ([]mealsdomain.MealView, error) {
	s.lastCall, s.lastDate, s.lastType = "unpause", date, mealType
	return s.views, s.err
}

func (s *stubService) ReassignSlot(ctx context.Context, userID, mealID, slotID string) (*mealsdomain.MealView, error) {
	s.lastSlot = slotID
	if s.err != nil {
		return nil, s.err
	}
	return &s.views[0], nil
}

func (s *stubService) PauseHistory(ctx context.Context, userID string) ([]mealsdomain.PauseRecord, error) {
	return nil, s.err
}

func newTestRouter(svc Service) http.Handler {
	h := New(svc, logger.Nop())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), middleware.User{ID: "user-1"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/meals/schedule", h.GetSchedule)
	r.Post("/meals/pause", h.PauseMeal)
	r.Post("/meals/unpause", h.UnpauseMeal)
	r.Patch("/meals/{id}/slot", h.ReassignSlot)
	return r
}

func lunchView(paused bool) mealsdomain.MealView {
	return mealsdomain.MealView{
		MealInstance: mealsdomain.MealInstance{
			ID:             "a1b2c3d4-0000-4000-8000-000000000001",
			SubscriptionID: "a1b2c3d4-0000-4000-8000-000000000002",
			ServiceDate:    clock.Date(2026, time.March, 3),
			ItemType:       catalog.ItemLunch,
			DeliverySlotID: "a1b2c3d4-0000-4000-8000-000000000003",
			IsPaused:       paused,
		},
		Slot: catalog.DeliverySlot{ID: "a1b2c3d4-0000-4000-8000-000000000003", Code: catalog.SlotAfternoon},
	}
}

func TestPauseMeal(t *testing.T) {
	svc := &stubService{views: []mealsdomain.MealView{lunchView(true)}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/meals/pause", strings.NewReader(`{"date":"2026-03-03","meal_type":"lunch"}`))
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCall != "pause" || svc.lastType != "lunch" || !svc.lastDate.Equal(clock.Date(2026, time.March, 3)) {
		t.Fatalf("unexpected call %s %s %v", svc.lastCall, svc.lastType, svc.lastDate)
	}

	var resp dayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Date != "2026-03-03" || len(resp.Meals) != 1 || !resp.Meals[0].IsPaused {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUnpauseMealRoutesToUnpause(t *testing.T) {
	svc := &stubService{views: []mealsdomain.MealView{lunchView(false)}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/meals/unpause", strings.NewReader(`{"date":"2026-03-03","meal_type":"all"}`))
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastCall != "unpause" || svc.lastType != "all" {
		t.Fatalf("unexpected call %s %s", svc.lastCall, svc.lastType)
	}
}

func TestPauseMealErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "cutoff", err: mealsdomain.ErrCutoffPassed, status: http.StatusUnprocessableEntity, code: "cutoff_passed"},
		{name: "already paused", err: mealsdomain.ErrAlreadyPaused, status: http.StatusUnprocessableEntity, code: "meal_already_paused"},
		{name: "outside window", err: mealsdomain.ErrOutsideWindow, status: http.StatusBadRequest, code: "date_outside_window"},
		{name: "grouped", err: mealsdomain.ErrMealGrouped, status: http.StatusConflict, code: "meal_grouped"},
		{name: "not covered", err: mealsdomain.ErrNoMealsOnDate, status: http.StatusNotFound, code: "no_meals_on_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/meals/pause", strings.NewReader(`{"date":"2026-03-03","meal_type":"lunch"}`))
			newTestRouter(&stubService{err: tc.err}).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.code) {
				t.Fatalf("expected code %s, got %s", tc.code, rec.Body.String())
			}
		})
	}
}

func TestReassignSlotRejectsBadMealID(t *testing.T) {
	svc := &stubService{views: []mealsdomain.MealView{lunchView(false)}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/meals/not-a-uuid/slot", strings.NewReader(`{"delivery_slot_id":"a1b2c3d4-0000-4000-8000-000000000003"}`))
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.lastSlot != "" {
		t.Fatalf("expected service not to be called")
	}
}

func TestGetScheduleGroupsByDay(t *testing.T) {
	svc := &stubService{schedule: []mealsdomain.DaySchedule{
		{Date: clock.Date(2026, time.March, 3), Meals: []mealsdomain.MealView{lunchView(false)}},
		{Date: clock.Date(2026, time.March, 4)},
	}}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meals/schedule", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Days []dayResponse `json:"days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Days) != 2 || resp.Days[1].Date != "2026-03-04" || len(resp.Days[1].Meals) != 0 {
		t.Fatalf("unexpected schedule %+v", resp.Days)
	}
}
