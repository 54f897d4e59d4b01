package meals

import (
	"net/http"
	"time"

	mealsdomain "tiffin-app-go/internal/domain/meals"
	cataloghandler "tiffin-app-go/internal/transport/httpserver/handler/catalog"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	"tiffin-app-go/internal/transport/httpserver/middleware"
)

type pauseRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	MealType string `json:"meal_type" validate:"required"`
}

type reassignSlotRequest struct {
	DeliverySlotID string `json:"delivery_slot_id" validate:"required,uuid"`
}

type mealResponse struct {
	ID              string                      `json:"id"`
	SubscriptionID  string                      `json:"subscription_id"`
	ServiceDate     string                      `json:"service_date"`
	ItemType        string                      `json:"item_type"`
	IsPaused        bool                        `json:"is_paused"`
	DeliveryGroupID *string                     `json:"delivery_group_id"`
	DeliverySlot    cataloghandler.SlotResponse `json:"delivery_slot"`
}

type dayResponse struct {
	Date  string         `json:"date"`
	Meals []mealResponse `json:"meals"`
}

type pauseRecordResponse struct {
	MealDate string    `json:"meal_date"`
	MealType string    `json:"meal_type"`
	Action   string    `json:"action"`
	PausedAt time.Time `json:"paused_at"`
}

func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	days, err := h.Meals.Schedule(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "meals.schedule", err, "user_id", user.ID)
		return
	}

	items := make([]dayResponse, 0, len(days))
	for _, day := range days {
		items = append(items, dayResponse{
			Date:  commonhandler.FormatDate(day.Date),
			Meals: toMealResponses(day.Meals),
		})
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"days": items})
}

func (h *Handlers) PauseMeal(w http.ResponseWriter, r *http.Request) {
	h.togglePause(w, r, true)
}

func (h *Handlers) UnpauseMeal(w http.ResponseWriter, r *http.Request) {
	h.togglePause(w, r, false)
}

func (h *Handlers) togglePause(w http.ResponseWriter, r *http.Request, pause bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	var req pauseRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}
	date, err := commonhandler.ParseDate(req.Date)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}

	op := "meals.unpause"
	toggle := h.Meals.Unpause
	if pause {
		op = "meals.pause"
		toggle = h.Meals.Pause
	}

	views, err := toggle(r.Context(), user.ID, date, req.MealType)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, op, err, "user_id", user.ID, "date", req.Date, "meal_type", req.MealType)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, dayResponse{
		Date:  commonhandler.FormatDate(date),
		Meals: toMealResponses(views),
	})
}

func (h *Handlers) ReassignSlot(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	mealID, ok := commonhandler.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var req reassignSlotRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.Meals.ReassignSlot(r.Context(), user.ID, mealID, req.DeliverySlotID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "meals.reassign_slot", err, "user_id", user.ID, "meal_id", mealID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, toMealResponse(*view))
}

func (h *Handlers) ListPauseHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	records, err := h.Meals.PauseHistory(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "meals.pause_history", err, "user_id", user.ID)
		return
	}

	items := make([]pauseRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, pauseRecordResponse{
			MealDate: commonhandler.FormatDate(record.MealDate),
			MealType: record.MealType,
			Action:   string(record.Action),
			PausedAt: record.PausedAt,
		})
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func toMealResponses(views []mealsdomain.MealView) []mealResponse {
	items := make([]mealResponse, 0, len(views))
	for _, view := range views {
		items = append(items, toMealResponse(view))
	}
	return items
}

func toMealResponse(view mealsdomain.MealView) mealResponse {
	return mealResponse{
		ID:              view.ID,
		SubscriptionID:  view.SubscriptionID,
		ServiceDate:     commonhandler.FormatDate(view.ServiceDate),
		ItemType:        string(view.ItemType),
		IsPaused:        view.IsPaused,
		DeliveryGroupID: view.DeliveryGroupID,
		DeliverySlot:    cataloghandler.ToSlotResponse(view.Slot),
	}
}
