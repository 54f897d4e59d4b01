package subscriptions

import (
	"net/http"
	"time"

	subscriptiondomain "tiffin-app-go/internal/domain/subscription"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	"tiffin-app-go/internal/transport/httpserver/middleware"
)

type createSubscriptionRequest struct {
	PackageID     string `json:"package_id" validate:"required,uuid"`
	AddressID     string `json:"address_id" validate:"required,uuid"`
	ContainerType string `json:"container_type" validate:"omitempty,max=32"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type subscriptionResponse struct {
	ID            string    `json:"id"`
	PackageID     string    `json:"package_id"`
	AddressID     string    `json:"address_id"`
	ContainerType string    `json:"container_type"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Status        string    `json:"status"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *Handlers) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	var req createSubscriptionRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}
	startDate, err := commonhandler.ParseDate(req.StartDate)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid start_date")
		return
	}

	created, err := h.Subscriptions.Create(r.Context(), user.ID, subscriptiondomain.CreateInput{
		PackageID:     req.PackageID,
		AddressID:     req.AddressID,
		ContainerType: req.ContainerType,
		StartDate:     startDate,
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "subscriptions.create", err, "user_id", user.ID, "package_id", req.PackageID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusCreated, h.toResponse(*created, true))
}

func (h *Handlers) GetActiveSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	active, err := h.Subscriptions.GetActive(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "subscriptions.get_active", err, "user_id", user.ID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, h.toResponse(*active, true))
}

func (h *Handlers) ListSubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	history, err := h.Subscriptions.History(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "subscriptions.history", err, "user_id", user.ID)
		return
	}

	items := make([]subscriptionResponse, 0, len(history))
	for _, item := range history {
		items = append(items, h.toResponse(item, item.Status == subscriptiondomain.StatusActive))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	cancelled, err := h.Subscriptions.Cancel(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "subscriptions.cancel", err, "user_id", user.ID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, h.toResponse(*cancelled, false))
}

func (h *Handlers) toResponse(sub subscriptiondomain.Subscription, withRemaining bool) subscriptionResponse {
	resp := subscriptionResponse{
		ID:            sub.ID,
		PackageID:     sub.PackageID,
		AddressID:     sub.AddressID,
		ContainerType: sub.ContainerType,
		StartDate:     commonhandler.FormatDate(sub.StartDate),
		EndDate:       commonhandler.FormatDate(sub.EndDate),
		Status:        string(sub.Status),
		CreatedAt:     sub.CreatedAt,
	}
	if withRemaining {
		days := h.Subscriptions.DaysRemaining(&sub)
		resp.DaysRemaining = &days
	}
	return resp
}
