package delivery

import (
	"net/http"
	"time"

	deliverydomain "tiffin-app-go/internal/domain/delivery"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	"tiffin-app-go/internal/transport/httpserver/middleware"
)

type createGroupRequest struct {
	ServiceDate    string   `json:"service_date" validate:"required,datetime=2006-01-02"`
	MemberIDs      []string `json:"member_ids" validate:"required,dive,uuid"`
	DeliverySlotID string   `json:"delivery_slot_id" validate:"required,uuid"`
}

type memberResponse struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	DeliverySlotID string `json:"delivery_slot_id"`
}

type groupResponse struct {
	ID             string           `json:"id"`
	ServiceDate    string           `json:"service_date"`
	DeliverySlotID string           `json:"delivery_slot_id"`
	Members        []memberResponse `json:"members"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	var req createGroupRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}
	date, err := commonhandler.ParseDate(req.ServiceDate)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid service_date")
		return
	}

	view, err := h.Delivery.Group(r.Context(), user.ID, date, req.MemberIDs, req.DeliverySlotID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "delivery.group", err, "user_id", user.ID, "service_date", req.ServiceDate)
		return
	}

	commonhandler.WriteJSON(w, http.StatusCreated, toGroupResponse(*view))
}

func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	date, ok := commonhandler.QueryDate(w, r, "date", h.Today())
	if !ok {
		return
	}

	views, err := h.Delivery.ListGroups(r.Context(), user.ID, date)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "delivery.list_groups", err, "user_id", user.ID)
		return
	}

	items := make([]groupResponse, 0, len(views))
	for _, view := range views {
		items = append(items, toGroupResponse(view))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	groupID, ok := commonhandler.URLUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Delivery.Ungroup(r.Context(), user.ID, groupID); err != nil {
		commonhandler.WriteServiceError(w, h.log, "delivery.ungroup", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toGroupResponse(view deliverydomain.GroupView) groupResponse {
	members := make([]memberResponse, 0, len(view.Members))
	for _, member := range view.Members {
		members = append(members, memberResponse{
			ID:             member.ID,
			Kind:           string(member.Kind),
			DeliverySlotID: member.DeliverySlotID,
		})
	}
	return groupResponse{
		ID:             view.ID,
		ServiceDate:    commonhandler.FormatDate(view.ServiceDate),
		DeliverySlotID: view.DeliverySlotID,
		Members:        members,
		CreatedAt:      view.CreatedAt,
	}
}
