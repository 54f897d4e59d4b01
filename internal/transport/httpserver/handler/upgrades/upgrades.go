package upgrades

import (
	"net/http"
	"time"

	"tiffin-app-go/internal/domain/catalog"
	upgradedomain "tiffin-app-go/internal/domain/upgrade"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	"tiffin-app-go/internal/transport/httpserver/middleware"
)

type applyUpgradeRequest struct {
	UpgradeType string  `json:"upgrade_type" validate:"required"`
	Scope       string  `json:"scope" validate:"required"`
	MealType    *string `json:"meal_type"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type upgradeResponse struct {
	ID          string    `json:"id"`
	UpgradeType string    `json:"upgrade_type"`
	Scope       string    `json:"scope"`
	MealType    *string   `json:"meal_type"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handlers) ApplyUpgrade(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	var req applyUpgradeRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}
	startDate, err := commonhandler.ParseDate(req.StartDate)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid start_date")
		return
	}
	endDate, err := commonhandler.ParseDate(req.EndDate)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid end_date")
		return
	}

	input := upgradedomain.ApplyInput{
		UpgradeType: catalog.UpgradeType(req.UpgradeType),
		Scope:       catalog.UpgradeScope(req.Scope),
		StartDate:   startDate,
		EndDate:     endDate,
	}
	if req.MealType != nil {
		mealType := catalog.ItemType(*req.MealType)
		input.MealType = &mealType
	}

	upgrade, err := h.Upgrades.Apply(r.Context(), user.ID, input)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "upgrades.apply", err, "user_id", user.ID, "upgrade_type", req.UpgradeType)
		return
	}

	commonhandler.WriteJSON(w, http.StatusCreated, toUpgradeResponse(*upgrade))
}

func (h *Handlers) ListUpgrades(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	upgrades, err := h.Upgrades.ListActive(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "upgrades.list", err, "user_id", user.ID)
		return
	}

	items := make([]upgradeResponse, 0, len(upgrades))
	for _, upgrade := range upgrades {
		items = append(items, toUpgradeResponse(upgrade))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) RemoveUpgrade(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	upgradeID, ok := commonhandler.URLUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Upgrades.Remove(r.Context(), user.ID, upgradeID); err != nil {
		commonhandler.WriteServiceError(w, h.log, "upgrades.remove", err, "user_id", user.ID, "upgrade_id", upgradeID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUpgradeResponse(upgrade upgradedomain.Upgrade) upgradeResponse {
	var mealType *string
	if upgrade.MealType != nil {
		value := string(*upgrade.MealType)
		mealType = &value
	}
	return upgradeResponse{
		ID:          upgrade.ID,
		UpgradeType: string(upgrade.UpgradeType),
		Scope:       string(upgrade.Scope),
		MealType:    mealType,
		StartDate:   commonhandler.FormatDate(upgrade.StartDate),
		EndDate:     commonhandler.FormatDate(upgrade.EndDate),
		Price:       upgrade.Price.StringFixed(2),
		CreatedAt:   upgrade.CreatedAt,
	}
}
