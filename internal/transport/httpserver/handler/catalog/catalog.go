package catalog

import (
	"net/http"

	catalogdomain "tiffin-app-go/internal/domain/catalog"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
)

type packageResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	DietType             string   `json:"diet_type"`
	CuisineType          string   `json:"cuisine_type"`
	DurationDays         int      `json:"duration_days"`
	ItemTypes            []string `json:"item_types"`
	AllowContainerChoice bool     `json:"allow_container_choice"`
	DefaultContainer     string   `json:"default_container"`
	AllowedContainers    []string `json:"allowed_containers"`
	AllowsDietUpgrade    bool     `json:"allows_diet_upgrade"`
	AllowsCuisineUpgrade bool     `json:"allows_cuisine_upgrade"`
	Price                string   `json:"price"`
}

// SlotResponse is the slot detail shared with the meal handlers.
type SlotResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Label    string `json:"label"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
}

type tokenPackageResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DietType     string `json:"diet_type"`
	TokenCount   int    `json:"token_count"`
	ValidityDays int    `json:"validity_days"`
	Price        string `json:"price"`
}

type upgradePriceResponse struct {
	UpgradeType string  `json:"upgrade_type"`
	Scope       string  `json:"scope"`
	MealType    *string `json:"meal_type"`
	UnitPrice   string  `json:"unit_price"`
}

func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Catalog.ListPackages(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "catalog.list_packages", err)
		return
	}

	items := make([]packageResponse, 0, len(packages))
	for _, pkg := range packages {
		items = append(items, toPackageResponse(pkg))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) GetPackage(w http.ResponseWriter, r *http.Request) {
	packageID, ok := commonhandler.URLUUID(w, r, "id")
	if !ok {
		return
	}

	pkg, err := h.Catalog.GetPackage(r.Context(), packageID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "catalog.get_package", err, "package_id", packageID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, toPackageResponse(*pkg))
}

func (h *Handlers) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Catalog.ListSlots(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "catalog.list_slots", err)
		return
	}

	items := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, ToSlotResponse(slot))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) ListTokenPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Catalog.ListTokenPackages(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "catalog.list_token_packages", err)
		return
	}

	items := make([]tokenPackageResponse, 0, len(packages))
	for _, pkg := range packages {
		items = append(items, tokenPackageResponse{
			ID:           pkg.ID,
			Name:         pkg.Name,
			DietType:     string(pkg.DietType),
			TokenCount:   pkg.TokenCount,
			ValidityDays: pkg.ValidityDays,
			Price:        pkg.Price.StringFixed(2),
		})
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) ListUpgradePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Catalog.ListUpgradePrices(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "catalog.list_upgrade_prices", err)
		return
	}

	items := make([]upgradePriceResponse, 0, len(prices))
	for _, price := range prices {
		var mealType *string
		if price.MealType != nil {
			value := string(*price.MealType)
			mealType = &value
		}
		items = append(items, upgradePriceResponse{
			UpgradeType: string(price.UpgradeType),
			Scope:       string(price.Scope),
			MealType:    mealType,
			UnitPrice:   price.UnitPrice.StringFixed(2),
		})
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func toPackageResponse(pkg catalogdomain.Package) packageResponse {
	items := make([]string, 0, len(pkg.ItemTypes))
	for _, item := range pkg.ItemTypes {
		items = append(items, string(item))
	}
	containers := make([]string, 0, len(pkg.AllowedContainers))
	containers = append(containers, pkg.AllowedContainers...)

	return packageResponse{
		ID:                   pkg.ID,
		Name:                 pkg.Name,
		DietType:             string(pkg.DietType),
		CuisineType:          string(pkg.CuisineType),
		DurationDays:         pkg.DurationDays,
		ItemTypes:            items,
		AllowContainerChoice: pkg.AllowContainerChoice,
		DefaultContainer:     pkg.DefaultContainer,
		AllowedContainers:    containers,
		AllowsDietUpgrade:    pkg.AllowsDietUpgrade,
		AllowsCuisineUpgrade: pkg.AllowsCuisineUpgrade,
		Price:                pkg.Price.StringFixed(2),
	}
}

func ToSlotResponse(slot catalogdomain.DeliverySlot) SlotResponse {
	return SlotResponse{
		ID:       slot.ID,
		Code:     string(slot.Code),
		Label:    slot.Label,
		StartsAt: slot.StartsAt,
		EndsAt:   slot.EndsAt,
	}
}
