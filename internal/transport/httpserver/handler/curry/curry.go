package curry

import (
	"net/http"
	"strings"
	"time"

	"tiffin-app-go/internal/domain/catalog"
	currydomain "tiffin-app-go/internal/domain/curry"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	"tiffin-app-go/internal/transport/httpserver/middleware"
)

type purchaseRequest struct {
	PackageID string `json:"package_id" validate:"required,uuid"`
}

type placeOrderRequest struct {
	DietType       string `json:"diet_type" validate:"required,oneof=veg nonveg"`
	CuisineType    string `json:"cuisine_type" validate:"required,oneof=south north"`
	OrderDate      string `json:"order_date" validate:"required,datetime=2006-01-02"`
	DeliverySlotID string `json:"delivery_slot_id" validate:"omitempty,uuid"`
	GroupWithMeal  bool   `json:"group_with_meal"`
}

type walletResponse struct {
	ID              string `json:"id"`
	DietType        string `json:"diet_type"`
	TotalTokens     int    `json:"total_tokens"`
	UsedTokens      int    `json:"used_tokens"`
	RemainingTokens int    `json:"remaining_tokens"`
	ValidUntil      string `json:"valid_until"`
	IsExpired       bool   `json:"is_expired"`
}

type orderResponse struct {
	ID              string    `json:"id"`
	WalletID        string    `json:"wallet_id"`
	CuisineType     string    `json:"cuisine_type"`
	OrderDate       string    `json:"order_date"`
	DeliverySlotID  string    `json:"delivery_slot_id"`
	DeliveryGroupID *string   `json:"delivery_group_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (h *Handlers) PurchaseTokens(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	var req purchaseRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}

	balance, err := h.Curry.Purchase(r.Context(), user.ID, req.PackageID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "curry.purchase", err, "user_id", user.ID, "package_id", req.PackageID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, toWalletResponse(*balance))
}

func (h *Handlers) ListWallets(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	balances, err := h.Curry.ListWallets(r.Context(), user.ID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "curry.list_wallets", err, "user_id", user.ID)
		return
	}

	items := make([]walletResponse, 0, len(balances))
	for _, balance := range balances {
		items = append(items, toWalletResponse(balance))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	var req placeOrderRequest
	if !commonhandler.DecodeAndValidate(w, r, &req) {
		return
	}
	orderDate, err := commonhandler.ParseDate(req.OrderDate)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid order_date")
		return
	}

	order, err := h.Curry.PlaceOrder(r.Context(), user.ID, currydomain.PlaceOrderInput{
		DietType:       catalog.DietType(req.DietType),
		CuisineType:    catalog.CuisineType(req.CuisineType),
		OrderDate:      orderDate,
		DeliverySlotID: req.DeliverySlotID,
		GroupWithMeal:  req.GroupWithMeal,
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "curry.place_order", err, "user_id", user.ID, "order_date", req.OrderDate)
		return
	}

	commonhandler.WriteJSON(w, http.StatusCreated, toOrderResponse(*order))
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	orders, err := h.Curry.ListOrders(r.Context(), user.ID, status)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "curry.list_orders", err, "user_id", user.ID)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	commonhandler.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		commonhandler.WriteUnauthorized(w)
		return
	}

	orderID, ok := commonhandler.URLUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.Curry.CancelOrder(r.Context(), user.ID, orderID)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "curry.cancel_order", err, "user_id", user.ID, "order_id", orderID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, toOrderResponse(*order))
}

func toWalletResponse(balance currydomain.Balance) walletResponse {
	return walletResponse{
		ID:              balance.ID,
		DietType:        string(balance.DietType),
		TotalTokens:     balance.TotalTokens,
		UsedTokens:      balance.UsedTokens,
		RemainingTokens: balance.Remaining,
		ValidUntil:      commonhandler.FormatDate(balance.ValidUntil),
		IsExpired:       balance.Expired,
	}
}

func toOrderResponse(order currydomain.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		WalletID:        order.WalletID,
		CuisineType:     string(order.CuisineType),
		OrderDate:       commonhandler.FormatDate(order.OrderDate),
		DeliverySlotID:  order.DeliverySlotID,
		DeliveryGroupID: order.DeliveryGroupID,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
	}
}
