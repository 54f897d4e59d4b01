package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"tiffin-app-go/internal/config"
	"tiffin-app-go/internal/transport/httpserver/handler"
	authmw "tiffin-app-go/internal/transport/httpserver/middleware"
	"tiffin-app-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSAllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Get("/packages", handlers.Catalog.ListPackages)
		r.Get("/packages/{id}", handlers.Catalog.GetPackage)
		r.Get("/delivery-slots", handlers.Catalog.ListSlots)
		r.Get("/curry/packages", handlers.Catalog.ListTokenPackages)
		r.Get("/upgrades/prices", handlers.Catalog.ListUpgradePrices)

		auth := authmw.NewJWTAuth(cfg.Auth, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)

			r.Post("/subscriptions", handlers.Subscriptions.CreateSubscription)
			r.Get("/subscriptions/active", handlers.Subscriptions.GetActiveSubscription)
			r.Post("/subscriptions/active/cancel", handlers.Subscriptions.CancelSubscription)
			r.Get("/subscriptions/history", handlers.Subscriptions.ListSubscriptionHistory)

			r.Get("/meals/schedule", handlers.Meals.GetSchedule)
			r.Post("/meals/pause", handlers.Meals.PauseMeal)
			r.Post("/meals/unpause", handlers.Meals.UnpauseMeal)
			r.Get("/meals/pauses", handlers.Meals.ListPauseHistory)
			r.Patch("/meals/{id}/slot", handlers.Meals.ReassignSlot)

			r.Get("/delivery-groups", handlers.Delivery.ListGroups)
			r.Post("/delivery-groups", handlers.Delivery.CreateGroup)
			r.Delete("/delivery-groups/{id}", handlers.Delivery.DeleteGroup)

			r.Get("/curry/wallets", handlers.Curry.ListWallets)
			r.Post("/curry/wallets", handlers.Curry.PurchaseTokens)
			r.Get("/curry/orders", handlers.Curry.ListOrders)
			r.Post("/curry/orders", handlers.Curry.PlaceOrder)
			r.Post("/curry/orders/{id}/cancel", handlers.Curry.CancelOrder)

			r.Get("/upgrades", handlers.Upgrades.ListUpgrades)
			r.Post("/upgrades", handlers.Upgrades.ApplyUpgrade)
			r.Delete("/upgrades/{id}", handlers.Upgrades.RemoveUpgrade)
		})
	})

	return r
}
