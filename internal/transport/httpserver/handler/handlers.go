package handler

import (
	cataloghandler "tiffin-app-go/internal/transport/httpserver/handler/catalog"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	curryhandler "tiffin-app-go/internal/transport/httpserver/handler/curry"
	deliveryhandler "tiffin-app-go/internal/transport/httpserver/handler/delivery"
	mealshandler "tiffin-app-go/internal/transport/httpserver/handler/meals"
	subscriptionshandler "tiffin-app-go/internal/transport/httpserver/handler/subscriptions"
	upgradeshandler "tiffin-app-go/internal/transport/httpserver/handler/upgrades"
)

type Handlers struct {
	Common        *commonhandler.Handlers
	Catalog       *cataloghandler.Handlers
	Subscriptions *subscriptionshandler.Handlers
	Meals         *mealshandler.Handlers
	Delivery      *deliveryhandler.Handlers
	Curry         *curryhandler.Handlers
	Upgrades      *upgradeshandler.Handlers
}
