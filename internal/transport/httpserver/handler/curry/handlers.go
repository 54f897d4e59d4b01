package curry

import (
	"context"

	currydomain "tiffin-app-go/internal/domain/curry"
	"tiffin-app-go/pkg/logger"
)

type Service interface {
	Purchase(ctx context.Context, userID, packageID string) (*currydomain.Balance, error)
	ListWallets(ctx context.Context, userID string) ([]currydomain.Balance, error)
	PlaceOrder(ctx context.Context, userID string, input currydomain.PlaceOrderInput) (*currydomain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*currydomain.Order, error)
	ListOrders(ctx context.Context, userID, status string) ([]currydomain.Order, error)
}

type Handlers struct {
	Curry Service
	log   logger.Logger
}

func New(curry Service, log logger.Logger) *Handlers {
	return &Handlers{
		Curry: curry,
		log:   log,
	}
}
