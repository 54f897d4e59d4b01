package subscriptions

import (
	"context"

	subscriptiondomain "tiffin-app-go/internal/domain/subscription"
	"tiffin-app-go/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, userID string, input subscriptiondomain.CreateInput) (*subscriptiondomain.Subscription, error)
	GetActive(ctx context.Context, userID string) (*subscriptiondomain.Subscription, error)
	History(ctx context.Context, userID string) ([]subscriptiondomain.Subscription, error)
	Cancel(ctx context.Context, userID string) (*subscriptiondomain.Subscription, error)
	DaysRemaining(subscription *subscriptiondomain.Subscription) int
}

type Handlers struct {
	Subscriptions Service
	log           logger.Logger
}

func New(subscriptions Service, log logger.Logger) *Handlers {
	return &Handlers{
		Subscriptions: subscriptions,
		log:           log,
	}
}
