package subscription

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetActiveByUser(ctx context.Context, userID string) (*Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]Subscription, error)
	Create(ctx context.Context, subscription *Subscription) error
	// TransitionStatus moves the subscription from one status to another and
	// reports whether a row was changed.
	TransitionStatus(ctx context.Context, subscriptionID string, from, to Status) (bool, error)
}
