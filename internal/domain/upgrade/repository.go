package upgrade

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockSubscription holds the subscription row until the transaction ends so
	// overlap checks for the same subscription run one at a time.
	LockSubscription(ctx context.Context, subscriptionID string) error
	Create(ctx context.Context, upgrade *Upgrade) error
	ListBySubscription(ctx context.Context, subscriptionID string) ([]Upgrade, error)
	// ListActive returns upgrades whose end date is on or after today, by start date.
	ListActive(ctx context.Context, subscriptionID string, today time.Time) ([]Upgrade, error)
	GetForUpdate(ctx context.Context, upgradeID string) (*OwnedUpgrade, error)
	Delete(ctx context.Context, upgradeID string) error
}
