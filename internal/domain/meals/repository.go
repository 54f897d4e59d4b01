package meals

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// InsertMissing inserts instances, skipping any whose
	// (subscription, date, item) key already exists.
	InsertMissing(ctx context.Context, instances []MealInstance) error
	ListByDates(ctx context.Context, subscriptionID string, dates []time.Time) ([]MealInstance, error)
	// LockByDate returns the instances for the date locked for update.
	LockByDate(ctx context.Context, subscriptionID string, date time.Time) ([]MealInstance, error)
	GetForUpdate(ctx context.Context, mealID string) (*MealInstance, error)
	SetPaused(ctx context.Context, mealIDs []string, paused bool) error
	UpdateSlot(ctx context.Context, mealID, slotID string) error
	AppendPauseRecord(ctx context.Context, record *PauseRecord) error
	ListPauseRecords(ctx context.Context, subscriptionID string) ([]PauseRecord, error)
}
