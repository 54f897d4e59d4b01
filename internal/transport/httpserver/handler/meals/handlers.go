package meals

import (
	"context"
	"time"

	mealsdomain "tiffin-app-go/internal/domain/meals"
	"tiffin-app-go/pkg/logger"
)

type Service interface {
	Schedule(ctx context.Context, userID string) ([]mealsdomain.DaySchedule, error)
	Pause(ctx context.Context, userID string, date time.Time, mealType string) ([]mealsdomain.MealView, error)
	Unpause(ctx context.Context, userID string, date time.Time, mealType string) ([]mealsdomain.MealView, error)
	ReassignSlot(ctx context.Context, userID, mealID, slotID string) (*mealsdomain.MealView, error)
	PauseHistory(ctx context.Context, userID string) ([]mealsdomain.PauseRecord, error)
}

type Handlers struct {
	Meals Service
	log   logger.Logger
}

func New(meals Service, log logger.Logger) *Handlers {
	return &Handlers{
		Meals: meals,
		log:   log,
	}
}
