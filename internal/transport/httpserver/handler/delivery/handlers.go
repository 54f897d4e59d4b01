package delivery

import (
	"context"
	"time"

	deliverydomain "tiffin-app-go/internal/domain/delivery"
	"tiffin-app-go/pkg/logger"
)

type Service interface {
	Group(ctx context.Context, userID string, serviceDate time.Time, ids []string, slotID string) (*deliverydomain.GroupView, error)
	Ungroup(ctx context.Context, userID, groupID string) error
	ListGroups(ctx context.Context, userID string, date time.Time) ([]deliverydomain.GroupView, error)
}

type Handlers struct {
	Delivery Service
	Today    func() time.Time
	log      logger.Logger
}

func New(delivery Service, today func() time.Time, log logger.Logger) *Handlers {
	return &Handlers{
		Delivery: delivery,
		Today:    today,
		log:      log,
	}
}
