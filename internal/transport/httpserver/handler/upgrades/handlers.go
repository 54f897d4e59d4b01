package upgrades

import (
	"context"

	upgradedomain "tiffin-app-go/internal/domain/upgrade"
	"tiffin-app-go/pkg/logger"
)

type Service interface {
	Apply(ctx context.Context, userID string, input upgradedomain.ApplyInput) (*upgradedomain.Upgrade, error)
	ListActive(ctx context.Context, userID string) ([]upgradedomain.Upgrade, error)
	Remove(ctx context.Context, userID, upgradeID string) error
}

type Handlers struct {
	Upgrades Service
	log      logger.Logger
}

func New(upgrades Service, log logger.Logger) *Handlers {
	return &Handlers{
		Upgrades: upgrades,
		log:      log,
	}
}
