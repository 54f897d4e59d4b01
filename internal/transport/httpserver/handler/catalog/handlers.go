package catalog

import (
	"context"

	catalogdomain "tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/pkg/logger"
)

type Service interface {
	ListPackages(ctx context.Context) ([]catalogdomain.Package, error)
	GetPackage(ctx context.Context, packageID string) (*catalogdomain.Package, error)
	ListSlots(ctx context.Context) ([]catalogdomain.DeliverySlot, error)
	ListTokenPackages(ctx context.Context) ([]catalogdomain.TokenPackage, error)
	ListUpgradePrices(ctx context.Context) ([]catalogdomain.UpgradePrice, error)
}

type Handlers struct {
	Catalog Service
	log     logger.Logger
}

func New(catalog Service, log logger.Logger) *Handlers {
	return &Handlers{
		Catalog: catalog,
		log:     log,
	}
}
