package catalog

import "context"

type Repository interface {
	ListPackages(ctx context.Context) ([]Package, error)
	GetPackage(ctx context.Context, packageID string) (*Package, error)
	ListSlots(ctx context.Context) ([]DeliverySlot, error)
	ListTokenPackages(ctx context.Context) ([]TokenPackage, error)
	GetTokenPackage(ctx context.Context, packageID string) (*TokenPackage, error)
	ListUpgradePrices(ctx context.Context) ([]UpgradePrice, error)
	FindUpgradePrice(ctx context.Context, upgradeType UpgradeType, scope UpgradeScope, mealType *ItemType) (*UpgradePrice, error)
	GetAddress(ctx context.Context, addressID string) (*Address, error)
}
