package catalog

import (
	"context"
	"fmt"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
}

func NewService(repo Repository, cache Cache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *Service) ListPackages(ctx context.Context) ([]Package, error) {
	packages, err := s.repo.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Package, 0, len(packages))
	for _, pkg := range packages {
		if pkg.IsActive {
			active = append(active, pkg)
		}
	}
	return active, nil
}

// GetPackage returns an active package. Inactive packages are reported as missing.
func (s *Service) GetPackage(ctx context.Context, packageID string) (*Package, error) {
	pkg, err := s.PackageByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

// PackageByID returns the package whether or not it is still offered.
// Running subscriptions keep being served from a withdrawn package.
func (s *Service) PackageByID(ctx context.Context, packageID string) (*Package, error) {
	if pkg, ok := s.cache.GetPackage(packageID); ok {
		return pkg, nil
	}

	pkg, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	s.cache.SetPackage(pkg, s.cacheTTL)

	return pkg, nil
}

func (s *Service) ListSlots(ctx context.Context) ([]DeliverySlot, error) {
	slots, err := s.AllSlots(ctx)
	if err != nil {
		return nil, err
	}
	return activeSlots(slots), nil
}

// AllSlots includes deactivated slots so existing meals can still be described.
func (s *Service) AllSlots(ctx context.Context) ([]DeliverySlot, error) {
	if slots, ok := s.cache.GetSlots(); ok {
		return slots, nil
	}

	slots, err := s.repo.ListSlots(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetSlots(slots, s.cacheTTL)

	return slots, nil
}

func (s *Service) GetSlot(ctx context.Context, slotID string) (*DeliverySlot, error) {
	slots, err := s.ListSlots(ctx)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].ID == slotID {
			slot := slots[i]
			return &slot, nil
		}
	}
	return nil, ErrSlotNotFound
}

// SlotForItem resolves the default delivery slot for an item type.
func (s *Service) SlotForItem(ctx context.Context, item ItemType) (*DeliverySlot, error) {
	code, ok := DefaultSlotCodes[item]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotConfigured, item)
	}

	slots, err := s.ListSlots(ctx)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].Code == code {
			slot := slots[i]
			return &slot, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSlotNotConfigured, item)
}

// SlotsByItem resolves the default slot of every item in items.
func (s *Service) SlotsByItem(ctx context.Context, items []ItemType) (map[ItemType]DeliverySlot, error) {
	result := make(map[ItemType]DeliverySlot, len(items))
	for _, item := range items {
		slot, err := s.SlotForItem(ctx, item)
		if err != nil {
			return nil, err
		}
		result[item] = *slot
	}
	return result, nil
}

func (s *Service) DefaultLunchSlot(ctx context.Context) (*DeliverySlot, error) {
	return s.SlotForItem(ctx, ItemLunch)
}

func (s *Service) ListTokenPackages(ctx context.Context) ([]TokenPackage, error) {
	packages, err := s.repo.ListTokenPackages(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]TokenPackage, 0, len(packages))
	for _, pkg := range packages {
		if pkg.IsActive {
			active = append(active, pkg)
		}
	}
	return active, nil
}

func (s *Service) GetTokenPackage(ctx context.Context, packageID string) (*TokenPackage, error) {
	pkg, err := s.repo.GetTokenPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrTokenPackageNotFound
	}
	return pkg, nil
}

func (s *Service) ListUpgradePrices(ctx context.Context) ([]UpgradePrice, error) {
	prices, err := s.repo.ListUpgradePrices(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]UpgradePrice, 0, len(prices))
	for _, price := range prices {
		if price.IsActive {
			active = append(active, price)
		}
	}
	return active, nil
}

// FindUpgradePrice looks up the active price row for the exact (type, scope, meal) triple.
// mealType must be nil for day and week scopes.
func (s *Service) FindUpgradePrice(ctx context.Context, upgradeType UpgradeType, scope UpgradeScope, mealType *ItemType) (*UpgradePrice, error) {
	price, err := s.repo.FindUpgradePrice(ctx, upgradeType, scope, mealType)
	if err != nil {
		return nil, err
	}
	if !price.IsActive {
		return nil, ErrUpgradePriceNotFound
	}
	return price, nil
}

// GetOwnedAddress returns the address only when it belongs to userID.
// Another user's address is indistinguishable from a missing one.
func (s *Service) GetOwnedAddress(ctx context.Context, userID, addressID string) (*Address, error) {
	address, err := s.repo.GetAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func activeSlots(slots []DeliverySlot) []DeliverySlot {
	active := make([]DeliverySlot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsActive {
			active = append(active, slot)
		}
	}
	return active
}
