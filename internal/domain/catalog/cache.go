package catalog

import "time"

// Cache keeps hot catalog rows out of the database. Every meal materialization
// resolves the package and the slot table, so both are cached.
type Cache interface {
	GetPackage(packageID string) (*Package, bool)
	SetPackage(pkg *Package, ttl time.Duration)
	GetSlots() ([]DeliverySlot, bool)
	SetSlots(slots []DeliverySlot, ttl time.Duration)
	Clear()
}

type noopCache struct{}

func (noopCache) GetPackage(string) (*Package, bool) {
	return nil, false
}

func (noopCache) SetPackage(*Package, time.Duration) {}

func (noopCache) GetSlots() ([]DeliverySlot, bool) {
	return nil, false
}

func (noopCache) SetSlots([]DeliverySlot, time.Duration) {}

func (noopCache) Clear() {}
