package inmemory

import (
	"sync"
	"time"

	catalogdomain "tiffin-app-go/internal/domain/catalog"
)

type InMemoryCatalogCache struct {
	mu       sync.RWMutex
	packages map[string]packageItem
	slots    *slotsItem
	now      func() time.Time
}

type packageItem struct {
	value     catalogdomain.Package
	expiresAt time.Time
}

type slotsItem struct {
	value     []catalogdomain.DeliverySlot
	expiresAt time.Time
}

func NewInMemoryCatalogCache() *InMemoryCatalogCache {
	return &InMemoryCatalogCache{
		packages: make(map[string]packageItem),
		now:      time.Now,
	}
}

func (c *InMemoryCatalogCache) GetPackage(packageID string) (*catalogdomain.Package, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.packages[packageID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.packages[packageID]
		if ok && !item.expiresAt.After(now) {
			delete(c.packages, packageID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := clonePackage(item.value)
	return &value, true
}

func (c *InMemoryCatalogCache) SetPackage(pkg *catalogdomain.Package, ttl time.Duration) {
	if pkg == nil {
		return
	}
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.packages, pkg.ID)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.packages[pkg.ID] = packageItem{
		value:     clonePackage(*pkg),
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemoryCatalogCache) GetSlots() ([]catalogdomain.DeliverySlot, bool) {
	now := c.now()

	c.mu.RLock()
	item := c.slots
	c.mu.RUnlock()
	if item == nil {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		if c.slots == item {
			c.slots = nil
		}
		c.mu.Unlock()
		return nil, false
	}

	return cloneSlots(item.value), true
}

func (c *InMemoryCatalogCache) SetSlots(slots []catalogdomain.DeliverySlot, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		c.slots = nil
		return
	}
	c.slots = &slotsItem{
		value:     cloneSlots(slots),
		expiresAt: c.now().Add(ttl),
	}
}

func (c *InMemoryCatalogCache) Clear() {
	c.mu.Lock()
	c.packages = make(map[string]packageItem)
	c.slots = nil
	c.mu.Unlock()
}

func clonePackage(pkg catalogdomain.Package) catalogdomain.Package {
	cloned := pkg
	if pkg.ItemTypes != nil {
		cloned.ItemTypes = append(pkg.ItemTypes[:0:0], pkg.ItemTypes...)
	}
	if pkg.AllowedContainers != nil {
		cloned.AllowedContainers = append(pkg.AllowedContainers[:0:0], pkg.AllowedContainers...)
	}
	return cloned
}

func cloneSlots(slots []catalogdomain.DeliverySlot) []catalogdomain.DeliverySlot {
	if slots == nil {
		return nil
	}
	cloned := make([]catalogdomain.DeliverySlot, len(slots))
	copy(cloned, slots)
	return cloned
}
