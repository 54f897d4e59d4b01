package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	catalogdomain "tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/pkg/logger"
)

const cacheOpTimeout = 500 * time.Millisecond

// CatalogCache stores catalog rows as JSON so every instance shares one copy.
// Redis failures are logged and treated as misses.
type CatalogCache struct {
	client goredis.UniversalClient
	prefix string
	log    logger.Logger
}

func NewCatalogCache(client goredis.UniversalClient, prefix string, log logger.Logger) *CatalogCache {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogCache{
		client: client,
		prefix: normalizePrefix(prefix) + ":catalog",
		log:    log,
	}
}

func (c *CatalogCache) GetPackage(packageID string) (*catalogdomain.Package, bool) {
	var pkg catalogdomain.Package
	if !c.get(c.packageKey(packageID), &pkg) {
		return nil, false
	}
	return &pkg, true
}

func (c *CatalogCache) SetPackage(pkg *catalogdomain.Package, ttl time.Duration) {
	if pkg == nil {
		return
	}
	c.set(c.packageKey(pkg.ID), pkg, ttl)
}

func (c *CatalogCache) GetSlots() ([]catalogdomain.DeliverySlot, bool) {
	var slots []catalogdomain.DeliverySlot
	if !c.get(c.slotsKey(), &slots) {
		return nil, false
	}
	return slots, true
}

func (c *CatalogCache) SetSlots(slots []catalogdomain.DeliverySlot, ttl time.Duration) {
	c.set(c.slotsKey(), slots, ttl)
}

func (c *CatalogCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	keys := []string{c.slotsKey()}
	iter := c.client.Scan(ctx, 0, c.prefix+":package:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.InternalError("catalog.cache: scan failed", err)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.InternalError("catalog.cache: clear failed", err)
	}
}

func (c *CatalogCache) get(key string, dest interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false
	}
	if err != nil {
		c.log.InternalError("catalog.cache: get failed", err, "key", key)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.InternalError("catalog.cache: decode failed", err, "key", key)
		return false
	}
	return true
}

func (c *CatalogCache) set(key string, value interface{}, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	if ttl <= 0 {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.log.InternalError("catalog.cache: delete failed", err, "key", key)
		}
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.log.InternalError("catalog.cache: encode failed", err, "key", key)
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.log.InternalError("catalog.cache: set failed", err, "key", key)
	}
}

func (c *CatalogCache) packageKey(packageID string) string {
	return c.prefix + ":package:" + packageID
}

func (c *CatalogCache) slotsKey() string {
	return c.prefix + ":slots"
}

func normalizePrefix(prefix string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		return "tiffin"
	}
	return trimmed
}
