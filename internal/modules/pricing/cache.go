// README: Pricing snapshot cache backed by Redis. One JSON document per organization.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vtcquote/internal/types"
)

const (
	snapshotKeyPrefix = "pricing:snapshot:%s"
	// DefaultSnapshotTTL bounds how long a settings edit can go unnoticed without invalidation.
	DefaultSnapshotTTL = 60 * time.Second
)

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redis *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Cache{redis: redis, ttl: ttl}
}

// Get returns the cached snapshot and whether it was present.
func (c *Cache) Get(ctx context.Context, orgID types.ID) (Snapshot, bool, error) {
	raw, err := c.redis.Get(ctx, snapshotKey(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, true, nil
}

func (c *Cache) Set(ctx context.Context, orgID types.ID, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, snapshotKey(orgID), raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, orgID types.ID) error {
	return c.redis.Del(ctx, snapshotKey(orgID)).Err()
}

func snapshotKey(orgID types.ID) string {
	return fmt.Sprintf(snapshotKeyPrefix, string(orgID))
}
