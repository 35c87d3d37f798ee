package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rgcaparas/intellipark/config"
	"github.com/rgcaparas/intellipark/internal/domain"
)

// RedisCache holds the staged booking payloads that bridge invoice creation
// and webhook confirmation, plus short-lived per-slot locks that serialize
// the availability check against concurrent requests. Staging lives in Redis
// rather than process memory so a restart between invoice and webhook does
// not orphan the reservation, and any instance can complete the callback.
type RedisCache struct {
	client     *redis.Client
	pendingTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, pendingTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		pendingTTL: pendingTTL,
	}
}

func (c *RedisCache) StagePending(ctx context.Context, externalID string, booking *domain.PendingBooking) error {
	payload, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pendingKey(externalID), payload, c.pendingTTL).Err()
}

// GetPending returns nil without error when no payload is staged for the id;
// an absent record means the booking was already reconciled or never existed.
func (c *RedisCache) GetPending(ctx context.Context, externalID string) (*domain.PendingBooking, error) {
	data, err := c.client.Get(ctx, pendingKey(externalID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var booking domain.PendingBooking
	if err := json.Unmarshal(data, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *RedisCache) RemovePending(ctx context.Context, externalID string) error {
	return c.client.Del(ctx, pendingKey(externalID)).Err()
}

func (c *RedisCache) AcquireSlotLock(ctx context.Context, slot string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(slot), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, slot string) error {
	return c.client.Del(ctx, slotLockKey(slot)).Err()
}

func pendingKey(externalID string) string {
	return fmt.Sprintf("pending:%s", externalID)
}

func slotLockKey(slot string) string {
	return fmt.Sprintf("lock:slot:%s", slot)
}
