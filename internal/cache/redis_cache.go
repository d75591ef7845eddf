package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "notifier:sent:"

type RedisSentMarker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSentMarker(rdb *redis.Client, ttl time.Duration) *RedisSentMarker {
	return &RedisSentMarker{rdb: rdb, ttl: ttl}
}

type sentValue struct {
	MarkedAt time.Time `json:"markedAt"`
}

// ReminderKey identifies one reminder send for a (client, template, day).
func ReminderKey(clientID, templateID int64, day time.Time) string {
	return fmt.Sprintf("reminder:%d:%d:%s", clientID, templateID, day.Format("20060102"))
}

// ResellerKey identifies one lifecycle notice for a (tenant, trigger, day).
func ResellerKey(tenantID, trigger string, day time.Time) string {
	return fmt.Sprintf("reseller:%s:%s:%s", tenantID, trigger, day.Format("20060102"))
}

func (c *RedisSentMarker) Seen(ctx context.Context, key string) (bool, error) {
	_, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisSentMarker) Mark(ctx context.Context, key string, at time.Time) error {
	b, err := json.Marshal(sentValue{MarkedAt: at.UTC()})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+key, b, c.ttl).Err()
}
