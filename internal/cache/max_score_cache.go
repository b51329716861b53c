package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxScoreCache keeps the estimated maximum score of each announcement
type MaxScoreCache interface {
	// Get returns nil on a miss
	Get(ctx context.Context, announcementID string) (*float64, error)
	Set(ctx context.Context, announcementID string, score float64) error
	Invalidate(ctx context.Context, announcementID string) error
}

type maxScoreEntry struct {
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computedAt"`
}

type maxScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMaxScoreCache creates a new maximum score cache
func NewMaxScoreCache(client *redis.Client, ttl time.Duration) MaxScoreCache {
	return &maxScoreCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *maxScoreCache) key(announcementID string) string {
	return fmt.Sprintf("announcement:%s:maxscore", announcementID)
}

func (c *maxScoreCache) Get(ctx context.Context, announcementID string) (*float64, error) {
	data, err := c.client.Get(ctx, c.key(announcementID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry maxScoreEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}
	return &entry.Score, nil
}

func (c *maxScoreCache) Set(ctx context.Context, announcementID string, score float64) error {
	data, err := json.Marshal(maxScoreEntry{Score: score, ComputedAt: time.Now()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(announcementID), data, c.ttl).Err()
}

func (c *maxScoreCache) Invalidate(ctx context.Context, announcementID string) error {
	return c.client.Del(ctx, c.key(announcementID)).Err()
}
