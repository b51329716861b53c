package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RankingCache handles Redis ZSET operations for per-announcement score rankings
type RankingCache interface {
	UpdateScore(ctx context.Context, announcementID, applicationID string, score float64) error
	Remove(ctx context.Context, announcementID, applicationID string) error
	GetTop(ctx context.Context, announcementID string, limit int) ([]RankingEntry, error)
	GetRank(ctx context.Context, announcementID, applicationID string) (int64, error)
	Clear(ctx context.Context, announcementID string) error
}

// RankingEntry represents a single ranking position
type RankingEntry struct {
	ApplicationID string  `json:"applicationId"`
	Score         float64 `json:"score"`
	Rank          int     `json:"rank"`
}

type rankingCache struct {
	client *redis.Client
}

// NewRankingCache creates a new ranking cache
func NewRankingCache(client *redis.Client) RankingCache {
	return &rankingCache{
		client: client,
	}
}

func (c *rankingCache) key(announcementID string) string {
	return fmt.Sprintf("announcement:%s:ranking", announcementID)
}

func (c *rankingCache) UpdateScore(ctx context.Context, announcementID, applicationID string, score float64) error {
	return c.client.ZAdd(ctx, c.key(announcementID), redis.Z{
		Score:  score,
		Member: applicationID,
	}).Err()
}

func (c *rankingCache) Remove(ctx context.Context, announcementID, applicationID string) error {
	return c.client.ZRem(ctx, c.key(announcementID), applicationID).Err()
}

func (c *rankingCache) GetTop(ctx context.Context, announcementID string, limit int) ([]RankingEntry, error) {
	if limit <= 0 {
		return []RankingEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(announcementID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]RankingEntry, len(results))
	for i, z := range results {
		entries[i] = RankingEntry{
			ApplicationID: z.Member.(string),
			Score:         z.Score,
			Rank:          i + 1,
		}
	}
	return entries, nil
}

func (c *rankingCache) GetRank(ctx context.Context, announcementID, applicationID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(announcementID), applicationID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}

func (c *rankingCache) Clear(ctx context.Context, announcementID string) error {
	return c.client.Del(ctx, c.key(announcementID)).Err()
}
