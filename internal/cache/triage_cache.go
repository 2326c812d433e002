package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TriageCache handles Redis ZSET operations for the review triage queue.
// Entries are ordered severity-major, completion-recency-minor via the score
// encoding, so one ZREVRANGE yields the triage order.
type TriageCache interface {
	Add(ctx context.Context, assessmentID string, severityRank int, completedAt time.Time) error
	Range(ctx context.Context, limit, offset int) ([]string, error)
	Remove(ctx context.Context, assessmentID string) error
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

type triageCache struct {
	client *redis.Client
}

// NewTriageCache creates a new triage cache
func NewTriageCache(client *redis.Client) TriageCache {
	return &triageCache{
		client: client,
	}
}

const triageKey = "reviews:triage"

// severityStride leaves room above any unix-millisecond timestamp, so the
// severity rank dominates and completedAt breaks ties within a rank.
const severityStride = float64(1 << 42)

func triageScore(severityRank int, completedAt time.Time) float64 {
	return float64(severityRank)*severityStride + float64(completedAt.UnixMilli())
}

func (c *triageCache) Add(ctx context.Context, assessmentID string, severityRank int, completedAt time.Time) error {
	return c.client.ZAdd(ctx, triageKey, redis.Z{
		Score:  triageScore(severityRank, completedAt),
		Member: assessmentID,
	}).Err()
}

func (c *triageCache) Range(ctx context.Context, limit, offset int) ([]string, error) {
	return c.client.ZRevRange(ctx, triageKey, int64(offset), int64(offset+limit-1)).Result()
}

func (c *triageCache) Remove(ctx context.Context, assessmentID string) error {
	return c.client.ZRem(ctx, triageKey, assessmentID).Err()
}

func (c *triageCache) Size(ctx context.Context) (int64, error) {
	return c.client.ZCard(ctx, triageKey).Result()
}

func (c *triageCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, triageKey).Err()
}
