package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mstress/internal/model"
)

// SummaryCache handles Redis operations for per-user assessment summaries.
type SummaryCache interface {
	Get(ctx context.Context, userID string) (*model.AssessmentSummary, error)
	Set(ctx context.Context, summary *model.AssessmentSummary) error
	Invalidate(ctx context.Context, userID string) error
}

type summaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache(client *redis.Client) SummaryCache {
	return &summaryCache{
		client: client,
		ttl:    1 * time.Hour,
	}
}

func (c *summaryCache) key(userID string) string {
	return fmt.Sprintf("user:%s:summary", userID)
}

func (c *summaryCache) Get(ctx context.Context, userID string) (*model.AssessmentSummary, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary model.AssessmentSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *summaryCache) Set(ctx context.Context, summary *model.AssessmentSummary) error {
	summary.UpdatedAt = time.Now()
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(summary.UserID), data, c.ttl).Err()
}

func (c *summaryCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}
