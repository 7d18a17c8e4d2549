package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"studynotes/internal/model"
)

// RunCache keeps the pollable status of ingestion runs. Entries expire after
// ttl; a run that is never polled does not linger.
type RunCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRunCache(client *redisv9.Client, ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RunCache{client: client, ttl: ttl}
}

func (c *RunCache) Get(ctx context.Context, runID string) (*model.RunStatus, bool, error) {
	raw, err := c.client.Get(ctx, c.key(runID)).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get run status failed: %w", err)
	}

	var status model.RunStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, false, fmt.Errorf("unmarshal run status failed: %w", err)
	}
	return &status, true, nil
}

func (c *RunCache) Set(ctx context.Context, status *model.RunStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal run status failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(status.RunID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set run status failed: %w", err)
	}
	return nil
}

func (c *RunCache) Delete(ctx context.Context, runID string) error {
	if err := c.client.Del(ctx, c.key(runID)).Err(); err != nil {
		return fmt.Errorf("redis delete run status failed: %w", err)
	}
	return nil
}

func (c *RunCache) key(runID string) string {
	return "study:run:" + runID
}
