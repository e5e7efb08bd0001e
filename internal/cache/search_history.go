package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"holistica/internal/model"
)

const defaultHistoryLimit = 10

// SearchHistory keeps the most recent question/answer records in a redis
// list, newest first, trimmed to a fixed cap. History is UI-adjacent state;
// losing it is harmless.
type SearchHistory struct {
	client *redisv9.Client
	key    string
	limit  int
	ttl    time.Duration
}

func NewSearchHistory(client *redisv9.Client, key string, limit int, ttl time.Duration) *SearchHistory {
	if key == "" {
		key = "library:search:history"
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &SearchHistory{client: client, key: key, limit: limit, ttl: ttl}
}

// Add pushes a record to the front and trims the list to the cap.
func (h *SearchHistory) Add(ctx context.Context, record model.SearchRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal search record failed: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, h.key, payload)
	pipe.LTrim(ctx, h.key, 0, int64(h.limit-1))
	if h.ttl > 0 {
		pipe.Expire(ctx, h.key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push search record failed: %w", err)
	}
	return nil
}

// Recent returns up to the cap of records, newest first.
func (h *SearchHistory) Recent(ctx context.Context) ([]model.SearchRecord, error) {
	raw, err := h.client.LRange(ctx, h.key, 0, int64(h.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read search history failed: %w", err)
	}

	records := make([]model.SearchRecord, 0, len(raw))
	for _, item := range raw {
		var r model.SearchRecord
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// Clear drops the whole history list.
func (h *SearchHistory) Clear(ctx context.Context) error {
	if err := h.client.Del(ctx, h.key).Err(); err != nil {
		return fmt.Errorf("redis clear search history failed: %w", err)
	}
	return nil
}
