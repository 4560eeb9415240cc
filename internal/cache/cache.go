package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"ragchat/internal/config"
	"ragchat/internal/storage"
)

const (
	indexKey     = "ragchat:conversations:index"
	summariesKey = "ragchat:conversations:summaries"
)

// SummaryCache is a redis-backed listing index: a sorted set of
// conversation ids scored by last-save time plus a hash of rendered
// summaries. The store remains authoritative; the cache only speeds up
// listings.
type SummaryCache struct {
	client *redis.Client
}

// New creates the cache client from app config. A disabled redis section
// yields a nil cache, which callers treat as "no index".
func New(cfg *config.Config) (*SummaryCache, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host := cfg.Redis.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Redis.Port
	if port == 0 {
		port = 6379
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &SummaryCache{client: client}, nil
}

// Put records one conversation summary in the index.
func (c *SummaryCache) Put(ctx context.Context, summary storage.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", summary.ID, err)
	}
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(summary.Timestamp.Unix()),
		Member: summary.ID,
	})
	pipe.HSet(ctx, summariesKey, summary.ID, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index summary %s: %w", summary.ID, err)
	}
	return nil
}

// List returns the indexed summaries, newest first.
func (c *SummaryCache) List(ctx context.Context) ([]storage.Summary, error) {
	ids, err := c.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read summary index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := c.client.HMGet(ctx, summariesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read summaries: %w", err)
	}
	summaries := make([]storage.Summary, 0, len(rows))
	for i, row := range rows {
		raw, ok := row.(string)
		if !ok {
			log.Printf("summary index missing entry for %s", ids[i])
			continue
		}
		var s storage.Summary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			log.Printf("decode cached summary %s: %v", ids[i], err)
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *SummaryCache) Close() error {
	return c.client.Close()
}
