package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"lsasearch/internal/constants"
)

const searchKeyPattern = "search:%s:%d:%s"

// Cache - Search responses in redis, keyed by model fingerprint, top k and query text.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr string, password string, ttl time.Duration) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}), ttl)
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func Key(fingerprint string, topK int, query string) string {
	return fmt.Sprintf(searchKeyPattern, fingerprint, topK, query)
}

// Get - A miss is (nil, nil).
func (c *Cache) Get(ctx context.Context, key string) (*constants.SearchResponse, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var resp constants.SearchResponse
	if err := json.Unmarshal([]byte(value), &resp); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return &resp, nil
}

func (c *Cache) Set(ctx context.Context, key string, resp *constants.SearchResponse) error {
	value, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, string(value), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
