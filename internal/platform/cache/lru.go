package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU is the single-process fallback. Values are stored JSON-encoded so
// callers observe the same copy semantics as with Redis. Every entry lives
// for the TTL given to NewLRU; the per-call ttl of Set is ignored.
type LRU struct {
	entries *expirable.LRU[string, []byte]
}

func NewLRU(size int, ttl time.Duration) (*LRU, error) {
	if size <= 0 {
		return nil, errors.New("cache: lru size must be positive")
	}
	return &LRU{entries: expirable.NewLRU[string, []byte](size, nil, ttl)}, nil
}

func (c *LRU) Get(_ context.Context, key string, dest any) error {
	payload, ok := c.entries.Get(key)
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *LRU) Set(_ context.Context, key string, value any, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries.Add(key, payload)
	return nil
}

func (c *LRU) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.entries.Remove(k)
	}
	return nil
}

func (c *LRU) Close() error {
	c.entries.Purge()
	return nil
}
