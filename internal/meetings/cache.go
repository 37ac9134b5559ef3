package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tutorsync/backend/pkg/redis"
)

// Token is a cached access token with its absolute expiry.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenCache stores the meeting provider access token. Implementations are
// last-writer-wins; concurrent refreshes may waste an exchange but never
// corrupt state.
type TokenCache interface {
	Get(ctx context.Context) (*Token, error)
	Put(ctx context.Context, tok Token) error
	Clear(ctx context.Context) error
}

// MemoryCache is the default in-process token cache.
type MemoryCache struct {
	mu  sync.Mutex
	tok *Token
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Get(ctx context.Context) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tok == nil {
		return nil, nil
	}
	tok := *c.tok
	return &tok, nil
}

func (c *MemoryCache) Put(ctx context.Context, tok Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tok = &tok
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tok = nil
	return nil
}

const redisTokenKey = "meetings:access_token"

// RedisCache shares the token across replicas so each instance does not burn
// a separate exchange against the provider's rate limit.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed token cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) (*Token, error) {
	b, err := c.client.Get(ctx, redisTokenKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *RedisCache) Put(ctx context.Context, tok Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	ttl := time.Until(tok.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, redisTokenKey, b, ttl).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, redisTokenKey).Err()
}
