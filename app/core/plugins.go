package core

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/quka-ai/quka-iot/pkg/types"
)

type Plugins interface {
	Name() string
	Install(*Core) error
	TryLock(ctx context.Context, key string) (bool, error)
	UseLimiter(c *gin.Context, key string, method string, opts ...LimitOption) Limiter
	FileStorage() FileStorage
	Cache() types.Cache
}

type LimitConfig struct {
	Limit int
	Every time.Duration
}

type LimitOption func(l *LimitConfig)

func WithLimit(limit int) LimitOption {
	return func(l *LimitConfig) {
		l.Limit = limit
	}
}

func WithRange(r time.Duration) LimitOption {
	return func(l *LimitConfig) {
		l.Every = r
	}
}

// FileStorage interface defines methods for file operations.
type FileStorage interface {
	GetStaticDomain() string
	SaveFile(ctx context.Context, fullPath, contentType string, content []byte) error
	DeleteFile(ctx context.Context, fullFilePath string) error
	GenGetObjectPreSignURL(fullPath string) (string, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

type Limiter interface {
	Allow() bool
}

type SetupFunc func() Plugins

func (c *Core) InstallPlugins(p Plugins) {
	if err := p.Install(c); err != nil {
		panic(err)
	}
	c.Plugins = p
}

// NewCache redis 未启用时返回空实现
func (c *Core) NewCache() types.Cache {
	if c.redis == nil {
		return EmptyCache{}
	}
	return &Cache{redis: c.redis, prefix: c.cfg.Redis.KeyPrefix}
}

type Cache struct {
	redis  redis.UniversalClient
	prefix string
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.redis.Expire(ctx, c.prefix+key, expiration).Err()
}

func (c *Cache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.redis.SetEx(ctx, c.prefix+key, value, expiresAt).Err()
}

// Get 未命中时返回空字符串
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	res, err := c.redis.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return res, err
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.prefix+k)
	}
	return c.redis.Del(ctx, full...).Err()
}

// EmptyCache 空的 cache 实现，用作 fallback
type EmptyCache struct{}

func (EmptyCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (EmptyCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return nil
}

func (EmptyCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (EmptyCache) Del(ctx context.Context, keys ...string) error {
	return nil
}
