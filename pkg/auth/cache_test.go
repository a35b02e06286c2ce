package auth

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (m *memCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memCache) SetEx(ctx context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Expire(ctx context.Context, key string, _ time.Duration) error {
	return nil
}

func (m *memCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestResolveChannelIDCaches(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	loads := 0
	loader := func(ctx context.Context, apiKey string) (string, error) {
		loads++
		if apiKey == "k1" {
			return "c1", nil
		}
		return "", sql.ErrNoRows
	}

	for i := 0; i < 3; i++ {
		id, err := ResolveChannelID(ctx, "k1", cache, time.Minute, loader)
		require.NoError(t, err)
		assert.Equal(t, "c1", id)
	}
	assert.Equal(t, 1, loads)

	require.NoError(t, ForgetAPIKey(ctx, cache, "k1"))
	_, err := ResolveChannelID(ctx, "k1", cache, time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestResolveChannelIDUnknownKey(t *testing.T) {
	_, err := ResolveChannelID(context.Background(), "nope", newMemCache(), time.Minute, func(ctx context.Context, apiKey string) (string, error) {
		return "", sql.ErrNoRows
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, i18n.ERROR_INVALID_API_KEY))
	assert.Equal(t, http.StatusUnauthorized, err.(*errors.CustomizedError).GetCode())

	_, err = ResolveChannelID(context.Background(), "", newMemCache(), time.Minute, nil)
	require.Error(t, err)
}
