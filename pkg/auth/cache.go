package auth

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/types"
)

// APIKeyLoader returns the id of the channel owning apiKey, sql.ErrNoRows when none does.
type APIKeyLoader func(ctx context.Context, apiKey string) (string, error)

// ResolveChannelID maps an api key to its channel id, consulting cache before load.
// Cache failures degrade to the loader.
func ResolveChannelID(ctx context.Context, apiKey string, cache types.Cache, ttl time.Duration, load APIKeyLoader) (string, error) {
	if apiKey == "" {
		return "", errors.New("auth.ResolveChannelID.empty_key", i18n.ERROR_INVALID_API_KEY, nil).Code(http.StatusUnauthorized)
	}

	cacheKey := types.ChannelAPIKeyCacheKey(apiKey)
	channelID, err := cache.Get(ctx, cacheKey)
	if err != nil {
		slog.Warn("failed to read api key cache", slog.String("error", err.Error()))
	}
	if channelID != "" {
		return channelID, nil
	}

	if channelID, err = load(ctx, apiKey); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", errors.New("auth.ResolveChannelID.load", i18n.ERROR_INVALID_API_KEY, nil).Code(http.StatusUnauthorized)
		}
		return "", errors.New("auth.ResolveChannelID.load", i18n.ERROR_INTERNAL, err)
	}

	if err = cache.SetEx(ctx, cacheKey, channelID, ttl); err != nil {
		slog.Warn("failed to write api key cache", slog.String("error", err.Error()))
	}
	return channelID, nil
}

// ForgetAPIKey drops a revoked key from the cache.
func ForgetAPIKey(ctx context.Context, cache types.Cache, apiKey string) error {
	if apiKey == "" {
		return nil
	}
	return cache.Del(ctx, types.ChannelAPIKeyCacheKey(apiKey))
}
