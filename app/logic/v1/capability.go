package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/pkg/auth"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/types"
)

// ChannelCapability decides whether an api key grants access to a channel.
type ChannelCapability interface {
	Authorize(ctx context.Context, channelID, apiKey string) (*types.Channel, error)
}

type channelRegistry struct {
	core *core.Core
}

func NewChannelCapability(core *core.Core) ChannelCapability {
	return &channelRegistry{core: core}
}

func (r *channelRegistry) cache() types.Cache {
	if r.core.Plugins == nil {
		return core.EmptyCache{}
	}
	return r.core.Plugins.Cache()
}

func (r *channelRegistry) Authorize(ctx context.Context, channelID, apiKey string) (*types.Channel, error) {
	resolved, err := auth.ResolveChannelID(ctx, apiKey, r.cache(), r.core.Cfg().Channel.APIKeyCacheExpire(), func(ctx context.Context, apiKey string) (string, error) {
		channel, err := r.core.Store().ChannelStore().GetByAPIKey(ctx, apiKey)
		if err != nil {
			return "", err
		}
		return channel.ID, nil
	})
	if err != nil {
		return nil, errors.Trace("channelRegistry.Authorize", err)
	}
	if resolved != channelID {
		return nil, errors.New("channelRegistry.Authorize.mismatch", i18n.ERROR_INVALID_API_KEY, nil).Code(http.StatusUnauthorized)
	}

	channel, err := r.core.Store().ChannelStore().GetChannel(ctx, channelID)
	if err != nil {
		return nil, channelStoreError("channelRegistry.Authorize.ChannelStore.GetChannel", err)
	}

	// stale cache entry left by a key rotation on another node
	if channel.APIKey != apiKey {
		if err = auth.ForgetAPIKey(ctx, r.cache(), apiKey); err != nil {
			slog.Warn("failed to forget api key", slog.String("channel_id", channelID), slog.String("error", err.Error()))
		}
		return nil, errors.New("channelRegistry.Authorize.rotated", i18n.ERROR_INVALID_API_KEY, nil).Code(http.StatusUnauthorized)
	}
	return channel, nil
}
