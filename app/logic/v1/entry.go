package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/app/core/srv"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/fields"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/projection"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

type EntryLogic struct {
	UserInfo
	ctx        context.Context
	core       *core.Core
	capability ChannelCapability
}

func NewEntryLogic(ctx context.Context, core *core.Core) *EntryLogic {
	return &EntryLogic{
		ctx:        ctx,
		core:       core,
		UserInfo:   SetupUserInfo(ctx, core),
		capability: NewChannelCapability(core),
	}
}

// WithCapability replaces the api key authorizer
func (l *EntryLogic) WithCapability(c ChannelCapability) *EntryLogic {
	l.capability = c
	return l
}

// Ingest 只保留已声明的字段，全部不合法时拒绝写入
func (l *EntryLogic) Ingest(channelID, apiKey string, submitted map[string]any) (*types.ChannelEntry, error) {
	channel, err := l.capability.Authorize(l.ctx, channelID, apiKey)
	if err != nil {
		l.core.Metrics().EntryIngestedInc("rejected")
		return nil, errors.Trace("EntryLogic.Ingest.Authorize", err)
	}

	data, dropped, err := fields.Filter(channel.Fields, submitted)
	if len(dropped) > 0 {
		slog.Debug("drop undeclared fields", slog.String("channel_id", channelID), slog.Any("fields", dropped))
	}
	if err != nil {
		l.core.Metrics().EntryIngestedInc("rejected")
		return nil, fieldsError("EntryLogic.Ingest.Filter", err)
	}

	// timestamptz 只保存到微秒
	now := time.Now()
	entry := types.ChannelEntry{
		ID:        utils.GenUniqIDStr(),
		ChannelID: channelID,
		FieldData: data,
		Timestamp: now.UTC().Truncate(time.Microsecond),
		CreatedAt: now.UnixNano(),
	}
	if err = l.core.Store().ChannelEntryStore().Create(l.ctx, entry); err != nil {
		l.core.Metrics().EntryIngestedInc("rejected")
		return nil, errors.New("EntryLogic.Ingest.ChannelEntryStore.Create", i18n.ERROR_INTERNAL, err)
	}

	l.core.Metrics().EntryIngestedInc("accepted")
	return &entry, nil
}

// readableChannel api key 优先，否则要求登录用户拥有该频道
func (l *EntryLogic) readableChannel(channelID, apiKey string) (*types.Channel, error) {
	if apiKey != "" {
		channel, err := l.capability.Authorize(l.ctx, channelID, apiKey)
		if err != nil {
			return nil, errors.Trace("EntryLogic.readableChannel.Authorize", err)
		}
		return channel, nil
	}

	if l.GetUserInfo().User == "" {
		return nil, errors.New("EntryLogic.readableChannel.check", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	channel, err := l.core.Store().ChannelStore().GetChannel(l.ctx, channelID)
	if err != nil {
		return nil, channelStoreError("EntryLogic.readableChannel.ChannelStore.GetChannel", err)
	}
	if err = l.Identification(channel, srv.PermissionChannelView); err != nil {
		return nil, errors.Trace("EntryLogic.readableChannel.Identification", err)
	}
	return channel, nil
}

func listChannelEntries(ctx context.Context, core *core.Core, channelID string) ([]*types.ChannelEntry, error) {
	entries, err := core.Store().ChannelEntryStore().ListEntries(ctx, types.ListChannelEntryOptions{
		ChannelID: channelID,
	}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return nil, errors.New("listChannelEntries.ChannelEntryStore.ListEntries", i18n.ERROR_INTERNAL, err)
	}
	return projection.Chronological(entries), nil
}

// ReadEntries names 为空时返回全部字段
func (l *EntryLogic) ReadEntries(channelID, apiKey string, names []string) (*types.EntriesResponse, error) {
	channel, err := l.readableChannel(channelID, apiKey)
	if err != nil {
		return nil, err
	}

	entries, err := listChannelEntries(l.ctx, l.core, channel.ID)
	if err != nil {
		return nil, errors.Trace("EntryLogic.ReadEntries", err)
	}
	if len(names) > 0 {
		entries = projection.Select(entries, names)
	}
	if entries == nil {
		entries = []*types.ChannelEntry{}
	}

	return &types.EntriesResponse{
		ChannelName:        channel.Name,
		ChannelDescription: channel.Description,
		Entries:            entries,
	}, nil
}

func (l *EntryLogic) Feed(channelID, apiKey string, names []string) (*projection.Feed, error) {
	channel, err := l.readableChannel(channelID, apiKey)
	if err != nil {
		return nil, err
	}

	entries, err := listChannelEntries(l.ctx, l.core, channel.ID)
	if err != nil {
		return nil, errors.Trace("EntryLogic.Feed", err)
	}
	if len(names) > 0 {
		entries = projection.Select(entries, names)
	}

	feed := projection.NewFeed(channel, entries, names...)
	return &feed, nil
}
