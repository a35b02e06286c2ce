package store

import (
	"context"

	"github.com/quka-ai/quka-iot/pkg/types"
)

type UserStore interface {
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	UpdateUserProfile(ctx context.Context, id, firstName, lastName string) error
	UpdateUserPassword(ctx context.Context, id, password string) error
	Delete(ctx context.Context, id string) error
	ListUsers(ctx context.Context, opts types.ListUserOptions, page, pageSize uint64) ([]types.User, error)
	Total(ctx context.Context, opts types.ListUserOptions) (int64, error)
}

// ChannelStore 频道定义
type ChannelStore interface {
	Create(ctx context.Context, data types.Channel) error
	GetChannel(ctx context.Context, id string) (*types.Channel, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*types.Channel, error)
	ExistAPIKey(ctx context.Context, apiKey string) (bool, error)
	Update(ctx context.Context, id, name, description string) error
	UpdateFields(ctx context.Context, id string, fields types.ChannelFields) error
	UpdateAPIKey(ctx context.Context, id, apiKey string) error
	Delete(ctx context.Context, id string) error
	ListChannels(ctx context.Context, opts types.ListChannelOptions, page, pageSize uint64) ([]*types.Channel, error)
	Total(ctx context.Context, opts types.ListChannelOptions) (int64, error)
}

// ChannelEntryStore 频道数据点，按 (timestamp, id) 排序
type ChannelEntryStore interface {
	Create(ctx context.Context, data types.ChannelEntry) error
	ListEntries(ctx context.Context, opts types.ListChannelEntryOptions, page, pageSize uint64) ([]*types.ChannelEntry, error)
	Total(ctx context.Context, opts types.ListChannelEntryOptions) (int64, error)
	UpdateFieldData(ctx context.Context, id string, data types.FieldData) error
	BatchDelete(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context, channelID string) error
}
