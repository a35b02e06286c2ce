package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/app/core/srv"
	"github.com/quka-ai/quka-iot/pkg/auth"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/fields"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

const apiKeyGenAttempts = 3

type ChannelLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewChannelLogic(ctx context.Context, core *core.Core) *ChannelLogic {
	return &ChannelLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// loadChannel 获取频道并校验当前用户是否有权限
func (l *ChannelLogic) loadChannel(id, permission string) (*types.Channel, error) {
	channel, err := l.core.Store().ChannelStore().GetChannel(l.ctx, id)
	if err != nil {
		return nil, channelStoreError("ChannelLogic.loadChannel.ChannelStore.GetChannel", err)
	}
	if err = l.Identification(channel, permission); err != nil {
		return nil, errors.Trace("ChannelLogic.loadChannel.Identification", err)
	}
	return channel, nil
}

func (l *ChannelLogic) genAPIKey() (string, error) {
	for i := 0; i < apiKeyGenAttempts; i++ {
		key := utils.GenAPIKey()
		exist, err := l.core.Store().ChannelStore().ExistAPIKey(l.ctx, key)
		if err != nil {
			return "", errors.New("ChannelLogic.genAPIKey.ChannelStore.ExistAPIKey", i18n.ERROR_INTERNAL, err)
		}
		if !exist {
			return key, nil
		}
	}
	return "", errors.New("ChannelLogic.genAPIKey", i18n.ERROR_INTERNAL, nil)
}

func (l *ChannelLogic) CreateChannel(name, description string, fieldNames []string) (*types.Channel, error) {
	if l.GetUserInfo().User == "" {
		return nil, errors.New("ChannelLogic.CreateChannel.check", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("ChannelLogic.CreateChannel.name", i18n.ERROR_CHANNEL_NAME_REQUIRED, nil).Code(http.StatusBadRequest)
	}
	declared, err := fields.Normalize(fieldNames)
	if err != nil {
		return nil, fieldsError("ChannelLogic.CreateChannel.fields", err)
	}

	apiKey, err := l.genAPIKey()
	if err != nil {
		return nil, errors.Trace("ChannelLogic.CreateChannel", err)
	}

	now := time.Now().Unix()
	channel := types.Channel{
		ID:          utils.GenUniqIDStr(),
		UserID:      l.GetUserInfo().User,
		Name:        name,
		Description: description,
		Fields:      declared,
		APIKey:      apiKey,
		UpdatedAt:   now,
		CreatedAt:   now,
	}
	if err = l.core.Store().ChannelStore().Create(l.ctx, channel); err != nil {
		return nil, errors.New("ChannelLogic.CreateChannel.ChannelStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &channel, nil
}

// ListChannels 管理员可以查看全部频道
func (l *ChannelLogic) ListChannels(page, pageSize uint64) ([]*types.Channel, int64, error) {
	opts := types.ListChannelOptions{}
	if !l.core.Srv().RBAC().CheckPermission(l.GetUserInfo().GetRole(), srv.PermissionChannelView) {
		opts.UserID = l.GetUserInfo().User
	}

	list, err := l.core.Store().ChannelStore().ListChannels(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("ChannelLogic.ListChannels.ChannelStore.ListChannels", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().ChannelStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("ChannelLogic.ListChannels.ChannelStore.Total", i18n.ERROR_INTERNAL, err)
	}
	if list == nil {
		list = []*types.Channel{}
	}
	return list, total, nil
}

func (l *ChannelLogic) GetChannel(id string) (*types.Channel, error) {
	return l.loadChannel(id, srv.PermissionChannelView)
}

func (l *ChannelLogic) UpdateChannel(id, name, description string) (*types.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("ChannelLogic.UpdateChannel.name", i18n.ERROR_CHANNEL_NAME_REQUIRED, nil).Code(http.StatusBadRequest)
	}
	channel, err := l.loadChannel(id, srv.PermissionChannelManage)
	if err != nil {
		return nil, err
	}
	if err = l.core.Store().ChannelStore().Update(l.ctx, id, name, description); err != nil {
		return nil, errors.New("ChannelLogic.UpdateChannel.ChannelStore.Update", i18n.ERROR_INTERNAL, err)
	}
	channel.Name, channel.Description = name, description
	return channel, nil
}

// DeleteChannel 同一事务内删除频道及其全部数据点
func (l *ChannelLogic) DeleteChannel(id string) error {
	if err := l.Identification(l.lazyRolerFromChannelID(id), srv.PermissionChannelManage); err != nil {
		return errors.Trace("ChannelLogic.DeleteChannel.Identification", err)
	}

	channel, err := l.core.Store().ChannelStore().GetChannel(l.ctx, id)
	if err != nil {
		return channelStoreError("ChannelLogic.DeleteChannel.ChannelStore.GetChannel", err)
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().ChannelEntryStore().DeleteAll(ctx, id); err != nil {
			return errors.New("ChannelLogic.DeleteChannel.ChannelEntryStore.DeleteAll", i18n.ERROR_INTERNAL, err)
		}
		if err := l.core.Store().ChannelStore().Delete(ctx, id); err != nil {
			return errors.New("ChannelLogic.DeleteChannel.ChannelStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err = auth.ForgetAPIKey(l.ctx, l.core.Plugins.Cache(), channel.APIKey); err != nil {
		slog.Warn("failed to forget api key", slog.String("channel_id", id), slog.String("error", err.Error()))
	}
	return nil
}

func (l *ChannelLogic) RegenerateAPIKey(id string) (*types.Channel, error) {
	channel, err := l.loadChannel(id, srv.PermissionChannelManage)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(l.ctx, time.Second*10)
	defer cancel()
	locked, err := l.core.Plugins.TryLock(ctx, "channel:apikey:"+id)
	if err != nil {
		return nil, errors.New("ChannelLogic.RegenerateAPIKey.TryLock", i18n.ERROR_INTERNAL, err)
	}
	if !locked {
		return nil, errors.New("ChannelLogic.RegenerateAPIKey.TryLock", i18n.ERROR_LOCKED, nil).Code(http.StatusLocked)
	}

	apiKey, err := l.genAPIKey()
	if err != nil {
		return nil, errors.Trace("ChannelLogic.RegenerateAPIKey", err)
	}
	if err = l.core.Store().ChannelStore().UpdateAPIKey(l.ctx, id, apiKey); err != nil {
		return nil, errors.New("ChannelLogic.RegenerateAPIKey.ChannelStore.UpdateAPIKey", i18n.ERROR_INTERNAL, err)
	}
	if err = auth.ForgetAPIKey(l.ctx, l.core.Plugins.Cache(), channel.APIKey); err != nil {
		slog.Warn("failed to forget api key", slog.String("channel_id", id), slog.String("error", err.Error()))
	}

	channel.APIKey = apiKey
	return channel, nil
}

type RenamePair struct {
	OldName string `json:"old_name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

func (l *ChannelLogic) RenameField(id, oldName, newName string) (*types.Channel, error) {
	return l.RenameFields(id, []RenamePair{{OldName: oldName, NewName: newName}})
}

// RenameFields 按顺序应用重命名，并在同一事务内同步到历史数据点
func (l *ChannelLogic) RenameFields(id string, pairs []RenamePair) (*types.Channel, error) {
	if len(pairs) == 0 {
		return nil, errors.New("ChannelLogic.RenameFields.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	channel, err := l.loadChannel(id, srv.PermissionChannelManage)
	if err != nil {
		return nil, err
	}

	declared := []string(channel.Fields)
	for _, p := range pairs {
		if declared, err = fields.Rename(declared, p.OldName, p.NewName); err != nil {
			return nil, fieldsError("ChannelLogic.RenameFields.Rename", err)
		}
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		for _, p := range pairs {
			if p.OldName == p.NewName {
				continue
			}
			if err := l.checkRetainedHistory(ctx, id, p.NewName); err != nil {
				return err
			}
			if err := l.renameInEntries(ctx, id, p.OldName, p.NewName); err != nil {
				return err
			}
		}
		if err := l.core.Store().ChannelStore().UpdateFields(ctx, id, declared); err != nil {
			return errors.New("ChannelLogic.RenameFields.ChannelStore.UpdateFields", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.core.Metrics().FieldMutationInc("rename")
	channel.Fields = declared
	return channel, nil
}

// checkRetainedHistory 已移除但保留了历史的字段名不能作为重命名目标
func (l *ChannelLogic) checkRetainedHistory(ctx context.Context, channelID, name string) error {
	total, err := l.core.Store().ChannelEntryStore().Total(ctx, types.ListChannelEntryOptions{
		ChannelID: channelID,
		HasField:  name,
	})
	if err != nil {
		return errors.New("ChannelLogic.checkRetainedHistory.ChannelEntryStore.Total", i18n.ERROR_INTERNAL, err)
	}
	if total > 0 {
		return errors.New("ChannelLogic.checkRetainedHistory", i18n.ERROR_FIELD_EXIST, fmt.Errorf("%d entries still carry field %q", total, name)).Code(http.StatusBadRequest)
	}
	return nil
}

func (l *ChannelLogic) renameInEntries(ctx context.Context, channelID, oldName, newName string) error {
	entries, err := l.core.Store().ChannelEntryStore().ListEntries(ctx, types.ListChannelEntryOptions{
		ChannelID: channelID,
		HasField:  oldName,
	}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return errors.New("ChannelLogic.renameInEntries.ChannelEntryStore.ListEntries", i18n.ERROR_INTERNAL, err)
	}

	for _, e := range entries {
		if !e.FieldData.Rename(oldName, newName) {
			continue
		}
		if err = l.core.Store().ChannelEntryStore().UpdateFieldData(ctx, e.ID, e.FieldData); err != nil {
			return errors.New("ChannelLogic.renameInEntries.ChannelEntryStore.UpdateFieldData", i18n.ERROR_INTERNAL, err)
		}
	}
	return nil
}

func (l *ChannelLogic) AddField(id, name string) (*types.Channel, error) {
	return l.AddFields(id, []string{name})
}

// AddFields 已声明的字段直接忽略
func (l *ChannelLogic) AddFields(id string, names []string) (*types.Channel, error) {
	channel, err := l.loadChannel(id, srv.PermissionChannelManage)
	if err != nil {
		return nil, err
	}

	declared, changed, err := fields.Add(channel.Fields, names...)
	if err != nil {
		return nil, fieldsError("ChannelLogic.AddFields.Add", err)
	}
	if !changed {
		return channel, nil
	}

	if err = l.core.Store().ChannelStore().UpdateFields(l.ctx, id, declared); err != nil {
		return nil, errors.New("ChannelLogic.AddFields.ChannelStore.UpdateFields", i18n.ERROR_INTERNAL, err)
	}

	l.core.Metrics().FieldMutationInc("add")
	channel.Fields = declared
	return channel, nil
}

// RemoveField 字段未声明时返回 NotFound
func (l *ChannelLogic) RemoveField(id, name string) (*types.Channel, error) {
	channel, err := l.loadChannel(id, srv.PermissionChannelManage)
	if err != nil {
		return nil, err
	}
	if !fields.Declared(channel.Fields, name) {
		return nil, errors.New("ChannelLogic.RemoveField.check", i18n.ERROR_FIELD_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return l.removeFields(channel, []string{name})
}

// RemoveFields 忽略未声明的字段
func (l *ChannelLogic) RemoveFields(id string, names []string) (*types.Channel, error) {
	if len(names) == 0 {
		return nil, errors.New("ChannelLogic.RemoveFields.check", i18n.ERROR_CHANNEL_FIELDS_REQUIRED, nil).Code(http.StatusBadRequest)
	}
	channel, err := l.loadChannel(id, srv.PermissionChannelManage)
	if err != nil {
		return nil, err
	}
	return l.removeFields(channel, names)
}

func (l *ChannelLogic) removeFields(channel *types.Channel, names []string) (*types.Channel, error) {
	declared, removed := fields.Remove(channel.Fields, names...)
	if len(removed) == 0 {
		return channel, nil
	}

	purge := l.core.Cfg().Channel.PurgeHistoryOnFieldRemoval
	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().ChannelStore().UpdateFields(ctx, channel.ID, declared); err != nil {
			return errors.New("ChannelLogic.removeFields.ChannelStore.UpdateFields", i18n.ERROR_INTERNAL, err)
		}
		if !purge {
			return nil
		}
		return l.purgeEntries(ctx, channel.ID, removed)
	})
	if err != nil {
		return nil, err
	}

	l.core.Metrics().FieldMutationInc("remove")
	channel.Fields = declared
	return channel, nil
}

// purgeEntries 删除历史数据中的字段，数据点变空时整条删除
func (l *ChannelLogic) purgeEntries(ctx context.Context, channelID string, names []string) error {
	var emptied []string
	touched := make(map[string]bool)
	for _, name := range names {
		entries, err := l.core.Store().ChannelEntryStore().ListEntries(ctx, types.ListChannelEntryOptions{
			ChannelID: channelID,
			HasField:  name,
		}, types.NO_PAGINATION, types.NO_PAGINATION)
		if err != nil {
			return errors.New("ChannelLogic.purgeEntries.ChannelEntryStore.ListEntries", i18n.ERROR_INTERNAL, err)
		}

		for _, e := range entries {
			if touched[e.ID] {
				continue
			}
			touched[e.ID] = true

			data, changed := e.FieldData.Without(names...)
			if !changed {
				continue
			}
			if len(data) == 0 {
				emptied = append(emptied, e.ID)
				continue
			}
			if err = l.core.Store().ChannelEntryStore().UpdateFieldData(ctx, e.ID, data); err != nil {
				return errors.New("ChannelLogic.purgeEntries.ChannelEntryStore.UpdateFieldData", i18n.ERROR_INTERNAL, err)
			}
		}
	}

	if err := l.core.Store().ChannelEntryStore().BatchDelete(ctx, emptied); err != nil {
		return errors.New("ChannelLogic.purgeEntries.ChannelEntryStore.BatchDelete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
