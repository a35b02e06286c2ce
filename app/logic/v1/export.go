package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/app/core/srv"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/plugins"
	"github.com/quka-ai/quka-iot/pkg/projection"
	"github.com/quka-ai/quka-iot/pkg/types"
)

const CSVContentType = "text/csv"

type ExportLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewExportLogic(ctx context.Context, core *core.Core) *ExportLogic {
	return &ExportLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func CSVFilename(channelID string) string {
	return fmt.Sprintf("channel_%s_fields.csv", channelID)
}

// ChannelCSV 渲染频道的 csv，频道没有任何数据时返回 404
func ChannelCSV(ctx context.Context, core *core.Core, channel *types.Channel) ([]byte, error) {
	entries, err := listChannelEntries(ctx, core, channel.ID)
	if err != nil {
		return nil, errors.Trace("ChannelCSV", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("ChannelCSV.empty", i18n.ERROR_CHANNEL_NO_ENTRIES, nil).Code(http.StatusNotFound)
	}

	raw, err := projection.ToCSV(entries, channel.Fields)
	if err != nil {
		return nil, errors.New("ChannelCSV.ToCSV", i18n.ERROR_INTERNAL, err)
	}
	return raw, nil
}

func (l *ExportLogic) ownedChannel(id string) (*types.Channel, error) {
	channel, err := l.core.Store().ChannelStore().GetChannel(l.ctx, id)
	if err != nil {
		return nil, channelStoreError("ExportLogic.ownedChannel.ChannelStore.GetChannel", err)
	}
	if err = l.Identification(channel, srv.PermissionChannelView); err != nil {
		return nil, errors.Trace("ExportLogic.ownedChannel.Identification", err)
	}
	return channel, nil
}

func (l *ExportLogic) ExportCSV(channelID string) (string, []byte, error) {
	channel, err := l.ownedChannel(channelID)
	if err != nil {
		return "", nil, err
	}

	raw, err := ChannelCSV(l.ctx, l.core, channel)
	if err != nil {
		return "", nil, errors.Trace("ExportLogic.ExportCSV", err)
	}

	l.core.Metrics().CSVExportInc("download")
	return CSVFilename(channel.ID), raw, nil
}

type ArchiveResult struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ArchiveCSV 将 csv 写入对象存储并返回预签名的下载地址
func (l *ExportLogic) ArchiveCSV(channelID string) (*ArchiveResult, error) {
	channel, err := l.ownedChannel(channelID)
	if err != nil {
		return nil, err
	}

	raw, err := ChannelCSV(l.ctx, l.core, channel)
	if err != nil {
		return nil, errors.Trace("ExportLogic.ArchiveCSV", err)
	}

	storage := l.core.Plugins.FileStorage()
	path := fmt.Sprintf("%s%s/%d.csv", types.FIXED_EXPORT_PATH_PREFIX, channel.ID, time.Now().Unix())
	if err = storage.SaveFile(l.ctx, path, CSVContentType, raw); err != nil {
		if errors.Is(err, plugins.ErrUnsupported) {
			return nil, errors.New("ExportLogic.ArchiveCSV.FileStorage.SaveFile", i18n.ERROR_UNSUPPORTED, err).Code(http.StatusNotImplemented)
		}
		return nil, errors.New("ExportLogic.ArchiveCSV.FileStorage.SaveFile", i18n.ERROR_INTERNAL, err)
	}

	url, err := storage.GenGetObjectPreSignURL(path)
	if err != nil {
		return nil, errors.New("ExportLogic.ArchiveCSV.FileStorage.GenGetObjectPreSignURL", i18n.ERROR_INTERNAL, err)
	}

	l.core.Metrics().CSVExportInc("archive")
	return &ArchiveResult{Path: path, URL: url}, nil
}
