package v1_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/projection"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func errCode(t *testing.T, err error) int {
	t.Helper()
	var ce *errors.CustomizedError
	require.True(t, errors.As(err, &ce), "unexpected error type %v", err)
	return ce.GetCode()
}

func Test_CreateChannel(t *testing.T) {
	core := NewCore(t)
	ctx, user := signupCtx(t, core)
	logic := v1.NewChannelLogic(ctx, core)

	_, err := logic.CreateChannel(" ", "", []string{"temp"})
	assert.True(t, errors.Is(err, i18n.ERROR_CHANNEL_NAME_REQUIRED))

	_, err = logic.CreateChannel("sensor", "", nil)
	assert.True(t, errors.Is(err, i18n.ERROR_CHANNEL_FIELDS_REQUIRED))

	_, err = logic.CreateChannel("sensor", "", []string{"Temp"})
	assert.True(t, errors.Is(err, i18n.ERROR_FIELD_INVALID_NAME))

	channel := createChannel(t, ctx, core, "temp", "hum")
	assert.Equal(t, user.ID, channel.UserID)
	assert.Equal(t, types.ChannelFields{"temp", "hum"}, channel.Fields)
	assert.NotEmpty(t, channel.APIKey)

	list, total, err := logic.ListChannels(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func Test_ChannelOwnership(t *testing.T) {
	core := NewCore(t)
	ownerCtx, _ := signupCtx(t, core)
	otherCtx, _ := signupCtx(t, core)

	channel := createChannel(t, ownerCtx, core, "temp")

	_, err := v1.NewChannelLogic(otherCtx, core).GetChannel(channel.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	_, err = v1.NewChannelLogic(otherCtx, core).AddField(channel.ID, "hum")
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	list, total, err := v1.NewChannelLogic(otherCtx, core).ListChannels(1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = v1.NewChannelLogic(ownerCtx, core).GetChannel("not-exist")
	assert.True(t, errors.Is(err, i18n.ERROR_CHANNEL_NOT_FOUND))
}

func Test_FieldMutations(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)
	channel := createChannel(t, ctx, core, "temp", "hum")
	logic := v1.NewChannelLogic(ctx, core)

	c, err := logic.AddFields(channel.ID, []string{"hum", "pressure"})
	require.NoError(t, err)
	assert.Equal(t, types.ChannelFields{"temp", "hum", "pressure"}, c.Fields)

	_, err = logic.RenameField(channel.ID, "missing", "x")
	assert.True(t, errors.Is(err, i18n.ERROR_FIELD_NOT_FOUND))

	_, err = logic.RenameField(channel.ID, "temp", "hum")
	assert.True(t, errors.Is(err, i18n.ERROR_FIELD_EXIST))

	_, err = logic.RemoveField(channel.ID, "missing")
	assert.True(t, errors.Is(err, i18n.ERROR_FIELD_NOT_FOUND))

	c, err = logic.RemoveFields(channel.ID, []string{"pressure", "missing"})
	require.NoError(t, err)
	assert.Equal(t, types.ChannelFields{"temp", "hum"}, c.Fields)

	stored, err := logic.GetChannel(channel.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Fields, stored.Fields)
}

func Test_RenamePropagatesToEntries(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)
	channel := createChannel(t, ctx, core, "temp", "hum")

	entry := v1.NewEntryLogic(ctx, core)
	_, err := entry.Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 20})
	require.NoError(t, err)
	_, err = entry.Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 22, "hum": 55})
	require.NoError(t, err)

	c, err := v1.NewChannelLogic(ctx, core).RenameFields(channel.ID, []v1.RenamePair{
		{OldName: "temp", NewName: "temperature"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.ChannelFields{"temperature", "hum"}, c.Fields)

	feed, err := entry.Feed(channel.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, json.Number("22"), feed.Latest["temperature"])
	assert.NotContains(t, feed.Latest, "temp")
	assert.Equal(t, 2, feed.Counts["temperature"])

	if core.Cfg().Channel.PurgeHistoryOnFieldRemoval {
		return
	}

	// hum 已移除但历史仍在，不能被其他字段占用
	logic := v1.NewChannelLogic(ctx, core)
	_, err = logic.RemoveField(channel.ID, "hum")
	require.NoError(t, err)

	_, err = logic.RenameField(channel.ID, "temperature", "hum")
	assert.True(t, errors.Is(err, i18n.ERROR_FIELD_EXIST))
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	resp, err := entry.ReadEntries(channel.ID, channel.APIKey, nil)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	latest := resp.Entries[len(resp.Entries)-1].FieldData
	v, ok := latest.Get("hum")
	assert.True(t, ok)
	assert.Equal(t, json.Number("55"), v)
	assert.True(t, latest.Has("temperature"))
}

func Test_RemoveFieldKeepsHistory(t *testing.T) {
	core := NewCore(t)
	if core.Cfg().Channel.PurgeHistoryOnFieldRemoval {
		t.Skip("purge enabled in test config")
	}
	ctx, _ := signupCtx(t, core)
	channel := createChannel(t, ctx, core, "temp", "hum")

	_, err := v1.NewEntryLogic(ctx, core).Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 20, "hum": 55})
	require.NoError(t, err)

	c, err := v1.NewChannelLogic(ctx, core).RemoveField(channel.ID, "hum")
	require.NoError(t, err)

	_, raw, err := v1.NewExportLogic(ctx, core).ExportCSV(channel.ID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), projection.TimestampColumn+",temp\n")

	resp, err := v1.NewEntryLogic(ctx, core).ReadEntries(channel.ID, c.APIKey, nil)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.True(t, resp.Entries[0].FieldData.Has("hum"))
}

func Test_RegenerateAPIKey(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)
	channel := createChannel(t, ctx, core, "temp")
	entry := v1.NewEntryLogic(ctx, core)

	// warm the api key cache
	_, err := entry.Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 1})
	require.NoError(t, err)

	c, err := v1.NewChannelLogic(ctx, core).RegenerateAPIKey(channel.ID)
	require.NoError(t, err)
	assert.NotEqual(t, channel.APIKey, c.APIKey)

	_, err = entry.Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 2})
	assert.True(t, errors.Is(err, i18n.ERROR_INVALID_API_KEY))

	_, err = entry.Ingest(channel.ID, c.APIKey, map[string]any{"temp": 3})
	assert.NoError(t, err)
}
