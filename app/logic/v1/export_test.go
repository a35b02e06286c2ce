package v1_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/plugins"
)

func Test_ExportCSV(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)
	channel := createChannel(t, ctx, core, "temp", "hum")
	logic := v1.NewExportLogic(ctx, core)

	_, _, err := logic.ExportCSV(channel.ID)
	assert.True(t, errors.Is(err, i18n.ERROR_CHANNEL_NO_ENTRIES))

	entry := v1.NewEntryLogic(ctx, core)
	_, err = entry.Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 20})
	require.NoError(t, err)
	_, err = entry.Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 22.5, "hum": true})
	require.NoError(t, err)

	filename, raw, err := logic.ExportCSV(channel.ID)
	require.NoError(t, err)
	assert.Equal(t, "channel_"+channel.ID+"_fields.csv", filename)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"timestamp", "temp", "hum"}, records[0])
	assert.Equal(t, []string{"20", ""}, records[1][1:])
	assert.Equal(t, []string{"22.5", "true"}, records[2][1:])
}

func Test_ArchiveCSV(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)
	channel := createChannel(t, ctx, core, "temp")

	_, err := v1.NewEntryLogic(ctx, core).Ingest(channel.ID, channel.APIKey, map[string]any{"temp": 20})
	require.NoError(t, err)

	res, err := v1.NewExportLogic(ctx, core).ArchiveCSV(channel.ID)
	if _, ok := core.Plugins.FileStorage().(*plugins.NoneFileStorage); ok {
		assert.True(t, errors.Is(err, i18n.ERROR_UNSUPPORTED))
		return
	}
	require.NoError(t, err)
	assert.Contains(t, res.Path, "/exports/"+channel.ID+"/")
	assert.NotEmpty(t, res.URL)

	raw, err := core.Plugins.FileStorage().DownloadFile(ctx, res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "timestamp,temp")
}
