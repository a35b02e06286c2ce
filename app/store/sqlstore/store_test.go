package sqlstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("QUKA_IOT_POSTGRESQL_DSN")
}

func (m PGConfig) FormatDSN() string {
	return m.DSN
}

func setupProvider(t *testing.T) *Provider {
	cfg := PGConfig{}
	cfg.FromENV()
	if cfg.DSN == "" {
		t.Skip("QUKA_IOT_POSTGRESQL_DSN not set")
	}
	utils.SetupIDWorker(1)
	p := MustSetup(cfg)()
	require.NoError(t, p.Install())
	return p
}

func TestChannelEntryStore(t *testing.T) {
	p := setupProvider(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	channel := types.Channel{
		ID:        utils.GenUniqIDStr(),
		UserID:    utils.GenUniqIDStr(),
		Name:      "greenhouse",
		Fields:    types.ChannelFields{"temp", "hum"},
		APIKey:    utils.GenAPIKey(),
		UpdatedAt: time.Now().Unix(),
		CreatedAt: time.Now().Unix(),
	}
	require.NoError(t, p.ChannelStore().Create(ctx, channel))
	t.Cleanup(func() {
		p.ChannelEntryStore().DeleteAll(context.Background(), channel.ID)
		p.ChannelStore().Delete(context.Background(), channel.ID)
	})

	got, err := p.ChannelStore().GetByAPIKey(ctx, channel.APIKey)
	require.NoError(t, err)
	assert.Equal(t, channel.ID, got.ID)
	assert.Equal(t, channel.Fields, got.Fields)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, data := range []types.FieldData{
		{{Name: "temp", Value: 21}},
		{{Name: "temp", Value: 22}, {Name: "hum", Value: 40}},
	} {
		require.NoError(t, p.ChannelEntryStore().Create(ctx, types.ChannelEntry{
			ID:        utils.GenUniqIDStr(),
			ChannelID: channel.ID,
			FieldData: data,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			CreatedAt: time.Now().Unix(),
		}))
	}

	list, err := p.ChannelEntryStore().ListEntries(ctx, types.ListChannelEntryOptions{ChannelID: channel.ID}, types.NO_PAGINATION, types.NO_PAGINATION)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Timestamp.Before(list[1].Timestamp))

	total, err := p.ChannelEntryStore().Total(ctx, types.ListChannelEntryOptions{ChannelID: channel.ID, HasField: "hum"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// nested transactions join the outer one
	err = p.Transaction(ctx, func(ctx context.Context) error {
		return p.Transaction(ctx, func(ctx context.Context) error {
			return p.ChannelStore().UpdateFields(ctx, channel.ID, types.ChannelFields{"temp"})
		})
	})
	require.NoError(t, err)

	got, err = p.ChannelStore().GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ChannelFields{"temp"}, got.Fields)
}
