package projection

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/pkg/fields"
	"github.com/quka-ai/quka-iot/pkg/types"
)

var t0 = time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)

func entry(id string, at time.Duration, data ...types.FieldValue) *types.ChannelEntry {
	return &types.ChannelEntry{
		ID:        id,
		ChannelID: "c1",
		FieldData: data,
		Timestamp: t0.Add(at),
	}
}

func fv(name string, v any) types.FieldValue {
	return types.FieldValue{Name: name, Value: v}
}

func TestLatestValuesAndCount(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("1", 0, fv("temp", 20)),
		entry("2", time.Minute, fv("temp", 22), fv("hum", 55)),
	}

	assert.Equal(t, map[string]any{"temp": 22, "hum": 55}, LatestValues(entries))
	assert.Equal(t, map[string]int{"temp": 2, "hum": 1}, EntryCount(entries))
}

func TestLatestValuesUsesTimestampOrder(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("2", time.Minute, fv("temp", 22)),
		entry("1", 0, fv("temp", 20), fv("hum", 40)),
	}

	res := LatestValues(entries, "temp", "hum", "co2")
	assert.Equal(t, 22, res["temp"])
	assert.Equal(t, 40, res["hum"])
	// declared but never submitted
	assert.Equal(t, 0, res["co2"])
}

func TestLatestValuesAfterRename(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("1", 0, fv("temp", 20)),
		entry("2", time.Minute, fv("temp", 21), fv("hum", 50)),
	}
	declared, err := fields.Rename([]string{"temp", "hum"}, "temp", "temperature")
	require.NoError(t, err)
	for _, e := range entries {
		e.FieldData.Rename("temp", "temperature")
	}

	res := LatestValues(entries, declared...)
	assert.Equal(t, 21, res["temperature"])
	_, exist := res["temp"]
	assert.False(t, exist)
}

func TestTimeSeriesIsSparse(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("1", 0, fv("temp", 20)),
		entry("2", time.Minute, fv("hum", 55)),
		entry("3", 2*time.Minute, fv("temp", 23)),
	}

	series := TimeSeries(entries)
	require.Len(t, series["temp"], 2)
	require.Len(t, series["hum"], 1)
	assert.Equal(t, Point{Value: 20, Timestamp: t0}, series["temp"][0])
	assert.Equal(t, Point{Value: 23, Timestamp: t0.Add(2 * time.Minute)}, series["temp"][1])
}

func TestSelect(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("1", 0, fv("temp", 20), fv("hum", 55)),
	}

	res := Select(entries, []string{"hum"})
	assert.Equal(t, types.FieldData{fv("hum", 55)}, res[0].FieldData)
	// the source entry is untouched
	assert.Len(t, entries[0].FieldData, 2)
	assert.Equal(t, entries, Select(entries, nil))
}

func parseCSV(t *testing.T, raw []byte) [][]string {
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestToCSVRoundTrip(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("2", time.Second, fv("hum", json.Number("55")), fv("note", "door, open")),
		entry("1", 0, fv("temp", 20.5), fv("on", true)),
	}
	order := []string{"temp", "hum", "on", "note"}

	raw, err := ToCSV(entries, order)
	require.NoError(t, err)

	records := parseCSV(t, raw)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"timestamp", "temp", "hum", "on", "note"}, records[0])

	for i, e := range Chronological(entries) {
		row := records[i+1]
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		require.NoError(t, err)
		assert.True(t, ts.Equal(e.Timestamp))

		for j, name := range order {
			v, ok := e.FieldData.Get(name)
			if !ok {
				assert.Equal(t, "", row[j+1])
				continue
			}
			assert.Equal(t, FormatValue(v), row[j+1])
		}
	}
	assert.Equal(t, "door, open", records[2][4])
}

func TestToCSVAfterFieldRemoval(t *testing.T) {
	entries := []*types.ChannelEntry{
		entry("1", 0, fv("temp", 20), fv("hum", 55)),
	}
	declared, removed := fields.Remove([]string{"temp", "hum"}, "hum")
	assert.Equal(t, []string{"hum"}, removed)

	raw, err := ToCSV(entries, declared)
	require.NoError(t, err)
	records := parseCSV(t, raw)
	assert.Equal(t, []string{"timestamp", "temp"}, records[0])
	assert.Equal(t, "20", records[1][1])

	// history keeps the removed field's data
	assert.True(t, entries[0].FieldData.Has("hum"))

	declared, _, err = fields.Add(declared, "hum")
	require.NoError(t, err)
	raw, err = ToCSV(entries, declared)
	require.NoError(t, err)
	assert.Equal(t, "55", parseCSV(t, raw)[1][2])
}

func TestToCSVEmpty(t *testing.T) {
	raw, err := ToCSV(nil, []string{"temp"})
	require.NoError(t, err)
	assert.Equal(t, "timestamp,temp\n", string(raw))
}

func TestNewFeed(t *testing.T) {
	ch := &types.Channel{ID: "c1", Name: "room", Fields: types.ChannelFields{"temp", "hum"}}
	feed := NewFeed(ch, []*types.ChannelEntry{entry("1", 0, fv("temp", 19))})

	assert.Equal(t, 1, feed.Total)
	assert.Equal(t, map[string]any{"temp": 19, "hum": 0}, feed.Latest)
	assert.Equal(t, map[string]int{"temp": 1}, feed.Counts)
}

func TestNewFeedWithSelection(t *testing.T) {
	ch := &types.Channel{ID: "c1", Name: "room", Fields: types.ChannelFields{"temp", "hum"}}
	entries := Select([]*types.ChannelEntry{
		entry("1", 0, fv("temp", 19), fv("hum", 40)),
	}, []string{"temp"})
	feed := NewFeed(ch, entries, "temp")

	assert.Equal(t, map[string]any{"temp": 19}, feed.Latest)
	assert.Equal(t, map[string]int{"temp": 1}, feed.Counts)
	assert.Equal(t, []string{"temp", "hum"}, feed.Fields)
}
