// Package projection rebuilds read views (latest values, per-field series,
// counts, csv) from a channel's stored entries. Every view is sparse: a field
// missing from an entry contributes nothing for that entry.
package projection

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/quka-ai/quka-iot/pkg/types"
)

type Point struct {
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Chronological returns the entries ordered by timestamp. Ties keep input order.
func Chronological(entries []*types.ChannelEntry) []*types.ChannelEntry {
	res := make([]*types.ChannelEntry, len(entries))
	copy(res, entries)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.Before(res[j].Timestamp)
	})
	return res
}

// LatestValues maps each observed field (plus any seed field) to the value of
// the chronologically last entry containing it, defaulting to 0.
func LatestValues(entries []*types.ChannelEntry, seed ...string) map[string]any {
	res := make(map[string]any)
	for _, name := range seed {
		res[name] = 0
	}
	for _, e := range entries {
		for _, v := range e.FieldData {
			if _, ok := res[v.Name]; !ok {
				res[v.Name] = 0
			}
		}
	}
	for _, e := range Chronological(entries) {
		for _, v := range e.FieldData {
			res[v.Name] = v.Value
		}
	}
	return res
}

func TimeSeries(entries []*types.ChannelEntry) map[string][]Point {
	res := make(map[string][]Point)
	for _, e := range Chronological(entries) {
		for _, v := range e.FieldData {
			res[v.Name] = append(res[v.Name], Point{Value: v.Value, Timestamp: e.Timestamp})
		}
	}
	return res
}

func EntryCount(entries []*types.ChannelEntry) map[string]int {
	res := make(map[string]int)
	for _, e := range entries {
		for _, v := range e.FieldData {
			res[v.Name]++
		}
	}
	return res
}

// Select narrows every entry's field data to the requested names. An empty
// selection returns the entries untouched.
func Select(entries []*types.ChannelEntry, names []string) []*types.ChannelEntry {
	if len(names) == 0 {
		return entries
	}
	return lo.Map(entries, func(item *types.ChannelEntry, _ int) *types.ChannelEntry {
		cp := *item
		cp.FieldData = lo.Filter(item.FieldData, func(v types.FieldValue, _ int) bool {
			return lo.Contains(names, v.Name)
		})
		return &cp
	})
}

// Feed bundles the dashboard projections of one channel.
type Feed struct {
	ChannelID   string             `json:"channel_id"`
	ChannelName string             `json:"channel_name"`
	Fields      []string           `json:"fields"`
	Latest      map[string]any     `json:"latest"`
	Series      map[string][]Point `json:"series"`
	Counts      map[string]int     `json:"counts"`
	Total       int                `json:"total"`
}

// NewFeed seeds Latest from the selected names, or from every declared field
// when no selection is given.
func NewFeed(channel *types.Channel, entries []*types.ChannelEntry, selected ...string) Feed {
	seed := []string(channel.Fields)
	if len(selected) > 0 {
		seed = selected
	}
	return Feed{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Fields:      channel.Fields,
		Latest:      LatestValues(entries, seed...),
		Series:      TimeSeries(entries),
		Counts:      EntryCount(entries),
		Total:       len(entries),
	}
}
