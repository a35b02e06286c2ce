package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ChannelEntry is one timestamped submission against a channel.
type ChannelEntry struct {
	ID        string    `json:"id" db:"id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	FieldData FieldData `json:"field_data" db:"field_data"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	CreatedAt int64     `json:"-" db:"created_at"`
}

type FieldValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// FieldData holds the (name, value) pairs of an entry; names are unique.
type FieldData []FieldValue

func (d FieldData) Get(name string) (any, bool) {
	for _, v := range d {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

func (d FieldData) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

func (d FieldData) Names() []string {
	names := make([]string, 0, len(d))
	for _, v := range d {
		names = append(names, v.Name)
	}
	return names
}

// Rename re-keys oldName to newName in place. An entry that already carries
// newName is left untouched so retained history is never overwritten.
// Reports whether anything changed.
func (d *FieldData) Rename(oldName, newName string) bool {
	if oldName == newName || !d.Has(oldName) || d.Has(newName) {
		return false
	}
	res := make(FieldData, len(*d))
	for i, v := range *d {
		if v.Name == oldName {
			v.Name = newName
		}
		res[i] = v
	}
	*d = res
	return true
}

// Without returns a copy without the given names and whether any was removed.
func (d FieldData) Without(names ...string) (FieldData, bool) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	res := make(FieldData, 0, len(d))
	for _, v := range d {
		if _, ok := drop[v.Name]; ok {
			continue
		}
		res = append(res, v)
	}
	return res, len(res) != len(d)
}

func (d FieldData) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *FieldData) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return d.scanBytes(src)
	case string:
		return d.scanBytes([]byte(src))
	case nil:
		*d = nil
		return nil
	}

	return fmt.Errorf("pq: cannot convert %T to FieldData", src)
}

func (d *FieldData) scanBytes(src []byte) error {
	if len(src) == 0 {
		*d = FieldData{}
		return nil
	}
	// keep numbers as json.Number so integers survive the round trip untouched
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	return dec.Decode(d)
}

type ListChannelEntryOptions struct {
	ChannelID string
	Since     *time.Time
	Until     *time.Time
	// HasField limits the result to entries carrying the named field
	HasField string
}

func (opts ListChannelEntryOptions) Apply(query *sq.SelectBuilder) {
	if opts.ChannelID != "" {
		*query = query.Where(sq.Eq{"channel_id": opts.ChannelID})
	}
	if opts.Since != nil {
		*query = query.Where(sq.GtOrEq{"timestamp": *opts.Since})
	}
	if opts.Until != nil {
		*query = query.Where(sq.Lt{"timestamp": *opts.Until})
	}
	if opts.HasField != "" {
		raw, _ := json.Marshal([]map[string]string{{"name": opts.HasField}})
		*query = query.Where(sq.Expr("field_data @> ?::jsonb", string(raw)))
	}
}

// EntriesResponse is the raw read view of a channel.
type EntriesResponse struct {
	ChannelName        string          `json:"channel_name"`
	ChannelDescription string          `json:"channel_description"`
	Entries            []*ChannelEntry `json:"entries"`
}
