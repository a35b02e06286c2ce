package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

type Channel struct {
	ID          string        `json:"id" db:"id"`
	UserID      string        `json:"user_id" db:"user_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Fields      ChannelFields `json:"fields" db:"fields"`
	APIKey      string        `json:"api_key" db:"api_key"`
	UpdatedAt   int64         `json:"updated_at" db:"updated_at"`
	CreatedAt   int64         `json:"created_at" db:"created_at"`
}

// GetUser lets a channel act as an rbac resource owned by its creator.
func (c *Channel) GetUser() (string, error) {
	return c.UserID, nil
}

// ChannelFields is the ordered list of declared field names, stored as a jsonb array.
type ChannelFields []string

func (f ChannelFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

func (f *ChannelFields) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return f.scanBytes(src)
	case string:
		return f.scanBytes([]byte(src))
	case nil:
		*f = nil
		return nil
	}

	return fmt.Errorf("pq: cannot convert %T to ChannelFields", src)
}

func (f *ChannelFields) scanBytes(src []byte) error {
	if len(src) == 0 {
		*f = ChannelFields{}
		return nil
	}
	return json.Unmarshal(src, f)
}

type ListChannelOptions struct {
	UserID   string
	IDs      []string
	Keywords string
}

func (opts ListChannelOptions) Apply(query *sq.SelectBuilder) {
	if opts.UserID != "" {
		*query = query.Where(sq.Eq{"user_id": opts.UserID})
	}
	if len(opts.IDs) > 0 {
		*query = query.Where(sq.Eq{"id": opts.IDs})
	}
	if opts.Keywords != "" {
		*query = query.Where(sq.Like{"name": "%" + opts.Keywords + "%"})
	}
}
