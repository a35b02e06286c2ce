package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/quka-ai/quka-iot/pkg/register"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChannelEntryStore = NewChannelEntryStore(provider)
	})
}

// ChannelEntryStore 处理频道数据点表的操作
type ChannelEntryStore struct {
	CommonFields
}

func NewChannelEntryStore(provider SqlProviderAchieve) *ChannelEntryStore {
	repo := &ChannelEntryStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHANNEL_ENTRY)
	repo.SetAllColumns("id", "channel_id", "field_data", "timestamp", "created_at")
	return repo
}

func (s *ChannelEntryStore) Create(ctx context.Context, data types.ChannelEntry) error {
	query := sq.Insert(s.GetTable()).
		Columns("id", "channel_id", "field_data", "timestamp", "created_at").
		Values(data.ID, data.ChannelID, data.FieldData, data.Timestamp, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ListEntries 按时间正序返回，同一时间戳按写入顺序
func (s *ChannelEntryStore) ListEntries(ctx context.Context, opts types.ListChannelEntryOptions, page, pageSize uint64) ([]*types.ChannelEntry, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("timestamp ASC", "created_at ASC", "id ASC")
	if page != 0 || pageSize != 0 {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.ChannelEntry
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ChannelEntryStore) Total(ctx context.Context, opts types.ListChannelEntryOptions) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())

	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var res int64
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return 0, err
	}
	return res, nil
}

func (s *ChannelEntryStore) UpdateFieldData(ctx context.Context, id string, data types.FieldData) error {
	query := sq.Update(s.GetTable()).
		Set("field_data", data).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChannelEntryStore) BatchDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChannelEntryStore) DeleteAll(ctx context.Context, channelID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"channel_id": channelID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
