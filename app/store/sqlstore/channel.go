package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/quka-ai/quka-iot/pkg/register"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChannelStore = NewChannelStore(provider)
	})
}

// ChannelStore 处理频道表的操作
type ChannelStore struct {
	CommonFields
}

func NewChannelStore(provider SqlProviderAchieve) *ChannelStore {
	repo := &ChannelStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHANNEL)
	repo.SetAllColumns("id", "user_id", "name", "description", "fields", "api_key", "updated_at", "created_at")
	return repo
}

func (s *ChannelStore) Create(ctx context.Context, data types.Channel) error {
	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "name", "description", "fields", "api_key", "updated_at", "created_at").
		Values(data.ID, data.UserID, data.Name, data.Description, data.Fields, data.APIKey, data.UpdatedAt, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChannelStore) GetChannel(ctx context.Context, id string) (*types.Channel, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Channel
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ChannelStore) GetByAPIKey(ctx context.Context, apiKey string) (*types.Channel, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"api_key": apiKey})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Channel
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ChannelStore) ExistAPIKey(ctx context.Context, apiKey string) (bool, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"api_key": apiKey})

	queryString, args, err := query.ToSql()
	if err != nil {
		return false, ErrorSqlBuild(err)
	}

	var count int64
	if err = s.GetReplica(ctx).Get(&count, queryString, args...); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ChannelStore) Update(ctx context.Context, id, name, description string) error {
	query := sq.Update(s.GetTable()).
		Set("name", name).
		Set("description", description).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// UpdateFields 覆盖频道声明的字段列表
func (s *ChannelStore) UpdateFields(ctx context.Context, id string, fields types.ChannelFields) error {
	query := sq.Update(s.GetTable()).
		Set("fields", fields).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChannelStore) UpdateAPIKey(ctx context.Context, id, apiKey string) error {
	query := sq.Update(s.GetTable()).
		Set("api_key", apiKey).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChannelStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ChannelStore) ListChannels(ctx context.Context, opts types.ListChannelOptions, page, pageSize uint64) ([]*types.Channel, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC", "id DESC")
	if page != 0 || pageSize != 0 {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.Channel
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ChannelStore) Total(ctx context.Context, opts types.ListChannelOptions) (int64, error) {
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
