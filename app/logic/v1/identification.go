package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/app/core/srv"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/security"
)

type _userInfo struct {
	ctx  context.Context
	core *core.Core
	u    *security.TokenClaims
}

func (u *_userInfo) GetUserInfo() security.TokenClaims {
	return *u.u
}

func (u *_userInfo) Identification(roler srv.RoleObject, permission string) error {
	if err := u.core.Srv().RBAC().Check(u.GetUserInfo(), roler, permission); err != nil {
		return err
	}
	return nil
}

// 通过 channel id 获取频道所属用户
func (u *_userInfo) lazyRolerFromChannelID(id string) *srv.LazyRoler {
	return srv.NewRolerWithLazyload(func() (string, error) {
		c, err := u.core.Store().ChannelStore().GetChannel(u.ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", errors.New("_userInfo.lazyRolerFromChannelID", i18n.ERROR_CHANNEL_NOT_FOUND, nil).Code(http.StatusNotFound)
			}
			return "", errors.New("_userInfo.lazyRolerFromChannelID", i18n.ERROR_INTERNAL, err)
		}
		return c.UserID, nil
	})
}

// SetupUserInfo 未登录时返回空的 claims，后续鉴权自然失败
func SetupUserInfo(ctx context.Context, core *core.Core) UserInfo {
	userInfo, _ := InjectTokenClaim(ctx)
	return &_userInfo{
		ctx:  ctx,
		u:    &userInfo,
		core: core,
	}
}

type UserInfo interface {
	GetUserInfo() security.TokenClaims
	Identification(roler srv.RoleObject, permission string) error
	lazyRolerFromChannelID(id string) *srv.LazyRoler
}
