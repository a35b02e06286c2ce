package srv

import (
	"net/http"

	"github.com/mikespook/gorbac/v2"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/types"
)

const (
	// 定义角色ID，与 types.User.Role 一致
	RoleAdmin = types.USER_ROLE_ADMIN
	RoleUser  = types.USER_ROLE_USER

	// 定义权限ID
	PermissionChannelView   = "channel.view"
	PermissionChannelManage = "channel.manage"
	PermissionUserManage    = "user.manage"
)

func SetupRBACSrv() *RBACSrv {
	rbac := gorbac.New()

	pView := gorbac.NewStdPermission(PermissionChannelView)
	pManage := gorbac.NewStdPermission(PermissionChannelManage)
	pUser := gorbac.NewStdPermission(PermissionUserManage)

	// 普通用户不持有频道权限，只能通过资源归属校验访问自己的频道
	roleUser := gorbac.NewStdRole(RoleUser)

	roleAdmin := gorbac.NewStdRole(RoleAdmin)
	roleAdmin.Assign(pView)
	roleAdmin.Assign(pManage)
	roleAdmin.Assign(pUser)

	rbac.Add(roleUser)
	rbac.Add(roleAdmin)

	rbac.SetParent(RoleAdmin, RoleUser)

	return &RBACSrv{
		rbac: rbac,
	}
}

type RBACSrv struct {
	rbac *gorbac.RBAC
}

// CheckPermission 检查角色是否有某权限
func (a *RBACSrv) CheckPermission(roleID, permissionID string) bool {
	return a.rbac.IsGranted(roleID, gorbac.NewStdPermission(permissionID), nil)
}

type RoleObject interface {
	GetUser() (string, error)
}

type LazyRoler struct {
	f      func() (string, error)
	userID string
}

func (s *LazyRoler) GetUser() (string, error) {
	if s.userID == "" {
		var err error
		if s.userID, err = s.f(); err != nil {
			return "", err
		}
	}
	return s.userID, nil
}

func NewRolerWithLazyload(f func() (string, error)) *LazyRoler {
	return &LazyRoler{
		f: f,
	}
}

type RoleHolder interface {
	GetRole() string
	GetUser() string
}

// Check 持有权限的角色直接放行，否则要求资源属于当前用户
func (a *RBACSrv) Check(user RoleHolder, obj RoleObject, permissionID string) *errors.CustomizedError {
	if a.CheckPermission(user.GetRole(), permissionID) {
		return nil
	}

	resourceUser, err := obj.GetUser()
	if err != nil {
		return errors.Trace("RBACSrv.Check", err)
	}
	if user.GetUser() == "" || user.GetUser() != resourceUser {
		return errors.New("RBACSrv.Check.Owner", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}
	return nil
}
