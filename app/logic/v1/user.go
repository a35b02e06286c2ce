package v1

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/app/core/srv"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/security"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

const MIN_PASSWORD_LENGTH = 6

// logic for unlogin
type UserLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewUserLogic(ctx context.Context, core *core.Core) *UserLogic {
	return &UserLogic{
		ctx:  ctx,
		core: core,
	}
}

type SignupRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	MobileNumber string `json:"mobile_number"`
}

func (l *UserLogic) Signup(req SignupRequest) (*types.User, error) {
	return l.createUser(req, types.USER_ROLE_USER)
}

func (l *UserLogic) createUser(req SignupRequest, role string) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errors.New("UserLogic.createUser.email", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if len(req.Password) < MIN_PASSWORD_LENGTH {
		return nil, errors.New("UserLogic.createUser.password", i18n.ERROR_PASSWORD_TOO_SHORT, nil).Code(http.StatusBadRequest)
	}
	if req.MobileNumber != "" && !utils.IsMobileNumber(req.MobileNumber) {
		return nil, errors.New("UserLogic.createUser.mobile", i18n.ERROR_INVALID_MOBILE, nil).Code(http.StatusBadRequest)
	}

	exist, err := l.core.Store().UserStore().GetByEmail(l.ctx, email)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.createUser.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return nil, errors.New("UserLogic.createUser.UserStore.GetByEmail", i18n.ERROR_EMAIL_ALREADY_REGISTED, nil).Code(http.StatusBadRequest)
	}

	hashed, err := security.NewHasher(l.core.Cfg().Security.BcryptCost).Hash([]byte(req.Password))
	if err != nil {
		return nil, errors.New("UserLogic.createUser.Hash", i18n.ERROR_INTERNAL, err)
	}

	now := time.Now().Unix()
	user := types.User{
		ID:           utils.GenUniqIDStr(),
		UUID:         utils.GenAPIKey(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Role:         role,
		Password:     hashed,
		MobileNumber: req.MobileNumber,
		Avatar:       l.core.Cfg().Site.DefaultAvatar,
		UpdatedAt:    now,
		CreatedAt:    now,
	}
	if err = l.core.Store().UserStore().Create(l.ctx, user); err != nil {
		return nil, errors.New("UserLogic.createUser.UserStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &user, nil
}

type LoginResult struct {
	Token    string      `json:"token"`
	ExpireAt int64       `json:"expire_at"`
	User     *types.User `json:"user"`
}

func (l *UserLogic) Login(email, password string) (*LoginResult, error) {
	user, err := l.core.Store().UserStore().GetByEmail(l.ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.Login.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}

	if user == nil {
		return nil, errors.New("UserLogic.Login.UserStore.GetByEmail", i18n.ERROR_LOGIN_ACCOUNT_INCORRECT, nil).Code(http.StatusBadRequest)
	}

	if err = security.NewHasher(l.core.Cfg().Security.BcryptCost).Compare(user.Password, []byte(password)); err != nil {
		return nil, errors.New("UserLogic.Login.Password.check", i18n.ERROR_LOGIN_ACCOUNT_INCORRECT, nil).Code(http.StatusBadRequest)
	}

	expireAt := time.Now().Add(l.core.Cfg().Security.TokenExpire()).Unix()
	token, err := security.GenerateJWT(security.NewTokenClaims(types.DEFAULT_APPNAME, user.ID, user.Role, expireAt), l.core.JWTKeys().Private)
	if err != nil {
		return nil, errors.New("UserLogic.Login.GenerateJWT", i18n.ERROR_INTERNAL, err)
	}

	return &LoginResult{
		Token:    token,
		ExpireAt: expireAt,
		User:     user,
	}, nil
}

// InitAdminUser 创建管理员账号，返回随机生成的密码
func (l *UserLogic) InitAdminUser(email string) (string, error) {
	password := utils.RandomStr(16)
	_, err := l.createUser(SignupRequest{
		FirstName: "admin",
		Email:     email,
		Password:  password,
	}, types.USER_ROLE_ADMIN)
	if err != nil {
		return "", errors.Trace("UserLogic.InitAdminUser", err)
	}
	return password, nil
}

type AuthedUserLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewAuthedUserLogic(ctx context.Context, core *core.Core) *AuthedUserLogic {
	return &AuthedUserLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func (l *AuthedUserLogic) GetMe() (*types.User, error) {
	user, err := l.core.Store().UserStore().GetUser(l.ctx, l.GetUserInfo().User)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("AuthedUserLogic.GetMe.UserStore.GetUser", i18n.ERROR_USER_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return nil, errors.New("AuthedUserLogic.GetMe.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}
	return user, nil
}

// UpdateMe 至少需要修改其中一项
func (l *AuthedUserLogic) UpdateMe(firstName, lastName string) (*types.User, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return nil, errors.New("AuthedUserLogic.UpdateMe.check", i18n.ERROR_PROFILE_EMPTY, nil).Code(http.StatusBadRequest)
	}

	if _, err := l.GetMe(); err != nil {
		return nil, errors.Trace("AuthedUserLogic.UpdateMe", err)
	}

	if err := l.core.Store().UserStore().UpdateUserProfile(l.ctx, l.GetUserInfo().User, firstName, lastName); err != nil {
		return nil, errors.New("AuthedUserLogic.UpdateMe.UserStore.UpdateUserProfile", i18n.ERROR_INTERNAL, err)
	}
	return l.GetMe()
}

func (l *AuthedUserLogic) ChangePassword(oldPassword, newPassword string) error {
	if len(newPassword) < MIN_PASSWORD_LENGTH {
		return errors.New("AuthedUserLogic.ChangePassword.check", i18n.ERROR_PASSWORD_TOO_SHORT, nil).Code(http.StatusBadRequest)
	}

	user, err := l.GetMe()
	if err != nil {
		return errors.Trace("AuthedUserLogic.ChangePassword", err)
	}

	hasher := security.NewHasher(l.core.Cfg().Security.BcryptCost)
	if err = hasher.Compare(user.Password, []byte(oldPassword)); err != nil {
		return errors.New("AuthedUserLogic.ChangePassword.Compare", i18n.ERROR_LOGIN_ACCOUNT_INCORRECT, nil).Code(http.StatusBadRequest)
	}

	hashed, err := hasher.Hash([]byte(newPassword))
	if err != nil {
		return errors.New("AuthedUserLogic.ChangePassword.Hash", i18n.ERROR_INTERNAL, err)
	}
	if err = l.core.Store().UserStore().UpdateUserPassword(l.ctx, user.ID, hashed); err != nil {
		return errors.New("AuthedUserLogic.ChangePassword.UserStore.UpdateUserPassword", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// ListUsers 仅管理员可用
func (l *AuthedUserLogic) ListUsers(opts types.ListUserOptions, page, pageSize uint64) ([]types.User, int64, error) {
	if !l.core.Srv().RBAC().CheckPermission(l.GetUserInfo().GetRole(), srv.PermissionUserManage) {
		return nil, 0, errors.New("AuthedUserLogic.ListUsers.CheckPermission", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}

	list, err := l.core.Store().UserStore().ListUsers(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("AuthedUserLogic.ListUsers.UserStore.ListUsers", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().UserStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("AuthedUserLogic.ListUsers.UserStore.Total", i18n.ERROR_INTERNAL, err)
	}
	if list == nil {
		list = []types.User{}
	}
	return list, total, nil
}

// CountUsers used by install bootstrap
func CountUsers(ctx context.Context, core *core.Core) (int64, error) {
	total, err := core.Store().UserStore().Total(ctx, types.ListUserOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users, %w", err)
	}
	return total, nil
}
