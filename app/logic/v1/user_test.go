package v1_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/security"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func Test_SignupValidation(t *testing.T) {
	core := NewCore(t)
	_, user := signupCtx(t, core)
	logic := v1.NewUserLogic(context.Background(), core)

	_, err := logic.Signup(v1.SignupRequest{FirstName: "a", Email: user.Email, Password: "testpwd"})
	assert.True(t, errors.Is(err, i18n.ERROR_EMAIL_ALREADY_REGISTED))

	// email is matched case-insensitively
	_, err = logic.Signup(v1.SignupRequest{FirstName: "a", Email: strings.ToUpper(user.Email), Password: "testpwd"})
	assert.True(t, errors.Is(err, i18n.ERROR_EMAIL_ALREADY_REGISTED))

	_, err = logic.Signup(v1.SignupRequest{FirstName: "a", Email: "short@quka.local", Password: "12345"})
	assert.True(t, errors.Is(err, i18n.ERROR_PASSWORD_TOO_SHORT))

	_, err = logic.Signup(v1.SignupRequest{FirstName: "a", Email: "mobile@quka.local", Password: "testpwd", MobileNumber: "123"})
	assert.True(t, errors.Is(err, i18n.ERROR_INVALID_MOBILE))
}

func Test_Login(t *testing.T) {
	core := NewCore(t)
	_, user := signupCtx(t, core)
	logic := v1.NewUserLogic(context.Background(), core)

	res, err := logic.Login(user.Email, "testpwd")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)

	claims, err := security.VerifyToken(res.Token, core.JWTKeys().Public)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.User)
	assert.Equal(t, types.USER_ROLE_USER, claims.GetRole())

	_, err = logic.Login(user.Email, "wrongpwd")
	assert.True(t, errors.Is(err, i18n.ERROR_LOGIN_ACCOUNT_INCORRECT))

	_, err = logic.Login("nobody@quka.local", "testpwd")
	assert.True(t, errors.Is(err, i18n.ERROR_LOGIN_ACCOUNT_INCORRECT))
}

func Test_UpdateMe(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)
	logic := v1.NewAuthedUserLogic(ctx, core)

	_, err := logic.UpdateMe(" ", "")
	assert.True(t, errors.Is(err, i18n.ERROR_PROFILE_EMPTY))

	user, err := logic.UpdateMe("", "Lee")
	require.NoError(t, err)
	assert.Equal(t, "test", user.FirstName)
	assert.Equal(t, "Lee", user.LastName)
}

func Test_ChangePassword(t *testing.T) {
	core := NewCore(t)
	ctx, user := signupCtx(t, core)
	logic := v1.NewAuthedUserLogic(ctx, core)

	err := logic.ChangePassword("wrongpwd", "newpassword")
	assert.True(t, errors.Is(err, i18n.ERROR_LOGIN_ACCOUNT_INCORRECT))

	require.NoError(t, logic.ChangePassword("testpwd", "newpassword"))

	_, err = v1.NewUserLogic(context.Background(), core).Login(user.Email, "newpassword")
	assert.NoError(t, err)
}

func Test_ListUsersRequiresAdmin(t *testing.T) {
	core := NewCore(t)
	ctx, _ := signupCtx(t, core)

	_, _, err := v1.NewAuthedUserLogic(ctx, core).ListUsers(types.ListUserOptions{}, 1, 10)
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	admin := security.NewTokenClaims(types.DEFAULT_APPNAME, "admin", types.USER_ROLE_ADMIN, 0)
	adminCtx := context.WithValue(context.Background(), v1.TOKEN_CONTEXT_KEY, admin)
	list, total, err := v1.NewAuthedUserLogic(adminCtx, core).ListUsers(types.ListUserOptions{Role: types.USER_ROLE_ADMIN}, 1, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	assert.NotEmpty(t, list)
}
