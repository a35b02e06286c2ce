package srv

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/security"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func TestRBACCheck(t *testing.T) {
	rbac := SetupRBACSrv()

	owner := security.NewTokenClaims("quka-iot", "u1", types.USER_ROLE_USER, 0)
	stranger := security.NewTokenClaims("quka-iot", "u2", types.USER_ROLE_USER, 0)
	admin := security.NewTokenClaims("quka-iot", "u3", types.USER_ROLE_ADMIN, 0)

	channel := &types.Channel{ID: "c1", UserID: "u1"}

	assert.Nil(t, rbac.Check(owner, channel, PermissionChannelManage))
	assert.Nil(t, rbac.Check(admin, channel, PermissionChannelManage))

	err := rbac.Check(stranger, channel, PermissionChannelManage)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.GetCode())

	assert.True(t, rbac.CheckPermission(RoleAdmin, PermissionUserManage))
	assert.False(t, rbac.CheckPermission(RoleUser, PermissionChannelView))
}

func TestLazyRolerLoadsOnce(t *testing.T) {
	calls := 0
	roler := NewRolerWithLazyload(func() (string, error) {
		calls++
		return "u1", nil
	})

	for i := 0; i < 3; i++ {
		user, err := roler.GetUser()
		require.NoError(t, err)
		assert.Equal(t, "u1", user)
	}
	assert.Equal(t, 1, calls)
}

func TestRBACCheckPropagatesLoaderError(t *testing.T) {
	rbac := SetupRBACSrv()
	roler := NewRolerWithLazyload(func() (string, error) {
		return "", errors.New("load", "error.notfound", nil).Code(http.StatusNotFound)
	})

	err := rbac.Check(security.NewTokenClaims("quka-iot", "u1", types.USER_ROLE_USER, 0), roler, PermissionChannelView)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.GetCode())
}
