package v1_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/app/core"
	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/pkg/plugins"
	_ "github.com/quka-ai/quka-iot/pkg/plugins/selfhost"
	"github.com/quka-ai/quka-iot/pkg/security"
	"github.com/quka-ai/quka-iot/pkg/testutils"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

func NewCore(t *testing.T) *core.Core {
	core := core.MustSetupCore(core.MustLoadBaseConfig(testutils.ConfigPathOrSkip(t)))
	plugins.Setup(core.InstallPlugins, "selfhost")
	return core
}

// signupCtx registers a throwaway user and returns a context carrying its claims
func signupCtx(t *testing.T, core *core.Core) (context.Context, *types.User) {
	user, err := v1.NewUserLogic(context.Background(), core).Signup(v1.SignupRequest{
		FirstName: "test",
		Email:     fmt.Sprintf("test_%s@quka.local", utils.RandomStr(10)),
		Password:  "testpwd",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = core.Store().UserStore().Delete(context.Background(), user.ID)
	})

	claims := security.NewTokenClaims(types.DEFAULT_APPNAME, user.ID, user.Role, time.Now().Add(time.Hour).Unix())
	return context.WithValue(context.Background(), v1.TOKEN_CONTEXT_KEY, claims), user
}

func createChannel(t *testing.T, ctx context.Context, core *core.Core, fields ...string) *types.Channel {
	channel, err := v1.NewChannelLogic(ctx, core).CreateChannel("sensor", "test channel", fields)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = v1.NewChannelLogic(ctx, core).DeleteChannel(channel.ID)
	})
	return channel
}
