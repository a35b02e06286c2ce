package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/app/core"
	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
	"github.com/quka-ai/quka-iot/pkg/security"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestAPIKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?api_key=from-query", nil)
	c, _ := newContext(req)
	assert.Equal(t, "from-query", APIKey(c))

	req.Header.Set(API_KEY_HEADER_KEY, "from-header")
	assert.Equal(t, "from-header", APIKey(c))
}

func TestParseAuthToken(t *testing.T) {
	keys, err := core.GenerateJWTKeys()
	require.NoError(t, err)

	token, err := security.GenerateJWT(security.NewTokenClaims(types.DEFAULT_APPNAME, "10001", types.USER_ROLE_USER, time.Now().Add(time.Hour).Unix()), keys.Private)
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + token, token} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(security.TOKEN_KEY, header)
		c, _ := newContext(req)

		ok, err := ParseAuthToken(c, authToken(c), keys.Public)
		require.NoError(t, err)
		assert.True(t, ok)

		claims, exist := v1.InjectTokenClaim(c)
		assert.True(t, exist)
		assert.Equal(t, "10001", claims.User)
		assert.Equal(t, "10001", c.GetString(response.UserIDKey))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AUTH_TOKEN_HEADER_KEY, token)
	c, _ := newContext(req)
	assert.Equal(t, token, authToken(c))

	ok, err := ParseAuthToken(c, "", keys.Public)
	assert.NoError(t, err)
	assert.False(t, ok)

	other, err := core.GenerateJWTKeys()
	require.NoError(t, err)
	_, err = ParseAuthToken(c, token, other.Public)
	assert.Error(t, err)
}

func TestCors(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/channels", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	c, w := newContext(req)

	Cors(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key")
}

func TestPageArgs(t *testing.T) {
	cases := []struct {
		query    string
		page     uint64
		pageSize uint64
	}{
		{"", 0, 0},
		{"?page=2&pagesize=10", 2, 10},
		{"?pagesize=10", 1, 10},
		{"?page=3", 0, 0},
	}
	for _, tc := range cases {
		c, _ := newContext(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))
		page, pageSize := PageArgs(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.pageSize, pageSize, tc.query)
	}
}
