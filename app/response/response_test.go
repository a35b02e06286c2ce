package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
)

func setupEngine(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(ProvideResponseLocalizer(i18n.NewLocalizer("en", "zh-CN")), NewResponse())
	e.GET("/", h)
	return e
}

func do(t *testing.T, e *gin.Engine, lang string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var res Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func TestAPIErrorLocalized(t *testing.T) {
	e := setupEngine(func(c *gin.Context) {
		APIError(c, errors.New("test", i18n.ERROR_CHANNEL_NOT_FOUND, nil).Code(http.StatusNotFound))
	})

	w, res := do(t, e, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, res.Meta.Code)
	assert.NotEqual(t, i18n.ERROR_CHANNEL_NOT_FOUND, res.Meta.Message)
	assert.Empty(t, res.Meta.Detail)
	assert.NotEmpty(t, res.Meta.RequestID)

	_, zh := do(t, e, "zh-CN,zh;q=0.9,en;q=0.8")
	assert.NotEqual(t, res.Meta.Message, zh.Meta.Message)
}

func TestAPIErrorServerDetail(t *testing.T) {
	e := setupEngine(func(c *gin.Context) {
		APIError(c, errors.New("test", i18n.ERROR_INTERNAL, stderrors.New("connection refused")))
	})

	w, res := do(t, e, "en")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "connection refused", res.Meta.Detail)
}

func TestAPISuccess(t *testing.T) {
	e := setupEngine(func(c *gin.Context) {
		APISuccess(c, map[string]int{"temp": 1})
	})

	w, res := do(t, e, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"temp": float64(1)}, res.Data)
}

func TestGetLangFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"":               "en",
		"zh":             "zh-CN",
		"zh-CN":          "zh-CN",
		"en-US,en;q=0.9": "en",
		"fr-FR":          "en",
	}
	for header, expect := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Accept-Language", header)
		assert.Equal(t, expect, GetLangFromRequestOrDefault(c), header)
	}
}
