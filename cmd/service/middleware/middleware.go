package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/quka-iot/app/core"
	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/security"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// AcceptLanguage 目前服务端支持 en: English, zh-CN: 简体中文
func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(v1.LANGUAGE_KEY, response.GetLangFromRequestOrDefault(ctx))
	}
}

const (
	AUTH_TOKEN_HEADER_KEY = "X-Authorization"
	API_KEY_HEADER_KEY    = "X-Api-Key"
	API_KEY_QUERY_KEY     = "api_key"
)

// APIKey 读取设备凭证，header 优先
func APIKey(c *gin.Context) string {
	if key := c.GetHeader(API_KEY_HEADER_KEY); key != "" {
		return key
	}
	return c.Query(API_KEY_QUERY_KEY)
}

func authToken(c *gin.Context) string {
	if token := c.GetHeader(security.TOKEN_KEY); token != "" {
		return security.TrimBearer(token)
	}
	return security.TrimBearer(c.GetHeader(AUTH_TOKEN_HEADER_KEY))
}

// ParseAuthToken 校验 jwt 并将 claims 写入上下文
func ParseAuthToken(c *gin.Context, tokenValue string, publicKey []byte) (bool, error) {
	if tokenValue == "" {
		return false, nil
	}

	claims, err := security.VerifyToken(tokenValue, publicKey)
	if err != nil {
		return false, errors.New("ParseAuthToken.VerifyToken", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized)
	}

	c.Set(v1.TOKEN_CONTEXT_KEY, *claims)
	c.Set(response.UserIDKey, claims.User)
	return true, nil
}

func Authorization(core *core.Core) gin.HandlerFunc {
	tracePrefix := "middleware.Authorization"
	return func(ctx *gin.Context) {
		matched, err := ParseAuthToken(ctx, authToken(ctx), core.JWTKeys().Public)
		if err != nil {
			response.APIError(ctx, errors.Trace(tracePrefix, err))
			return
		}

		if !matched {
			response.APIError(ctx, errors.New(tracePrefix, i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

// TryAuthorization 携带 api key 时跳过 jwt 校验，否则 token 可选
func TryAuthorization(core *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if APIKey(ctx) != "" {
			return
		}
		if _, err := ParseAuthToken(ctx, authToken(ctx), core.JWTKeys().Public); err != nil {
			response.APIError(ctx, errors.Trace("middleware.TryAuthorization", err))
		}
	}
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Authorization, X-Api-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

func UseLimit(appCore *core.Core, operation string, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.Plugins.UseLimiter(c, genKeyFunc(c), operation, opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}

// Metrics 记录接口耗时与错误状态码
func Metrics(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		api := c.FullPath()
		if api == "" {
			api = "unknown"
		}
		timer := core.Metrics().ApiResponseTimer(api)
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			core.Metrics().ApiErrorInc(c.Request.Method, api, status)
		}
	}
}

// PageArgs 解析分页参数，缺省时不分页
func PageArgs(c *gin.Context) (uint64, uint64) {
	page, _ := strconv.ParseUint(c.Query("page"), 10, 64)
	pageSize, _ := strconv.ParseUint(c.Query("pagesize"), 10, 64)
	if pageSize == 0 {
		return 0, 0
	}
	if page == 0 {
		page = 1
	}
	return page, pageSize
}
