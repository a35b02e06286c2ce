package response

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("i18n", l)
	}
}

func InjectResponseLocalizer(c *gin.Context) i18n.Localizer {
	if l, ok := c.Get("i18n"); ok {
		return l.(i18n.Localizer)
	}
	return i18n.NewLocalizer(i18n.DEFAULT_LANG)
}

const (
	RequestIDKey = "request_id"
	ResponseKey  = "response_key"
	UserIDKey    = "user_id"
)

type EmptyStruct struct {
}

type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data"`
}

type Meta struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	// Detail 仅在服务端错误时返回底层原因
	Detail string `json:"detail,omitempty"`
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.SimplifiedChinese,
})

// GetLangFromRequestOrDefault 按 Accept-Language 匹配支持的语言
func GetLangFromRequestOrDefault(c *gin.Context) string {
	header := c.Request.Header.Get("Accept-Language")
	if header == "" {
		return i18n.DEFAULT_LANG
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return i18n.DEFAULT_LANG
	}
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No {
		return i18n.DEFAULT_LANG
	}
	if idx == 1 {
		return "zh-CN"
	}
	return "en"
}

func getResponse(c *gin.Context) *Response {
	if res, ok := c.Get(ResponseKey); ok {
		return res.(*Response)
	}
	res := &Response{Meta: Meta{RequestID: utils.GenRandomID()}}
	c.Set(ResponseKey, res)
	return res
}

// APIError api响应失败
func APIError(c *gin.Context, err error) {
	c.Abort()
	l := InjectResponseLocalizer(c)

	res := getResponse(c)
	var httpStatus int
	if cerrptr, ok := err.(*errors.CustomizedError); !ok {
		res.Meta.Code = http.StatusInternalServerError
		res.Meta.Message = l.Get(GetLangFromRequestOrDefault(c), i18n.ERROR_INTERNAL)
		res.Meta.Detail = err.Error()
		httpStatus = res.Meta.Code
	} else {
		res.Meta.Code = cerrptr.GetCode()
		res.Meta.Message = l.Get(GetLangFromRequestOrDefault(c), cerrptr.Message())
		if cerrptr.GetCode() >= http.StatusInternalServerError {
			if cause := cerrptr.Cause(); cause != nil {
				res.Meta.Detail = cause.Error()
			}
		}
		httpStatus = cerrptr.GetCode()
	}

	c.JSON(httpStatus, res)
	printErrorLog(c, res, err)
}

func printErrorLog(c *gin.Context, res *Response, err error) {
	logFields := []any{
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.Int64("end_time", time.Now().Unix()),
		slog.Int("code", res.Meta.Code),
		slog.String("request_id", res.Meta.RequestID),
		slog.String("error", err.Error()),
	}

	if uid := c.GetString(UserIDKey); uid != "" {
		logFields = append(logFields, slog.String("uid", uid))
	}
	slog.Error("response error", logFields...)
}

func printSuccessLog(c *gin.Context, res *Response) {
	logFields := []any{
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.Int64("end_time", time.Now().Unix()),
		slog.String("request_id", res.Meta.RequestID),
		slog.String("params", c.Request.URL.Query().Encode()),
	}

	if uid := c.GetString(UserIDKey); uid != "" {
		logFields = append(logFields, slog.String("uid", uid))
	}
	slog.Info("request success", logFields...)
}

// APISuccess api响应成功
func APISuccess(c *gin.Context, response interface{}) {
	c.Abort()
	res := getResponse(c)
	if response != nil {
		res.Data = response
	}
	c.JSON(http.StatusOK, res)
	printSuccessLog(c, res)
}

// APIFile 以附件形式返回文件内容
func APIFile(c *gin.Context, filename, contentType string, content []byte) {
	c.Abort()
	res := getResponse(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("X-Request-Id", res.Meta.RequestID)
	c.Data(http.StatusOK, contentType, content)
	printSuccessLog(c, res)
}

func NewResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := &Response{
			Meta: Meta{
				RequestID: utils.GenRandomID(),
			},
		}
		c.Set(ResponseKey, resp)
	}
}
