package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
	"github.com/quka-ai/quka-iot/cmd/service/middleware"
	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/fields"
	"github.com/quka-ai/quka-iot/pkg/i18n"
)

// submittedValues 读取上报的键值对，GET 来自 query，其余来自 json body
func submittedValues(c *gin.Context) (map[string]any, error) {
	res := make(map[string]any)
	if c.Request.Method == http.MethodGet {
		for k, v := range c.Request.URL.Query() {
			if k == middleware.API_KEY_QUERY_KEY || len(v) == 0 {
				continue
			}
			res[k] = fields.CoerceQueryValue(v[0])
		}
		return res, nil
	}

	// 保留整数精度
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		return nil, errors.New(fmt.Sprintf("Gin.Decode.%s.%s", c.Request.Method, c.Request.URL.Path), i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}
	// body 只能包含一个 json 对象
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New(fmt.Sprintf("Gin.Decode.%s.%s", c.Request.Method, c.Request.URL.Path), i18n.ERROR_INVALIDARGUMENT, fmt.Errorf("unexpected data after json body: %v", err)).Code(http.StatusBadRequest)
	}
	delete(res, middleware.API_KEY_QUERY_KEY)
	return res, nil
}

func (s *HttpSrv) Ingest(c *gin.Context) {
	submitted, err := submittedValues(c)
	if err != nil {
		response.APIError(c, err)
		return
	}

	entry, err := v1.NewEntryLogic(c, s.Core).Ingest(c.Param("channelid"), middleware.APIKey(c), submitted)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, entry)
}

func (s *HttpSrv) ReadEntries(c *gin.Context) {
	res, err := v1.NewEntryLogic(c, s.Core).ReadEntries(c.Param("channelid"), middleware.APIKey(c), fields.ParseList(c.Query("fields")))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}

func (s *HttpSrv) Feed(c *gin.Context) {
	res, err := v1.NewEntryLogic(c, s.Core).Feed(c.Param("channelid"), middleware.APIKey(c), fields.ParseList(c.Query("fields")))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}
