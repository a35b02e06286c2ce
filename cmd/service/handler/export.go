package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
)

func (s *HttpSrv) ExportCSV(c *gin.Context) {
	filename, raw, err := v1.NewExportLogic(c, s.Core).ExportCSV(c.Param("channelid"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APIFile(c, filename, v1.CSVContentType, raw)
}

func (s *HttpSrv) ArchiveCSV(c *gin.Context) {
	res, err := v1.NewExportLogic(c, s.Core).ArchiveCSV(c.Param("channelid"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}
