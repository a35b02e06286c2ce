package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
	"github.com/quka-ai/quka-iot/cmd/service/middleware"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

type CreateChannelRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	Fields      []string `json:"fields" binding:"required"`
}

func (s *HttpSrv) CreateChannel(c *gin.Context) {
	var (
		err error
		req CreateChannelRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	channel, err := v1.NewChannelLogic(c, s.Core).CreateChannel(req.Name, req.Description, req.Fields)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

type ListChannelsResponse struct {
	List  []*types.Channel `json:"list"`
	Total int64            `json:"total"`
}

func (s *HttpSrv) ListChannels(c *gin.Context) {
	page, pageSize := middleware.PageArgs(c)

	list, total, err := v1.NewChannelLogic(c, s.Core).ListChannels(page, pageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListChannelsResponse{
		List:  list,
		Total: total,
	})
}

func (s *HttpSrv) GetChannel(c *gin.Context) {
	channel, err := v1.NewChannelLogic(c, s.Core).GetChannel(c.Param("channelid"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

type UpdateChannelRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

func (s *HttpSrv) UpdateChannel(c *gin.Context) {
	var (
		err error
		req UpdateChannelRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	channel, err := v1.NewChannelLogic(c, s.Core).UpdateChannel(c.Param("channelid"), req.Name, req.Description)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

func (s *HttpSrv) DeleteChannel(c *gin.Context) {
	if err := v1.NewChannelLogic(c, s.Core).DeleteChannel(c.Param("channelid")); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) RegenerateAPIKey(c *gin.Context) {
	channel, err := v1.NewChannelLogic(c, s.Core).RegenerateAPIKey(c.Param("channelid"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

type RenameFieldsRequest struct {
	Fields []v1.RenamePair `json:"fields" binding:"required,dive"`
}

func (s *HttpSrv) RenameFields(c *gin.Context) {
	var (
		err error
		req RenameFieldsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	channel, err := v1.NewChannelLogic(c, s.Core).RenameFields(c.Param("channelid"), req.Fields)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

type FieldsRequest struct {
	Fields []string `json:"fields" binding:"required"`
}

func (s *HttpSrv) AddFields(c *gin.Context) {
	var (
		err error
		req FieldsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	channel, err := v1.NewChannelLogic(c, s.Core).AddFields(c.Param("channelid"), req.Fields)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

func (s *HttpSrv) RemoveFields(c *gin.Context) {
	var (
		err error
		req FieldsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	channel, err := v1.NewChannelLogic(c, s.Core).RemoveFields(c.Param("channelid"), req.Fields)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}

func (s *HttpSrv) RemoveField(c *gin.Context) {
	channel, err := v1.NewChannelLogic(c, s.Core).RemoveField(c.Param("channelid"), c.Param("field"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, channel)
}
