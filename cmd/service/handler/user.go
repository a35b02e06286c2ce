package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
	"github.com/quka-ai/quka-iot/cmd/service/middleware"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

func (s *HttpSrv) Signup(c *gin.Context) {
	var (
		err error
		req v1.SignupRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	user, err := v1.NewUserLogic(c, s.Core).Signup(req)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, user)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *HttpSrv) Login(c *gin.Context) {
	var (
		err error
		req LoginRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewUserLogic(c, s.Core).Login(req.Email, req.Password)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}

type GetUserResponse struct {
	*types.User
	ServiceMode string `json:"service_mode"`
}

func (s *HttpSrv) GetMe(c *gin.Context) {
	user, err := v1.NewAuthedUserLogic(c, s.Core).GetMe()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, GetUserResponse{
		User:        user,
		ServiceMode: s.Core.Plugins.Name(),
	})
}

type UpdateMeRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"max=64"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=64"`
}

func (s *HttpSrv) UpdateMe(c *gin.Context) {
	var (
		err error
		req UpdateMeRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	user, err := v1.NewAuthedUserLogic(c, s.Core).UpdateMe(req.FirstName, req.LastName)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, user)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (s *HttpSrv) ChangePassword(c *gin.Context) {
	var (
		err error
		req ChangePasswordRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewAuthedUserLogic(c, s.Core).ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

type ListUsersResponse struct {
	List  []types.User `json:"list"`
	Total int64        `json:"total"`
}

func (s *HttpSrv) ListUsers(c *gin.Context) {
	page, pageSize := middleware.PageArgs(c)

	list, total, err := v1.NewAuthedUserLogic(c, s.Core).ListUsers(types.ListUserOptions{
		Role:  c.Query("role"),
		Email: c.Query("email"),
	}, page, pageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListUsersResponse{
		List:  list,
		Total: total,
	})
}
