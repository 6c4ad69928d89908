package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareml/shareml_go_server/internal/api/middleware"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/response"
	"github.com/shareml/shareml_go_server/internal/service"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// Create 创建团队
// POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.groupService.Create(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", detail)
}

// List 我的团队列表
// GET /api/v1/groups
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	details, err := h.groupService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, details)
}

// Get 团队详情
// GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的团队ID")
		return
	}

	detail, err := h.groupService.GetByID(groupID)
	if err != nil {
		switch err {
		case service.ErrGroupNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// AddMember 添加团队成员
// POST /api/v1/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的团队ID")
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.groupService.AddMember(userID, groupID, &req); err != nil {
		switch err {
		case service.ErrGroupNotFound, service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrGroupPermission:
			response.PermissionError(c, err.Error())
		case service.ErrAlreadyMember:
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "添加成功", nil)
}

// RemoveMember 移除团队成员
// DELETE /api/v1/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的团队ID")
		return
	}

	memberID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	if err := h.groupService.RemoveMember(userID, groupID, memberID); err != nil {
		switch err {
		case service.ErrGroupNotFound, service.ErrMemberNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrGroupPermission, service.ErrLeaderCannotLeave:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "移除成功", nil)
}
