package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareml/shareml_go_server/internal/api/middleware"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/response"
	"github.com/shareml/shareml_go_server/internal/service"
)

type ModelHandler struct {
	modelService *service.ModelService
}

func NewModelHandler(modelService *service.ModelService) *ModelHandler {
	return &ModelHandler{
		modelService: modelService,
	}
}

// Create 登记模型
// POST /api/v1/models
func (h *ModelHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.modelService.Create(userID, &req)
	if err != nil {
		switch err {
		case service.ErrTrainingNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrModelPermission:
			response.PermissionError(c, err.Error())
		case service.ErrModelExists:
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "创建成功", detail)
}

// Get 模型详情
// GET /api/v1/models/:id
func (h *ModelHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	modelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的模型ID")
		return
	}

	detail, err := h.modelService.GetByID(userID, modelID)
	if err != nil {
		h.handleModelError(c, err)
		return
	}

	response.Success(c, detail)
}

// List 模型列表
// GET /api/v1/models
func (h *ModelHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.modelService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Finalize 定稿模型
// POST /api/v1/models/:id/finalize
func (h *ModelHandler) Finalize(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	modelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的模型ID")
		return
	}

	detail, err := h.modelService.Finalize(userID, modelID)
	if err != nil {
		switch err {
		case service.ErrModelNoWeights:
			response.ParamError(c, err.Error())
		default:
			h.handleModelError(c, err)
		}
		return
	}

	response.SuccessWithMessage(c, "定稿成功", detail)
}

// Share 分享模型
// POST /api/v1/models/:id/share
func (h *ModelHandler) Share(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	modelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的模型ID")
		return
	}

	var req dto.ShareModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.modelService.Share(userID, modelID, &req); err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrModelAlreadyShared:
			response.ConflictError(c, err.Error())
		default:
			h.handleModelError(c, err)
		}
		return
	}

	response.SuccessWithMessage(c, "分享成功", nil)
}

func (h *ModelHandler) handleModelError(c *gin.Context, err error) {
	switch err {
	case service.ErrModelNotFound:
		response.NotFoundError(c, err.Error())
	case service.ErrModelPermission:
		response.PermissionError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
