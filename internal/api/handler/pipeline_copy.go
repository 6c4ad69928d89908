package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareml/shareml_go_server/internal/api/middleware"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/response"
	"github.com/shareml/shareml_go_server/internal/service"
)

type PipelineCopyHandler struct {
	copyService *service.PipelineCopyService
}

func NewPipelineCopyHandler(copyService *service.PipelineCopyService) *PipelineCopyHandler {
	return &PipelineCopyHandler{
		copyService: copyService,
	}
}

// Copy 复制训练流水线
// POST /api/v1/trainings/:id/copy
func (h *PipelineCopyHandler) Copy(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	trainingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的训练ID")
		return
	}

	// 请求体可以为空，空表示复制给自己
	var req dto.CopyPipelineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	result, err := h.copyService.CopyPipeline(trainingID, req.TargetUsername, userID)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.SuccessWithMessage(c, "复制成功", result)
}

// CopyToGroup 将流水线复制给群组全体成员
// POST /api/v1/trainings/:id/copy-to-group/:groupId
func (h *PipelineCopyHandler) CopyToGroup(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	trainingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的训练ID")
		return
	}

	groupID, err := strconv.ParseInt(c.Param("groupId"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的群组ID")
		return
	}

	results, err := h.copyService.CopyPipelineToGroup(trainingID, groupID, userID)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.SuccessWithMessage(c, "复制成功", results)
}

// Get 复制记录详情
// GET /api/v1/pipeline-copies/:id
func (h *PipelineCopyHandler) Get(c *gin.Context) {
	copyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的复制记录ID")
		return
	}

	result, err := h.copyService.GetWithMappings(copyID)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.Success(c, result)
}

// ListInitiated 我发起的复制
// GET /api/v1/pipeline-copies/initiated
func (h *PipelineCopyHandler) ListInitiated(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.copyService.ListInitiatedBy(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

// ListReceived 我收到的复制
// GET /api/v1/pipeline-copies/received
func (h *PipelineCopyHandler) ListReceived(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.copyService.ListReceivedBy(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

func (h *PipelineCopyHandler) handleCopyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrainingNotFound),
		errors.Is(err, service.ErrTargetUserNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrCopyRecordNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrCopyPermission):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrCopyConflict):
		response.ConflictError(c, err.Error())
	case errors.Is(err, service.ErrCopyFailed):
		response.ServerError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
