package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareml/shareml_go_server/internal/api/middleware"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/response"
	"github.com/shareml/shareml_go_server/internal/service"
)

type TrainingHandler struct {
	trainingService *service.TrainingService
}

func NewTrainingHandler(trainingService *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
	}
}

// Create 创建训练
// POST /api/v1/trainings
func (h *TrainingHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.trainingService.Create(userID, &req)
	if err != nil {
		switch err {
		case service.ErrTrainingConfigChoice:
			response.ParamError(c, err.Error())
		case service.ErrDatasetConfigNotFound, service.ErrAlgorithmNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "创建成功", detail)
}

// Get 训练详情
// GET /api/v1/trainings/:id
func (h *TrainingHandler) Get(c *gin.Context) {
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

	detail, err := h.trainingService.GetByID(userID, trainingID)
	if err != nil {
		switch err {
		case service.ErrTrainingNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrTrainingPermission:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// List 训练列表
// GET /api/v1/trainings
func (h *TrainingHandler) List(c *gin.Context) {
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

	items, total, err := h.trainingService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// ListAlgorithms 算法目录
// GET /api/v1/algorithms
func (h *TrainingHandler) ListAlgorithms(c *gin.Context) {
	algorithms, err := h.trainingService.ListAlgorithms()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, algorithms)
}

// CreateAlgorithmConfig 创建算法配置
// POST /api/v1/algorithm-configurations
func (h *TrainingHandler) CreateAlgorithmConfig(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateAlgorithmConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	config, err := h.trainingService.CreateAlgorithmConfig(userID, &req)
	if err != nil {
		switch err {
		case service.ErrAlgorithmNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "创建成功", config)
}

// CreateCustomAlgorithmConfig 创建自定义算法配置
// POST /api/v1/custom-algorithm-configurations
func (h *TrainingHandler) CreateCustomAlgorithmConfig(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCustomAlgorithmConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	config, err := h.trainingService.CreateCustomAlgorithmConfig(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", config)
}
