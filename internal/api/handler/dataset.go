package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareml/shareml_go_server/internal/api/middleware"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/response"
	"github.com/shareml/shareml_go_server/internal/service"
)

type DatasetHandler struct {
	datasetService *service.DatasetService
}

func NewDatasetHandler(datasetService *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{
		datasetService: datasetService,
	}
}

// Upload 上传数据集
// POST /api/v1/datasets (multipart/form-data)
func (h *DatasetHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传数据集文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	description := c.PostForm("description")

	detail, err := h.datasetService.Upload(userID, fileHeader.Filename, data, contentType, description)
	if err != nil {
		switch err {
		case service.ErrDatasetTooLarge, service.ErrDatasetBadExtension:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "上传成功", detail)
}

// List 数据集列表
// GET /api/v1/datasets
func (h *DatasetHandler) List(c *gin.Context) {
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

	items, total, err := h.datasetService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 数据集详情
// GET /api/v1/datasets/:id
func (h *DatasetHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	datasetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的数据集ID")
		return
	}

	detail, err := h.datasetService.GetByID(userID, datasetID)
	if err != nil {
		h.handleDatasetError(c, err)
		return
	}

	response.Success(c, detail)
}

// Update 更新数据集
// PUT /api/v1/datasets/:id
func (h *DatasetHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	datasetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的数据集ID")
		return
	}

	var req dto.UpdateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.datasetService.Update(userID, datasetID, &req)
	if err != nil {
		h.handleDatasetError(c, err)
		return
	}

	response.Success(c, detail)
}

// Delete 删除数据集
// DELETE /api/v1/datasets/:id
func (h *DatasetHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	datasetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的数据集ID")
		return
	}

	if err := h.datasetService.Delete(userID, datasetID); err != nil {
		h.handleDatasetError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// CreateConfig 创建数据集配置
// POST /api/v1/dataset-configurations
func (h *DatasetHandler) CreateConfig(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateDatasetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.datasetService.CreateConfig(userID, &req)
	if err != nil {
		h.handleDatasetError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", detail)
}

// GetConfig 数据集配置详情
// GET /api/v1/dataset-configurations/:id
func (h *DatasetHandler) GetConfig(c *gin.Context) {
	configID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的配置ID")
		return
	}

	detail, err := h.datasetService.GetConfig(configID)
	if err != nil {
		h.handleDatasetError(c, err)
		return
	}

	response.Success(c, detail)
}

func (h *DatasetHandler) handleDatasetError(c *gin.Context, err error) {
	switch err {
	case service.ErrDatasetNotFound, service.ErrDatasetConfigNotFound:
		response.NotFoundError(c, err.Error())
	case service.ErrDatasetPermission:
		response.PermissionError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
