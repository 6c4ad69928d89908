package service

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/config"
	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/oss"
	"github.com/shareml/shareml_go_server/internal/repository"
)

var (
	ErrDatasetNotFound       = errors.New("数据集不存在")
	ErrDatasetPermission     = errors.New("无权操作此数据集")
	ErrDatasetTooLarge       = errors.New("数据集文件过大")
	ErrDatasetBadExtension   = errors.New("不支持的数据集文件类型")
	ErrDatasetConfigNotFound = errors.New("数据集配置不存在")
)

type DatasetService struct {
	datasetRepo       *repository.DatasetRepository
	datasetConfigRepo *repository.DatasetConfigRepository
	ossClient         *oss.Client
	cfg               *config.Config
}

func NewDatasetService(
	datasetRepo *repository.DatasetRepository,
	datasetConfigRepo *repository.DatasetConfigRepository,
	ossClient *oss.Client,
	cfg *config.Config,
) *DatasetService {
	return &DatasetService{
		datasetRepo:       datasetRepo,
		datasetConfigRepo: datasetConfigRepo,
		ossClient:         ossClient,
		cfg:               cfg,
	}
}

// Upload 上传数据集文件到 OSS 并落数据集记录
func (s *DatasetService) Upload(userID int64, filename string, data []byte, contentType, description string) (*dto.DatasetDetail, error) {
	if s.cfg.Upload.MaxSize > 0 && int64(len(data)) > s.cfg.Upload.MaxSize {
		return nil, ErrDatasetTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(s.cfg.Upload.AllowedExtensions) > 0 {
		allowed := false
		for _, e := range s.cfg.Upload.AllowedExtensions {
			if ext == e {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, ErrDatasetBadExtension
		}
	}

	url, err := s.ossClient.UploadDataset(userID, filename, data, contentType)
	if err != nil {
		return nil, err
	}

	dataset := &model.Dataset{
		UserID:           userID,
		StorageURL:       url,
		OriginalFilename: filename,
		DisplayFilename:  filename,
		Size:             int64(len(data)),
		ContentType:      contentType,
		Accessibility:    model.AccessibilityPrivate,
		Description:      description,
	}
	if err := s.datasetRepo.Create(dataset); err != nil {
		return nil, err
	}

	return buildDatasetDetail(dataset), nil
}

// GetByID 获取数据集详情
func (s *DatasetService) GetByID(userID, datasetID int64) (*dto.DatasetDetail, error) {
	dataset, err := s.getOwned(userID, datasetID)
	if err != nil {
		return nil, err
	}
	return buildDatasetDetail(dataset), nil
}

// List 用户的数据集列表
func (s *DatasetService) List(userID int64, page, pageSize int) ([]*dto.DatasetDetail, int64, error) {
	datasets, total, err := s.datasetRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.DatasetDetail, len(datasets))
	for i, d := range datasets {
		items[i] = buildDatasetDetail(d)
	}
	return items, total, nil
}

// Update 更新数据集元数据
func (s *DatasetService) Update(userID, datasetID int64, req *dto.UpdateDatasetRequest) (*dto.DatasetDetail, error) {
	dataset, err := s.getOwned(userID, datasetID)
	if err != nil {
		return nil, err
	}

	if req.DisplayFilename != nil {
		dataset.DisplayFilename = *req.DisplayFilename
	}
	if req.Description != nil {
		dataset.Description = *req.Description
	}
	if req.Accessibility != nil {
		dataset.Accessibility = *req.Accessibility
	}
	if req.CategoryID != nil {
		dataset.CategoryID = req.CategoryID
	}

	if err := s.datasetRepo.Update(dataset); err != nil {
		return nil, err
	}
	return buildDatasetDetail(dataset), nil
}

// Delete 删除数据集及其 OSS 文件
func (s *DatasetService) Delete(userID, datasetID int64) error {
	dataset, err := s.getOwned(userID, datasetID)
	if err != nil {
		return err
	}

	key := s.ossClient.ExtractObjectKey(dataset.StorageURL)
	if err := s.ossClient.Delete(key); err != nil {
		return err
	}

	return s.datasetRepo.Delete(datasetID)
}

// CreateConfig 创建数据集配置。手动选择了特征列为 custom，否则 default。
func (s *DatasetService) CreateConfig(userID int64, req *dto.CreateDatasetConfigRequest) (*dto.DatasetConfigDetail, error) {
	if _, err := s.getOwned(userID, req.DatasetID); err != nil {
		return nil, err
	}

	status := model.DatasetConfigStatusDefault
	if len(req.FeatureColumns) > 0 {
		status = model.DatasetConfigStatusCustom
	}

	cfg := &model.DatasetConfiguration{
		DatasetID:      req.DatasetID,
		FeatureColumns: req.FeatureColumns,
		TargetColumn:   req.TargetColumn,
		Status:         status,
	}
	if err := s.datasetConfigRepo.Create(cfg); err != nil {
		return nil, err
	}

	return buildDatasetConfigDetail(cfg), nil
}

// GetConfig 获取数据集配置
func (s *DatasetService) GetConfig(configID int64) (*dto.DatasetConfigDetail, error) {
	cfg, err := s.datasetConfigRepo.GetByID(configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetConfigNotFound
		}
		return nil, err
	}
	return buildDatasetConfigDetail(cfg), nil
}

func (s *DatasetService) getOwned(userID, datasetID int64) (*model.Dataset, error) {
	dataset, err := s.datasetRepo.GetByID(datasetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}
	if dataset.UserID != userID {
		return nil, ErrDatasetPermission
	}
	return dataset, nil
}

func buildDatasetDetail(d *model.Dataset) *dto.DatasetDetail {
	return &dto.DatasetDetail{
		ID:               d.ID,
		UserID:           d.UserID,
		StorageURL:       d.StorageURL,
		OriginalFilename: d.OriginalFilename,
		DisplayFilename:  d.DisplayFilename,
		Size:             d.Size,
		ContentType:      d.ContentType,
		Accessibility:    d.Accessibility,
		CategoryID:       d.CategoryID,
		Description:      d.Description,
		UploadedAt:       d.UploadedAt.Format(time.RFC3339),
	}
}

func buildDatasetConfigDetail(c *model.DatasetConfiguration) *dto.DatasetConfigDetail {
	return &dto.DatasetConfigDetail{
		ID:             c.ID,
		DatasetID:      c.DatasetID,
		FeatureColumns: c.FeatureColumns,
		TargetColumn:   c.TargetColumn,
		Status:         c.Status,
		UploadedAt:     c.UploadedAt.Format(time.RFC3339),
	}
}
