package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/repository"
)

var (
	ErrModelNotFound      = errors.New("模型不存在")
	ErrModelPermission    = errors.New("无权操作此模型")
	ErrModelExists        = errors.New("该训练已有模型")
	ErrModelNoWeights     = errors.New("模型缺少权重文件，无法定稿")
	ErrModelAlreadyShared = errors.New("该模型已分享给此用户")
)

type ModelService struct {
	modelRepo    *repository.ModelRepository
	trainingRepo *repository.TrainingRepository
	userRepo     *repository.UserRepository
}

func NewModelService(
	modelRepo *repository.ModelRepository,
	trainingRepo *repository.TrainingRepository,
	userRepo *repository.UserRepository,
) *ModelService {
	return &ModelService{
		modelRepo:    modelRepo,
		trainingRepo: trainingRepo,
		userRepo:     userRepo,
	}
}

// Create 基于训练创建模型记录（一对一）
func (s *ModelService) Create(userID int64, req *dto.CreateModelRequest) (*dto.ModelDetail, error) {
	training, err := s.trainingRepo.GetByID(req.TrainingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}
	if training.UserID != userID {
		return nil, ErrTrainingPermission
	}
	if training.ModelID != nil {
		return nil, ErrModelExists
	}

	m := &model.Model{
		TrainingID:  training.ID,
		DisplayName: req.DisplayName,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ModelType:   req.ModelType,
		Status:      model.ModelStatusDraft,
		Keywords:    req.Keywords,
	}
	if err := s.modelRepo.Create(m); err != nil {
		return nil, err
	}

	// 训练指回模型，保持双向一对一
	training.ModelID = &m.ID
	if err := s.trainingRepo.Update(training); err != nil {
		return nil, err
	}

	return buildModelDetail(m), nil
}

// GetByID 获取模型详情（属主或被分享者可见）
func (s *ModelService) GetByID(userID, modelID int64) (*dto.ModelDetail, error) {
	m, err := s.modelRepo.GetByID(modelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	owner, err := s.isOwner(m, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		shared, err := s.modelRepo.HasShare(modelID, userID)
		if err != nil {
			return nil, err
		}
		if !shared {
			return nil, ErrModelPermission
		}
	}

	return buildModelDetail(m), nil
}

// List 用户的模型列表
func (s *ModelService) List(userID int64, page, pageSize int) ([]*dto.ModelDetail, int64, error) {
	models, total, err := s.modelRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ModelDetail, len(models))
	for i, m := range models {
		items[i] = buildModelDetail(m)
	}
	return items, total, nil
}

// Finalize 定稿模型：要求已有权重文件
func (s *ModelService) Finalize(userID, modelID int64) (*dto.ModelDetail, error) {
	m, err := s.getOwned(userID, modelID)
	if err != nil {
		return nil, err
	}

	if m.WeightsKey == "" {
		return nil, ErrModelNoWeights
	}

	now := time.Now()
	m.Finalized = true
	m.FinalizedAt = &now
	m.Status = model.ModelStatusAvailable

	if err := s.modelRepo.Update(m); err != nil {
		return nil, err
	}
	return buildModelDetail(m), nil
}

// Share 把模型分享给另一个用户，被分享者获得复制该流水线的权限
func (s *ModelService) Share(userID, modelID int64, req *dto.ShareModelRequest) error {
	m, err := s.getOwned(userID, modelID)
	if err != nil {
		return err
	}

	target, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	shared, err := s.modelRepo.HasShare(m.ID, target.ID)
	if err != nil {
		return err
	}
	if shared {
		return ErrModelAlreadyShared
	}

	return s.modelRepo.CreateShare(&model.ModelShare{
		ModelID: m.ID,
		UserID:  target.ID,
	})
}

func (s *ModelService) isOwner(m *model.Model, userID int64) (bool, error) {
	training, err := s.trainingRepo.GetByID(m.TrainingID)
	if err != nil {
		return false, err
	}
	return training.UserID == userID, nil
}

func (s *ModelService) getOwned(userID, modelID int64) (*model.Model, error) {
	m, err := s.modelRepo.GetByID(modelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	owner, err := s.isOwner(m, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrModelPermission
	}
	return m, nil
}

func buildModelDetail(m *model.Model) *dto.ModelDetail {
	detail := &dto.ModelDetail{
		ID:                m.ID,
		TrainingID:        m.TrainingID,
		DisplayName:       m.DisplayName,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		ModelType:         m.ModelType,
		Status:            m.Status,
		Accessibility:     m.Accessibility,
		WeightsKey:        m.WeightsKey,
		MetricsKey:        m.MetricsKey,
		LabelMappingKey:   m.LabelMappingKey,
		FeatureColumnsKey: m.FeatureColumnsKey,
		Finalized:         m.Finalized,
		Keywords:          m.Keywords,
		CreatedAt:         m.CreatedAt.Format(time.RFC3339),
	}
	if m.FinalizedAt != nil {
		detail.FinalizedAt = m.FinalizedAt.Format(time.RFC3339)
	}
	return detail
}
