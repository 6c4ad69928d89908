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
	ErrTrainingPermission   = errors.New("无权查看此训练")
	ErrTrainingConfigChoice = errors.New("必须且只能指定一种算法配置")
	ErrAlgorithmNotFound    = errors.New("算法不存在")
)

type TrainingService struct {
	trainingRepo      *repository.TrainingRepository
	datasetConfigRepo *repository.DatasetConfigRepository
	algorithmRepo     *repository.AlgorithmRepository
	algoConfigRepo    *repository.AlgorithmConfigRepository
	customConfigRepo  *repository.CustomAlgorithmConfigRepository
}

func NewTrainingService(
	trainingRepo *repository.TrainingRepository,
	datasetConfigRepo *repository.DatasetConfigRepository,
	algorithmRepo *repository.AlgorithmRepository,
	algoConfigRepo *repository.AlgorithmConfigRepository,
	customConfigRepo *repository.CustomAlgorithmConfigRepository,
) *TrainingService {
	return &TrainingService{
		trainingRepo:      trainingRepo,
		datasetConfigRepo: datasetConfigRepo,
		algorithmRepo:     algorithmRepo,
		algoConfigRepo:    algoConfigRepo,
		customConfigRepo:  customConfigRepo,
	}
}

// Create 创建训练记录
func (s *TrainingService) Create(userID int64, req *dto.CreateTrainingRequest) (*dto.TrainingDetail, error) {
	hasStandard := req.AlgorithmConfigurationID != nil
	hasCustom := req.CustomAlgorithmConfigurationID != nil
	if hasStandard == hasCustom {
		return nil, ErrTrainingConfigChoice
	}

	if _, err := s.datasetConfigRepo.GetByID(req.DatasetConfigurationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetConfigNotFound
		}
		return nil, err
	}

	training := &model.Training{
		UserID:                         userID,
		DatasetConfigurationID:         req.DatasetConfigurationID,
		AlgorithmConfigurationID:       req.AlgorithmConfigurationID,
		CustomAlgorithmConfigurationID: req.CustomAlgorithmConfigurationID,
		RetrainedFromID:                req.RetrainedFromID,
		Status:                         model.TrainingStatusPending,
	}
	if err := s.trainingRepo.Create(training); err != nil {
		return nil, err
	}

	return buildTrainingDetail(training), nil
}

// GetByID 获取训练详情
func (s *TrainingService) GetByID(userID, trainingID int64) (*dto.TrainingDetail, error) {
	training, err := s.trainingRepo.GetByID(trainingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	if training.UserID != userID {
		return nil, ErrTrainingPermission
	}

	return buildTrainingDetail(training), nil
}

// List 用户的训练列表
func (s *TrainingService) List(userID int64, page, pageSize int) ([]*dto.TrainingDetail, int64, error) {
	trainings, total, err := s.trainingRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.TrainingDetail, len(trainings))
	for i, t := range trainings {
		items[i] = buildTrainingDetail(t)
	}
	return items, total, nil
}

// ListAlgorithms 算法目录
func (s *TrainingService) ListAlgorithms() ([]*model.Algorithm, error) {
	return s.algorithmRepo.List()
}

// CreateAlgorithmConfig 创建算法配置
func (s *TrainingService) CreateAlgorithmConfig(userID int64, req *dto.CreateAlgorithmConfigRequest) (*model.AlgorithmConfiguration, error) {
	if _, err := s.algorithmRepo.GetByID(req.AlgorithmID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlgorithmNotFound
		}
		return nil, err
	}

	cfg := &model.AlgorithmConfiguration{
		AlgorithmID: req.AlgorithmID,
		UserID:      userID,
		Options:     req.Options,
	}
	if err := s.algoConfigRepo.Create(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateCustomAlgorithmConfig 创建自定义算法配置
func (s *TrainingService) CreateCustomAlgorithmConfig(userID int64, req *dto.CreateCustomAlgorithmConfigRequest) (*model.CustomAlgorithmConfiguration, error) {
	if _, err := s.algorithmRepo.GetByID(req.AlgorithmID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlgorithmNotFound
		}
		return nil, err
	}

	cfg := &model.CustomAlgorithmConfiguration{
		AlgorithmID: req.AlgorithmID,
		UserID:      userID,
	}
	if err := s.customConfigRepo.Create(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildTrainingDetail(t *model.Training) *dto.TrainingDetail {
	detail := &dto.TrainingDetail{
		ID:                             t.ID,
		UserID:                         t.UserID,
		DatasetConfigurationID:         t.DatasetConfigurationID,
		AlgorithmConfigurationID:       t.AlgorithmConfigurationID,
		CustomAlgorithmConfigurationID: t.CustomAlgorithmConfigurationID,
		Status:                         t.Status,
		ResultSummary:                  t.ResultSummary,
		ModelID:                        t.ModelID,
		RetrainedFromID:                t.RetrainedFromID,
		CreatedAt:                      t.CreatedAt.Format(time.RFC3339),
	}
	if t.StartedAt != nil {
		detail.StartedAt = t.StartedAt.Format(time.RFC3339)
	}
	if t.FinishedAt != nil {
		detail.FinishedAt = t.FinishedAt.Format(time.RFC3339)
	}
	return detail
}
