package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type TrainingRepository struct {
	db *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

func (r *TrainingRepository) Create(training *model.Training) error {
	return r.db.Create(training).Error
}

func (r *TrainingRepository) GetByID(id int64) (*model.Training, error) {
	var training model.Training
	err := r.db.Where("id = ?", id).First(&training).Error
	if err != nil {
		return nil, err
	}
	return &training, nil
}

// GetByIDFull 加载训练及全部关联（复制流水线用）
func (r *TrainingRepository) GetByIDFull(id int64) (*model.Training, error) {
	var training model.Training
	err := r.db.
		Preload("User").
		Preload("DatasetConfiguration").
		Preload("DatasetConfiguration.Dataset").
		Preload("AlgorithmConfiguration").
		Preload("CustomAlgorithmConfiguration").
		Preload("Model").
		Where("id = ?", id).First(&training).Error
	if err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *TrainingRepository) Update(training *model.Training) error {
	return r.db.Save(training).Error
}

func (r *TrainingRepository) ListByUserID(userID int64, page, pageSize int) ([]*model.Training, int64, error) {
	var trainings []*model.Training
	var total int64

	query := r.db.Model(&model.Training{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&trainings).Error; err != nil {
		return nil, 0, err
	}

	return trainings, total, nil
}
