package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type ModelRepository struct {
	db *gorm.DB
}

func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

func (r *ModelRepository) Create(m *model.Model) error {
	return r.db.Create(m).Error
}

func (r *ModelRepository) GetByID(id int64) (*model.Model, error) {
	var m model.Model
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModelRepository) GetByTrainingID(trainingID int64) (*model.Model, error) {
	var m model.Model
	err := r.db.Where("training_id = ?", trainingID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModelRepository) Update(m *model.Model) error {
	return r.db.Save(m).Error
}

func (r *ModelRepository) ListByUserID(userID int64, page, pageSize int) ([]*model.Model, int64, error) {
	var models []*model.Model
	var total int64

	query := r.db.Model(&model.Model{}).
		Joins("JOIN trainings ON trainings.model_id = models.id").
		Where("trainings.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("models.created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	return models, total, nil
}

// CreateShare 记录一次模型分享
func (r *ModelRepository) CreateShare(share *model.ModelShare) error {
	return r.db.Create(share).Error
}

// HasShare 用户是否被分享过该模型
func (r *ModelRepository) HasShare(modelID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.ModelShare{}).
		Where("model_id = ? AND user_id = ?", modelID, userID).Count(&count).Error
	return count > 0, err
}
