package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type DatasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) Create(dataset *model.Dataset) error {
	return r.db.Create(dataset).Error
}

func (r *DatasetRepository) GetByID(id int64) (*model.Dataset, error) {
	var dataset model.Dataset
	err := r.db.Where("id = ?", id).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (r *DatasetRepository) Update(dataset *model.Dataset) error {
	return r.db.Save(dataset).Error
}

func (r *DatasetRepository) Delete(id int64) error {
	return r.db.Delete(&model.Dataset{}, id).Error
}

// ListByUserID 获取用户的数据集列表
func (r *DatasetRepository) ListByUserID(userID int64, page, pageSize int) ([]*model.Dataset, int64, error) {
	var datasets []*model.Dataset
	var total int64

	query := r.db.Model(&model.Dataset{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("uploaded_at DESC").Offset(offset).Limit(pageSize).Find(&datasets).Error; err != nil {
		return nil, 0, err
	}

	return datasets, total, nil
}
