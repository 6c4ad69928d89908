package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type DatasetConfigRepository struct {
	db *gorm.DB
}

func NewDatasetConfigRepository(db *gorm.DB) *DatasetConfigRepository {
	return &DatasetConfigRepository{db: db}
}

func (r *DatasetConfigRepository) Create(cfg *model.DatasetConfiguration) error {
	return r.db.Create(cfg).Error
}

func (r *DatasetConfigRepository) GetByID(id int64) (*model.DatasetConfiguration, error) {
	var cfg model.DatasetConfiguration
	err := r.db.Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *DatasetConfigRepository) GetByIDWithDataset(id int64) (*model.DatasetConfiguration, error) {
	var cfg model.DatasetConfiguration
	err := r.db.Preload("Dataset").Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *DatasetConfigRepository) ListByDatasetID(datasetID int64) ([]*model.DatasetConfiguration, error) {
	var cfgs []*model.DatasetConfiguration
	err := r.db.Where("dataset_id = ?", datasetID).Order("uploaded_at DESC").Find(&cfgs).Error
	if err != nil {
		return nil, err
	}
	return cfgs, nil
}
