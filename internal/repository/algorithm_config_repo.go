package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type AlgorithmConfigRepository struct {
	db *gorm.DB
}

func NewAlgorithmConfigRepository(db *gorm.DB) *AlgorithmConfigRepository {
	return &AlgorithmConfigRepository{db: db}
}

func (r *AlgorithmConfigRepository) Create(cfg *model.AlgorithmConfiguration) error {
	return r.db.Create(cfg).Error
}

func (r *AlgorithmConfigRepository) GetByID(id int64) (*model.AlgorithmConfiguration, error) {
	var cfg model.AlgorithmConfiguration
	err := r.db.Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

type CustomAlgorithmConfigRepository struct {
	db *gorm.DB
}

func NewCustomAlgorithmConfigRepository(db *gorm.DB) *CustomAlgorithmConfigRepository {
	return &CustomAlgorithmConfigRepository{db: db}
}

func (r *CustomAlgorithmConfigRepository) Create(cfg *model.CustomAlgorithmConfiguration) error {
	return r.db.Create(cfg).Error
}

func (r *CustomAlgorithmConfigRepository) GetByID(id int64) (*model.CustomAlgorithmConfiguration, error) {
	var cfg model.CustomAlgorithmConfiguration
	err := r.db.Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
