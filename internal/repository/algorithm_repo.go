package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type AlgorithmRepository struct {
	db *gorm.DB
}

func NewAlgorithmRepository(db *gorm.DB) *AlgorithmRepository {
	return &AlgorithmRepository{db: db}
}

func (r *AlgorithmRepository) GetByID(id int64) (*model.Algorithm, error) {
	var algo model.Algorithm
	err := r.db.Where("id = ?", id).First(&algo).Error
	if err != nil {
		return nil, err
	}
	return &algo, nil
}

func (r *AlgorithmRepository) List() ([]*model.Algorithm, error) {
	var algos []*model.Algorithm
	err := r.db.Order("id ASC").Find(&algos).Error
	if err != nil {
		return nil, err
	}
	return algos, nil
}

func (r *AlgorithmRepository) Create(algo *model.Algorithm) error {
	return r.db.Create(algo).Error
}
