package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

// 内置算法目录
var builtinAlgorithms = []model.Algorithm{
	{Name: "logistic_regression", Type: "classification", Builtin: true},
	{Name: "random_forest", Type: "classification", Builtin: true},
	{Name: "gradient_boosting", Type: "classification", Builtin: true},
	{Name: "linear_regression", Type: "regression", Builtin: true},
	{Name: "ridge_regression", Type: "regression", Builtin: true},
	{Name: "kmeans", Type: "clustering", Builtin: true},
}

// SeedAlgorithms 补齐内置算法目录，已存在的跳过
func SeedAlgorithms(db *gorm.DB) error {
	for _, algo := range builtinAlgorithms {
		var existing model.Algorithm
		err := db.Where("name = ?", algo.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		record := algo
		if err := db.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}
