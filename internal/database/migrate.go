package database

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

// AutoMigrate 同步全部表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.GroupMember{},
		&model.Category{},
		&model.Dataset{},
		&model.DatasetConfiguration{},
		&model.Algorithm{},
		&model.AlgorithmConfiguration{},
		&model.CustomAlgorithmConfiguration{},
		&model.Training{},
		&model.Model{},
		&model.ModelShare{},
		&model.PipelineCopy{},
		&model.PipelineCopyMapping{},
		&model.PipelineCopyHistory{},
	)
}
