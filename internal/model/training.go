package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// 训练状态
const (
	TrainingStatusPending  = "pending"
	TrainingStatusRunning  = "running"
	TrainingStatusFinished = "finished"
	TrainingStatusFailed   = "failed"
)

var ErrTrainingConfigChoice = errors.New("训练必须且只能设置一种算法配置")

type Training struct {
	ID                             int64      `gorm:"primaryKey" json:"id"`
	UserID                         int64      `gorm:"not null;index" json:"user_id"`
	DatasetConfigurationID         int64      `gorm:"not null;index" json:"dataset_configuration_id"`
	AlgorithmConfigurationID       *int64     `gorm:"index" json:"algorithm_configuration_id,omitempty"`
	CustomAlgorithmConfigurationID *int64     `gorm:"index" json:"custom_algorithm_configuration_id,omitempty"`
	Status                         string     `gorm:"size:20;default:pending;index" json:"status"`
	StartedAt                      *time.Time `json:"started_at,omitempty"`
	FinishedAt                     *time.Time `json:"finished_at,omitempty"`
	ResultSummary                  string     `gorm:"type:text" json:"result_summary,omitempty"`
	ModelID                        *int64     `gorm:"index" json:"model_id,omitempty"`
	RetrainedFromID                *int64     `gorm:"index" json:"retrained_from_id,omitempty"`
	CreatedAt                      time.Time  `json:"created_at"`
	UpdatedAt                      time.Time  `json:"updated_at"`

	// 关联
	User                         *User                         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DatasetConfiguration         *DatasetConfiguration         `gorm:"foreignKey:DatasetConfigurationID" json:"dataset_configuration,omitempty"`
	AlgorithmConfiguration       *AlgorithmConfiguration       `gorm:"foreignKey:AlgorithmConfigurationID" json:"algorithm_configuration,omitempty"`
	CustomAlgorithmConfiguration *CustomAlgorithmConfiguration `gorm:"foreignKey:CustomAlgorithmConfigurationID" json:"custom_algorithm_configuration,omitempty"`
	Model                        *Model                        `gorm:"foreignKey:ModelID" json:"model,omitempty"`
}

func (Training) TableName() string {
	return "trainings"
}

// BeforeSave 保证算法配置与自定义算法配置二选一
func (t *Training) BeforeSave(tx *gorm.DB) error {
	hasStandard := t.AlgorithmConfigurationID != nil
	hasCustom := t.CustomAlgorithmConfigurationID != nil
	if hasStandard == hasCustom {
		return ErrTrainingConfigChoice
	}
	return nil
}

// AlgorithmChoice 训练选择的算法配置（标准与自定义二选一）
type AlgorithmChoice struct {
	Custom   bool
	ConfigID int64
}

// AlgorithmChoice 返回训练设置的那一种算法配置
func (t *Training) AlgorithmChoice() AlgorithmChoice {
	if t.CustomAlgorithmConfigurationID != nil {
		return AlgorithmChoice{Custom: true, ConfigID: *t.CustomAlgorithmConfigurationID}
	}
	if t.AlgorithmConfigurationID != nil {
		return AlgorithmChoice{Custom: false, ConfigID: *t.AlgorithmConfigurationID}
	}
	return AlgorithmChoice{}
}
