package model

import (
	"time"
)

// 流水线复制状态
const (
	CopyStatusInProgress = "IN_PROGRESS"
	CopyStatusCompleted  = "COMPLETED"
	CopyStatusRolledBack = "ROLLED_BACK"
)

// 映射实体类型
const (
	EntityTypeDataset               = "DATASET"
	EntityTypeDatasetConfig         = "DATASET_CONFIG"
	EntityTypeAlgorithmConfig       = "ALGORITHM_CONFIG"
	EntityTypeCustomAlgorithmConfig = "CUSTOM_ALGORITHM_CONFIG"
	EntityTypeTraining              = "TRAINING"
	EntityTypeModel                 = "MODEL"
)

// 映射状态
const (
	MappingStatusCopied = "COPIED"
	MappingStatusFailed = "FAILED"
)

// 历史动作类型
const (
	CopyActionInitiated  = "COPY_INITIATED"
	CopyActionCompleted  = "COPY_COMPLETED"
	CopyActionRolledBack = "COPY_ROLLED_BACK"
)

// PipelineCopy 一次流水线复制操作的记录。
// 创建后只更新状态和目标训练，引擎不会删除它。
type PipelineCopy struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	SourceTrainingID int64     `gorm:"not null;index" json:"source_training_id"`
	TargetTrainingID *int64    `gorm:"index" json:"target_training_id,omitempty"` // 复制完成前为空
	CopiedByID       int64     `gorm:"not null;index" json:"copied_by_id"`        // 发起人
	CopyForID        int64     `gorm:"not null;index" json:"copy_for_id"`         // 复制给谁
	CopyDate         time.Time `gorm:"autoCreateTime;index" json:"copy_date"`
	Status           string    `gorm:"size:20;not null;index" json:"status"` // IN_PROGRESS, COMPLETED, ROLLED_BACK
	ErrorMessage     string    `gorm:"type:text" json:"error_message,omitempty"`

	// 关联
	CopiedBy *User                 `gorm:"foreignKey:CopiedByID" json:"copied_by,omitempty"`
	CopyFor  *User                 `gorm:"foreignKey:CopyForID" json:"copy_for,omitempty"`
	Mappings []PipelineCopyMapping `gorm:"foreignKey:PipelineCopyID" json:"mappings,omitempty"`
}

func (PipelineCopy) TableName() string {
	return "pipeline_copies"
}

// PipelineCopyMapping 每个被复制子实体一行：源实体到新实体的映射
type PipelineCopyMapping struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	PipelineCopyID  int64     `gorm:"not null;index" json:"pipeline_copy_id"`
	EntityType      string    `gorm:"size:40;not null" json:"entity_type"`
	SourceEntityID  int64     `gorm:"not null" json:"source_entity_id"`
	TargetEntityID  int64     `json:"target_entity_id"`
	SourceObjectKey string    `gorm:"size:500" json:"source_object_key,omitempty"`
	TargetObjectKey string    `gorm:"size:500" json:"target_object_key,omitempty"`
	Status          string    `gorm:"size:20;not null" json:"status"` // COPIED, FAILED
	ErrorMessage    string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (PipelineCopyMapping) TableName() string {
	return "pipeline_copy_mappings"
}

// PipelineCopyHistory 只追加的审计记录
type PipelineCopyHistory struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	PipelineCopyID int64     `gorm:"not null;index" json:"pipeline_copy_id"`
	Action         string    `gorm:"size:30;not null" json:"action"` // COPY_INITIATED, COPY_COMPLETED, COPY_ROLLED_BACK
	UserID         int64     `gorm:"not null" json:"user_id"`
	ActionDate     time.Time `gorm:"autoCreateTime" json:"action_date"`
	Detail         string    `gorm:"type:text" json:"detail,omitempty"`
}

func (PipelineCopyHistory) TableName() string {
	return "pipeline_copy_histories"
}
