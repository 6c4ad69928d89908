package model

import (
	"time"
)

// 模型状态
const (
	ModelStatusDraft     = "draft"
	ModelStatusAvailable = "available"
)

type Model struct {
	ID                int64       `gorm:"primaryKey" json:"id"`
	TrainingID        int64       `gorm:"not null;uniqueIndex" json:"training_id"`
	DisplayName       string      `gorm:"size:200;not null" json:"display_name"`
	Description       string      `gorm:"type:text" json:"description"`
	CategoryID        *int64      `gorm:"index" json:"category_id,omitempty"`
	ModelType         string      `gorm:"size:50" json:"model_type"`
	Status            string      `gorm:"size:20;default:draft" json:"status"`
	Accessibility     string      `gorm:"size:20;default:private" json:"accessibility"`
	WeightsKey        string      `gorm:"size:500" json:"weights_key"`       // 权重文件 object key
	MetricsKey        string      `gorm:"size:500" json:"metrics_key"`       // 评估指标文件
	LabelMappingKey   string      `gorm:"size:500" json:"label_mapping_key"` // 标签映射文件
	FeatureColumnsKey string      `gorm:"size:500" json:"feature_columns_key"`
	Finalized         bool        `gorm:"default:false;index" json:"finalized"`
	FinalizedAt       *time.Time  `json:"finalized_at,omitempty"`
	Keywords          StringArray `gorm:"type:json" json:"keywords,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Model) TableName() string {
	return "models"
}

// ArtifactKeys 模型所有已存在的文件 key（权重在首位）
func (m *Model) ArtifactKeys() []string {
	keys := make([]string, 0, 4)
	for _, k := range []string{m.WeightsKey, m.MetricsKey, m.LabelMappingKey, m.FeatureColumnsKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ModelShare 模型分享记录，被分享用户获得模型访问权
type ModelShare struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	ModelID  int64     `gorm:"not null;index:idx_model_user,unique" json:"model_id"`
	UserID   int64     `gorm:"not null;index:idx_model_user,unique" json:"user_id"`
	SharedAt time.Time `gorm:"autoCreateTime" json:"shared_at"`
}

func (ModelShare) TableName() string {
	return "model_shares"
}
