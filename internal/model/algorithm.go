package model

import (
	"time"
)

type Algorithm struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Type      string    `gorm:"size:50" json:"type"` // classification, regression, clustering
	Builtin   bool      `gorm:"default:true" json:"builtin"`
	CreatedAt time.Time `json:"created_at"`
}

func (Algorithm) TableName() string {
	return "algorithms"
}

type AlgorithmConfiguration struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	AlgorithmID int64     `gorm:"not null;index" json:"algorithm_id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	Options     string    `gorm:"type:text" json:"options"` // 序列化的算法选项
	CreatedAt   time.Time `json:"created_at"`

	Algorithm *Algorithm `gorm:"foreignKey:AlgorithmID" json:"algorithm,omitempty"`
}

func (AlgorithmConfiguration) TableName() string {
	return "algorithm_configurations"
}

// CustomAlgorithmConfiguration 自定义算法配置。
// 自定义算法的子参数不在本表，复制流水线时不会带走（已知限制）。
type CustomAlgorithmConfiguration struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	AlgorithmID int64     `gorm:"not null;index" json:"algorithm_id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`

	Algorithm *Algorithm `gorm:"foreignKey:AlgorithmID" json:"algorithm,omitempty"`
}

func (CustomAlgorithmConfiguration) TableName() string {
	return "custom_algorithm_configurations"
}
