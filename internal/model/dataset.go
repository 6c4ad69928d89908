package model

import (
	"time"
)

// 数据集可见级别
const (
	AccessibilityPrivate = "private"
	AccessibilityPublic  = "public"
)

type Dataset struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	UserID           int64     `gorm:"not null;index" json:"user_id"`
	StorageURL       string    `gorm:"size:500;not null" json:"storage_url"` // OSS 完整 URL
	OriginalFilename string    `gorm:"size:255" json:"original_filename"`
	DisplayFilename  string    `gorm:"size:255" json:"display_filename"`
	Size             int64     `json:"size"`
	ContentType      string    `gorm:"size:100" json:"content_type"`
	UploadedAt       time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	Accessibility    string    `gorm:"size:20;default:private" json:"accessibility"` // private, public
	CategoryID       *int64    `gorm:"index" json:"category_id,omitempty"`
	Description      string    `gorm:"type:text" json:"description"`

	// 关联
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Dataset) TableName() string {
	return "datasets"
}

// 数据集配置状态
const (
	DatasetConfigStatusCustom  = "custom"  // 手动选择列
	DatasetConfigStatusDefault = "default" // 使用全部列
)

type DatasetConfiguration struct {
	ID             int64       `gorm:"primaryKey" json:"id"`
	DatasetID      int64       `gorm:"not null;index" json:"dataset_id"`
	FeatureColumns StringArray `gorm:"type:json" json:"feature_columns"`
	TargetColumn   string      `gorm:"size:100" json:"target_column"`
	UploadedAt     time.Time   `gorm:"autoCreateTime" json:"uploaded_at"`
	Status         string      `gorm:"size:20;default:default" json:"status"` // custom, default

	Dataset *Dataset `gorm:"foreignKey:DatasetID" json:"dataset,omitempty"`
}

func (DatasetConfiguration) TableName() string {
	return "dataset_configurations"
}
