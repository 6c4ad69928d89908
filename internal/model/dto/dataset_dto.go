package dto

// DatasetDetail 数据集详情
type DatasetDetail struct {
	ID               int64  `json:"id"`
	UserID           int64  `json:"user_id"`
	StorageURL       string `json:"storage_url"`
	OriginalFilename string `json:"original_filename"`
	DisplayFilename  string `json:"display_filename"`
	Size             int64  `json:"size"`
	ContentType      string `json:"content_type"`
	Accessibility    string `json:"accessibility"`
	CategoryID       *int64 `json:"category_id,omitempty"`
	Description      string `json:"description"`
	UploadedAt       string `json:"uploaded_at"`
}

// UpdateDatasetRequest 更新数据集请求
type UpdateDatasetRequest struct {
	DisplayFilename *string `json:"display_filename,omitempty" binding:"omitempty,max=255"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Accessibility   *string `json:"accessibility,omitempty" binding:"omitempty,oneof=private public"`
	CategoryID      *int64  `json:"category_id,omitempty"`
}

// CreateDatasetConfigRequest 创建数据集配置请求
type CreateDatasetConfigRequest struct {
	DatasetID      int64    `json:"dataset_id" binding:"required"`
	FeatureColumns []string `json:"feature_columns,omitempty"`
	TargetColumn   string   `json:"target_column" binding:"required,max=100"`
}

// DatasetConfigDetail 数据集配置详情
type DatasetConfigDetail struct {
	ID             int64    `json:"id"`
	DatasetID      int64    `json:"dataset_id"`
	FeatureColumns []string `json:"feature_columns"`
	TargetColumn   string   `json:"target_column"`
	Status         string   `json:"status"`
	UploadedAt     string   `json:"uploaded_at"`
}
