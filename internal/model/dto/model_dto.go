package dto

// CreateModelRequest 创建模型请求
type CreateModelRequest struct {
	TrainingID  int64    `json:"training_id" binding:"required"`
	DisplayName string   `json:"display_name" binding:"required,max=200"`
	Description string   `json:"description,omitempty" binding:"omitempty,max=2000"`
	ModelType   string   `json:"model_type,omitempty" binding:"omitempty,max=50"`
	CategoryID  *int64   `json:"category_id,omitempty"`
	Keywords    []string `json:"keywords,omitempty" binding:"omitempty,max=10,dive,max=50"`
}

// ShareModelRequest 分享模型请求
type ShareModelRequest struct {
	Username string `json:"username" binding:"required"`
}

// ModelDetail 模型详情
type ModelDetail struct {
	ID                int64    `json:"id"`
	TrainingID        int64    `json:"training_id"`
	DisplayName       string   `json:"display_name"`
	Description       string   `json:"description"`
	CategoryID        *int64   `json:"category_id,omitempty"`
	ModelType         string   `json:"model_type"`
	Status            string   `json:"status"`
	Accessibility     string   `json:"accessibility"`
	WeightsKey        string   `json:"weights_key,omitempty"`
	MetricsKey        string   `json:"metrics_key,omitempty"`
	LabelMappingKey   string   `json:"label_mapping_key,omitempty"`
	FeatureColumnsKey string   `json:"feature_columns_key,omitempty"`
	Finalized         bool     `json:"finalized"`
	FinalizedAt       string   `json:"finalized_at,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	CreatedAt         string   `json:"created_at"`
}
