package dto

// CreateTrainingRequest 创建训练请求（两种算法配置二选一）
type CreateTrainingRequest struct {
	DatasetConfigurationID         int64  `json:"dataset_configuration_id" binding:"required"`
	AlgorithmConfigurationID       *int64 `json:"algorithm_configuration_id,omitempty"`
	CustomAlgorithmConfigurationID *int64 `json:"custom_algorithm_configuration_id,omitempty"`
	RetrainedFromID                *int64 `json:"retrained_from_id,omitempty"`
}

// TrainingDetail 训练详情
type TrainingDetail struct {
	ID                             int64  `json:"id"`
	UserID                         int64  `json:"user_id"`
	DatasetConfigurationID         int64  `json:"dataset_configuration_id"`
	AlgorithmConfigurationID       *int64 `json:"algorithm_configuration_id,omitempty"`
	CustomAlgorithmConfigurationID *int64 `json:"custom_algorithm_configuration_id,omitempty"`
	Status                         string `json:"status"`
	StartedAt                      string `json:"started_at,omitempty"`
	FinishedAt                     string `json:"finished_at,omitempty"`
	ResultSummary                  string `json:"result_summary,omitempty"`
	ModelID                        *int64 `json:"model_id,omitempty"`
	RetrainedFromID                *int64 `json:"retrained_from_id,omitempty"`
	CreatedAt                      string `json:"created_at"`
}

// CreateAlgorithmConfigRequest 创建算法配置请求
type CreateAlgorithmConfigRequest struct {
	AlgorithmID int64  `json:"algorithm_id" binding:"required"`
	Options     string `json:"options,omitempty" binding:"omitempty,max=10000"`
}

// CreateCustomAlgorithmConfigRequest 创建自定义算法配置请求
type CreateCustomAlgorithmConfigRequest struct {
	AlgorithmID int64 `json:"algorithm_id" binding:"required"`
}
