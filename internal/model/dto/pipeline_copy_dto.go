package dto

// CopyPipelineRequest 复制流水线请求
type CopyPipelineRequest struct {
	TargetUsername string `json:"target_username,omitempty" binding:"omitempty,max=50"`
}

// MappingInfo 单个子实体的复制映射
type MappingInfo struct {
	SourceID  int64  `json:"source_id"`
	TargetID  int64  `json:"target_id"`
	SourceKey string `json:"source_key,omitempty"`
	TargetKey string `json:"target_key,omitempty"`
	Status    string `json:"status"`
}

// PipelineCopyResult 一次复制操作的结果
type PipelineCopyResult struct {
	PipelineCopyID   int64                  `json:"pipeline_copy_id"`
	SourceTrainingID int64                  `json:"source_training_id"`
	TargetTrainingID *int64                 `json:"target_training_id"`
	CopiedByUsername string                 `json:"copied_by_username"`
	CopyForUsername  string                 `json:"copy_for_username"`
	CopyDate         string                 `json:"copy_date"`
	Status           string                 `json:"status"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	Mappings         map[string]MappingInfo `json:"mappings"` // 按实体类型索引
}

// PipelineCopyListItem 复制记录列表项
type PipelineCopyListItem struct {
	PipelineCopyID   int64  `json:"pipeline_copy_id"`
	SourceTrainingID int64  `json:"source_training_id"`
	TargetTrainingID *int64 `json:"target_training_id"`
	CopiedByUsername string `json:"copied_by_username"`
	CopyForUsername  string `json:"copy_for_username"`
	CopyDate         string `json:"copy_date"`
	Status           string `json:"status"`
	ErrorMessage     string `json:"error_message,omitempty"`
}
