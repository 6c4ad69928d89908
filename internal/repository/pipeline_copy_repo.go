package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type PipelineCopyRepository struct {
	db *gorm.DB
}

func NewPipelineCopyRepository(db *gorm.DB) *PipelineCopyRepository {
	return &PipelineCopyRepository{db: db}
}

func (r *PipelineCopyRepository) Create(copy *model.PipelineCopy) error {
	return r.db.Create(copy).Error
}

func (r *PipelineCopyRepository) Update(copy *model.PipelineCopy) error {
	return r.db.Save(copy).Error
}

// GetByIDWithMappings 加载复制记录及其全部映射
func (r *PipelineCopyRepository) GetByIDWithMappings(id int64) (*model.PipelineCopy, error) {
	var copy model.PipelineCopy
	err := r.db.
		Preload("Mappings").
		Preload("CopiedBy").
		Preload("CopyFor").
		Where("id = ?", id).First(&copy).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

// ExistsCompleted 幂等守卫：该 (源训练, 目标用户) 是否已有完成的复制。
// 检查与后续插入不在同一事务里，并发下可能双双通过（已知竞态，见 DESIGN.md）。
func (r *PipelineCopyRepository) ExistsCompleted(sourceTrainingID, copyForID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.PipelineCopy{}).
		Where("source_training_id = ? AND copy_for_id = ? AND status = ?",
			sourceTrainingID, copyForID, model.CopyStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// ListInitiatedBy 用户发起的复制记录，按时间倒序
func (r *PipelineCopyRepository) ListInitiatedBy(userID int64) ([]*model.PipelineCopy, error) {
	var copies []*model.PipelineCopy
	err := r.db.
		Preload("CopiedBy").
		Preload("CopyFor").
		Where("copied_by_id = ?", userID).
		Order("copy_date DESC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// ListReceivedBy 复制给某用户的记录，按时间倒序
func (r *PipelineCopyRepository) ListReceivedBy(userID int64) ([]*model.PipelineCopy, error) {
	var copies []*model.PipelineCopy
	err := r.db.
		Preload("CopiedBy").
		Preload("CopyFor").
		Where("copy_for_id = ?", userID).
		Order("copy_date DESC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// AddMapping 追加一条子实体映射
func (r *PipelineCopyRepository) AddMapping(mapping *model.PipelineCopyMapping) error {
	return r.db.Create(mapping).Error
}

// ListMappings 某次复制的全部映射
func (r *PipelineCopyRepository) ListMappings(pipelineCopyID int64) ([]*model.PipelineCopyMapping, error) {
	var mappings []*model.PipelineCopyMapping
	err := r.db.Where("pipeline_copy_id = ?", pipelineCopyID).
		Order("id ASC").Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// MarkMappingsFailed 回滚时把该复制已写入的映射全部改为 FAILED
func (r *PipelineCopyRepository) MarkMappingsFailed(pipelineCopyID int64, errMsg string) error {
	return r.db.Model(&model.PipelineCopyMapping{}).
		Where("pipeline_copy_id = ?", pipelineCopyID).
		Updates(map[string]interface{}{
			"status":        model.MappingStatusFailed,
			"error_message": errMsg,
		}).Error
}

// AddHistory 追加审计记录
func (r *PipelineCopyRepository) AddHistory(history *model.PipelineCopyHistory) error {
	return r.db.Create(history).Error
}

// ListHistory 某次复制的审计记录
func (r *PipelineCopyRepository) ListHistory(pipelineCopyID int64) ([]*model.PipelineCopyHistory, error) {
	var histories []*model.PipelineCopyHistory
	err := r.db.Where("pipeline_copy_id = ?", pipelineCopyID).
		Order("id ASC").Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}
