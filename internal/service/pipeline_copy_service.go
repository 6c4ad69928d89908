package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/config"
	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/pkg/oss"
	"github.com/shareml/shareml_go_server/internal/pkg/pubsub"
	"github.com/shareml/shareml_go_server/internal/repository"
)

var (
	ErrTrainingNotFound   = errors.New("训练记录不存在")
	ErrTargetUserNotFound = errors.New("目标用户不存在")
	ErrGroupNotFound      = errors.New("团队不存在")
	ErrCopyPermission     = errors.New("无权复制此流水线")
	ErrCopyConflict       = errors.New("该流水线已复制给此用户")
	ErrCopyFailed         = errors.New("流水线复制失败")
	ErrCopyRecordNotFound = errors.New("复制记录不存在")
)

// ObjectStore 复制引擎依赖的对象存储网关
type ObjectStore interface {
	Copy(sourceKey, targetKey string) error
	Delete(objectKey string) error
	ExtractObjectKey(url string) string
	GetURL(objectKey string) string
}

type PipelineCopyService struct {
	trainingRepo        *repository.TrainingRepository
	userRepo            *repository.UserRepository
	groupRepo           *repository.GroupRepository
	datasetRepo         *repository.DatasetRepository
	datasetConfigRepo   *repository.DatasetConfigRepository
	algorithmConfigRepo *repository.AlgorithmConfigRepository
	customConfigRepo    *repository.CustomAlgorithmConfigRepository
	modelRepo           *repository.ModelRepository
	copyRepo            *repository.PipelineCopyRepository
	store               ObjectStore
	publisher           *pubsub.Publisher // 可为 nil，进度推送尽力而为
	cfg                 *config.Config
}

func NewPipelineCopyService(
	trainingRepo *repository.TrainingRepository,
	userRepo *repository.UserRepository,
	groupRepo *repository.GroupRepository,
	datasetRepo *repository.DatasetRepository,
	datasetConfigRepo *repository.DatasetConfigRepository,
	algorithmConfigRepo *repository.AlgorithmConfigRepository,
	customConfigRepo *repository.CustomAlgorithmConfigRepository,
	modelRepo *repository.ModelRepository,
	copyRepo *repository.PipelineCopyRepository,
	store ObjectStore,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *PipelineCopyService {
	return &PipelineCopyService{
		trainingRepo:        trainingRepo,
		userRepo:            userRepo,
		groupRepo:           groupRepo,
		datasetRepo:         datasetRepo,
		datasetConfigRepo:   datasetConfigRepo,
		algorithmConfigRepo: algorithmConfigRepo,
		customConfigRepo:    customConfigRepo,
		modelRepo:           modelRepo,
		copyRepo:            copyRepo,
		store:               store,
		publisher:           publisher,
		cfg:                 cfg,
	}
}

// copyState 一次复制过程中的累积状态
type copyState struct {
	source   *model.Training
	target   *model.User
	actor    *model.User
	record   *model.PipelineCopy
	mappings map[string]dto.MappingInfo

	// 补偿清理用：已写入对象存储的新 key
	copiedObjectKeys []string

	newDataset       *model.Dataset
	newDatasetConfig *model.DatasetConfiguration
	newTraining      *model.Training
}

// copyStep 复制流程的一步：名称 + 前向操作。
// 补偿统一由 copiedObjectKeys 累加器和映射状态改写驱动（见 rollback）。
type copyStep struct {
	name    string
	forward func(st *copyState) error
}

// CopyPipeline 把一条已训练的流水线（数据集→数据集配置→算法配置→训练→模型）
// 复制成目标用户名下的一套独立副本。
//
// 权限：管理员、源训练属主、或源训练模型的被分享者。
// 幂等守卫：同一 (源训练, 目标用户) 已有 COMPLETED 复制则返回 ErrCopyConflict。
// 任何一步失败都会触发回滚：删除已复制的对象、映射改写为 FAILED、
// 记录置为 ROLLED_BACK；步骤 3-7 已插入的新行不删除（已知限制，孤行仅能
// 通过 FAILED 映射追溯）。
func (s *PipelineCopyService) CopyPipeline(sourceTrainingID int64, targetUsername string, actorID int64) (*dto.PipelineCopyResult, error) {
	actor, err := s.userRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}

	source, err := s.trainingRepo.GetByIDFull(sourceTrainingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	// 权限检查
	allowed, err := s.canCopy(source, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrCopyPermission
	}

	// 目标解析：缺省或等于自己的用户名都视为复制给自己
	target := actor
	if targetUsername != "" && targetUsername != actor.Username {
		target, err = s.userRepo.GetByUsername(targetUsername)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTargetUserNotFound
			}
			return nil, err
		}
	}

	// 幂等守卫（读后写，非原子，见 DESIGN.md）
	exists, err := s.copyRepo.ExistsCompleted(source.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCopyConflict
	}

	// 创建复制记录并落第一条审计
	record := &model.PipelineCopy{
		SourceTrainingID: source.ID,
		CopiedByID:       actor.ID,
		CopyForID:        target.ID,
		Status:           model.CopyStatusInProgress,
	}
	if err := s.copyRepo.Create(record); err != nil {
		return nil, err
	}
	s.addHistory(record.ID, model.CopyActionInitiated, actor.ID,
		fmt.Sprintf("开始复制训练 #%d 给用户 %s", source.ID, target.Username))

	st := &copyState{
		source:   source,
		target:   target,
		actor:    actor,
		record:   record,
		mappings: make(map[string]dto.MappingInfo),
	}

	steps := []copyStep{
		{pubsub.StepDataset, s.copyDataset},
		{pubsub.StepDatasetConfig, s.copyDatasetConfig},
		{pubsub.StepAlgorithmConfig, s.copyAlgorithmConfig},
		{pubsub.StepTraining, s.copyTraining},
		{pubsub.StepModel, s.copyModel},
	}

	for _, step := range steps {
		s.publishProgress(st, step.name, "processing", "")
		if err := step.forward(st); err != nil {
			return nil, s.rollback(st, step.name, err)
		}
	}

	// 收尾：写目标训练、置 COMPLETED
	record.TargetTrainingID = &st.newTraining.ID
	record.Status = model.CopyStatusCompleted
	if err := s.copyRepo.Update(record); err != nil {
		return nil, s.rollback(st, pubsub.StepDone, err)
	}
	s.addHistory(record.ID, model.CopyActionCompleted, actor.ID,
		fmt.Sprintf("复制完成，新训练 #%d", st.newTraining.ID))
	s.publishProgress(st, pubsub.StepDone, "completed", "")

	return s.buildResult(record, actor.Username, target.Username, st.mappings), nil
}

// canCopy 复制权限：管理员、属主、或模型被分享者
func (s *PipelineCopyService) canCopy(source *model.Training, actor *model.User) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if source.UserID == actor.ID {
		return true, nil
	}
	if source.ModelID != nil {
		return s.modelRepo.HasShare(*source.ModelID, actor.ID)
	}
	return false, nil
}

// copyDataset 复制数据集对象与记录
func (s *PipelineCopyService) copyDataset(st *copyState) error {
	cfg := st.source.DatasetConfiguration
	if cfg == nil || cfg.Dataset == nil {
		return fmt.Errorf("训练 #%d 缺少数据集配置", st.source.ID)
	}
	source := cfg.Dataset

	sourceKey := s.store.ExtractObjectKey(source.StorageURL)
	targetKey := oss.CopyObjectKey(sourceKey, st.target.Username)

	if err := s.storeCopy(sourceKey, targetKey); err != nil {
		return err
	}
	st.copiedObjectKeys = append(st.copiedObjectKeys, targetKey)

	newDataset := &model.Dataset{
		UserID:           st.target.ID,
		StorageURL:       s.store.GetURL(targetKey),
		OriginalFilename: source.OriginalFilename,
		DisplayFilename:  source.DisplayFilename,
		Size:             source.Size,
		ContentType:      source.ContentType,
		Accessibility:    source.Accessibility,
		CategoryID:       source.CategoryID,
		Description:      fmt.Sprintf("%s（复制自数据集 #%d）", source.Description, source.ID),
	}
	if err := s.datasetRepo.Create(newDataset); err != nil {
		return err
	}
	st.newDataset = newDataset

	return s.addMapping(st, model.EntityTypeDataset, source.ID, newDataset.ID, sourceKey, targetKey)
}

// copyDatasetConfig 复制特征列/目标列选择，指向新数据集
func (s *PipelineCopyService) copyDatasetConfig(st *copyState) error {
	source := st.source.DatasetConfiguration

	newConfig := &model.DatasetConfiguration{
		DatasetID:      st.newDataset.ID,
		FeatureColumns: source.FeatureColumns,
		TargetColumn:   source.TargetColumn,
		Status:         source.Status,
	}
	if err := s.datasetConfigRepo.Create(newConfig); err != nil {
		return err
	}
	st.newDatasetConfig = newConfig

	return s.addMapping(st, model.EntityTypeDatasetConfig, source.ID, newConfig.ID, "", "")
}

// copyAlgorithmConfig 复制训练设置的那一种算法配置。
// 自定义算法的子参数不复制（已知限制）。
func (s *PipelineCopyService) copyAlgorithmConfig(st *copyState) error {
	choice := st.source.AlgorithmChoice()
	if choice.ConfigID == 0 {
		return fmt.Errorf("训练 #%d 未设置算法配置", st.source.ID)
	}

	if choice.Custom {
		source := st.source.CustomAlgorithmConfiguration
		newConfig := &model.CustomAlgorithmConfiguration{
			AlgorithmID: source.AlgorithmID,
			UserID:      st.target.ID,
		}
		if err := s.customConfigRepo.Create(newConfig); err != nil {
			return err
		}
		st.newTraining = &model.Training{CustomAlgorithmConfigurationID: &newConfig.ID}
		return s.addMapping(st, model.EntityTypeCustomAlgorithmConfig, source.ID, newConfig.ID, "", "")
	}

	source := st.source.AlgorithmConfiguration
	newConfig := &model.AlgorithmConfiguration{
		AlgorithmID: source.AlgorithmID,
		UserID:      st.target.ID,
		Options:     source.Options,
	}
	if err := s.algorithmConfigRepo.Create(newConfig); err != nil {
		return err
	}
	st.newTraining = &model.Training{AlgorithmConfigurationID: &newConfig.ID}
	return s.addMapping(st, model.EntityTypeAlgorithmConfig, source.ID, newConfig.ID, "", "")
}

// copyTraining 创建新训练记录，时间戳/状态/结果摘要原样带走
func (s *PipelineCopyService) copyTraining(st *copyState) error {
	newTraining := st.newTraining // copyAlgorithmConfig 已放入算法配置外键
	newTraining.UserID = st.target.ID
	newTraining.DatasetConfigurationID = st.newDatasetConfig.ID
	newTraining.Status = st.source.Status
	newTraining.StartedAt = st.source.StartedAt
	newTraining.FinishedAt = st.source.FinishedAt
	newTraining.ResultSummary = st.source.ResultSummary

	if err := s.trainingRepo.Create(newTraining); err != nil {
		return err
	}

	return s.addMapping(st, model.EntityTypeTraining, st.source.ID, newTraining.ID, "", "")
}

// copyModel 源训练有模型时，复制全部模型产物并建新模型记录
func (s *PipelineCopyService) copyModel(st *copyState) error {
	source := st.source.Model
	if source == nil {
		return nil
	}

	// 逐个复制存在的产物文件
	copyKey := func(key string) (string, error) {
		if key == "" {
			return "", nil
		}
		targetKey := oss.CopyObjectKey(key, st.target.Username)
		if err := s.storeCopy(key, targetKey); err != nil {
			return "", err
		}
		st.copiedObjectKeys = append(st.copiedObjectKeys, targetKey)
		return targetKey, nil
	}

	weightsKey, err := copyKey(source.WeightsKey)
	if err != nil {
		return err
	}
	metricsKey, err := copyKey(source.MetricsKey)
	if err != nil {
		return err
	}
	labelMappingKey, err := copyKey(source.LabelMappingKey)
	if err != nil {
		return err
	}
	featureColumnsKey, err := copyKey(source.FeatureColumnsKey)
	if err != nil {
		return err
	}

	newModel := &model.Model{
		TrainingID:        st.newTraining.ID,
		DisplayName:       "Copy of " + source.DisplayName,
		Description:       source.Description,
		CategoryID:        source.CategoryID,
		ModelType:         source.ModelType,
		Status:            source.Status,
		Accessibility:     source.Accessibility,
		WeightsKey:        weightsKey,
		MetricsKey:        metricsKey,
		LabelMappingKey:   labelMappingKey,
		FeatureColumnsKey: featureColumnsKey,
		Finalized:         source.Finalized,
		Keywords:          source.Keywords,
	}
	if newModel.Finalized {
		now := time.Now()
		newModel.FinalizedAt = &now
	}
	if err := s.modelRepo.Create(newModel); err != nil {
		return err
	}

	// 新训练指回新模型
	st.newTraining.ModelID = &newModel.ID
	if err := s.trainingRepo.Update(st.newTraining); err != nil {
		return err
	}

	// MODEL 映射只记权重文件的 key，其余产物按命名约定可推出
	return s.addMapping(st, model.EntityTypeModel, source.ID, newModel.ID, source.WeightsKey, weightsKey)
}

// rollback 补偿清理：删对象、映射改 FAILED、记录置 ROLLED_BACK。
// 清理自身绝不失败——单个对象删除出错仅记日志继续。
func (s *PipelineCopyService) rollback(st *copyState, step string, cause error) error {
	log.Printf("PipelineCopy %d: step %s failed, rolling back: %v", st.record.ID, step, cause)

	for _, key := range st.copiedObjectKeys {
		if err := s.store.Delete(key); err != nil {
			log.Printf("PipelineCopy %d: rollback delete %s failed: %v", st.record.ID, key, err)
		}
	}

	if err := s.copyRepo.MarkMappingsFailed(st.record.ID, cause.Error()); err != nil {
		log.Printf("PipelineCopy %d: rollback mark mappings failed: %v", st.record.ID, err)
	}

	st.record.Status = model.CopyStatusRolledBack
	st.record.ErrorMessage = cause.Error()
	if err := s.copyRepo.Update(st.record); err != nil {
		log.Printf("PipelineCopy %d: rollback update record failed: %v", st.record.ID, err)
	}

	s.addHistory(st.record.ID, model.CopyActionRolledBack, st.actor.ID,
		fmt.Sprintf("步骤 %s 失败：%v", step, cause))
	s.publishProgress(st, step, "failed", cause.Error())

	return fmt.Errorf("%w: %v", ErrCopyFailed, cause)
}

// memberOutcome 团队分发中单个成员的结果
type memberOutcome struct {
	username string
	result   *dto.PipelineCopyResult
	err      error
}

// CopyPipelineToGroup 把流水线复制给团队全部成员（发起人除外）。
// 单个成员的 Conflict 或失败只记日志并跳过，不中断批次；
// 只返回成功的结果，逐成员明细可从复制台账查询。
func (s *PipelineCopyService) CopyPipelineToGroup(sourceTrainingID, groupID int64, actorID int64) ([]*dto.PipelineCopyResult, error) {
	actor, err := s.userRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByIDWithMembers(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	// 权限：队长或管理员
	if group.LeaderID != actor.ID && !actor.IsAdmin() {
		return nil, ErrCopyPermission
	}

	// 成员集合 = 队长 + 成员
	members := make([]*model.User, 0, len(group.Members)+1)
	if group.Leader != nil {
		members = append(members, group.Leader)
	}
	for i := range group.Members {
		if group.Members[i].User != nil {
			members = append(members, group.Members[i].User)
		}
	}

	outcomes := make([]memberOutcome, 0, len(members))
	for _, member := range members {
		if member.ID == actor.ID {
			continue
		}

		result, err := s.CopyPipeline(sourceTrainingID, member.Username, actorID)
		outcomes = append(outcomes, memberOutcome{username: member.Username, result: result, err: err})

		switch {
		case err == nil:
		case errors.Is(err, ErrCopyConflict):
			log.Printf("Group %d: member %s already has a copy of training %d, skipped",
				groupID, member.Username, sourceTrainingID)
		default:
			log.Printf("Group %d: copy training %d to member %s failed: %v",
				groupID, sourceTrainingID, member.Username, err)
		}
	}

	results := make([]*dto.PipelineCopyResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err == nil {
			results = append(results, o.result)
		}
	}
	return results, nil
}

// GetWithMappings 按 ID 查询复制记录及全部映射
func (s *PipelineCopyService) GetWithMappings(id int64) (*dto.PipelineCopyResult, error) {
	record, err := s.copyRepo.GetByIDWithMappings(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopyRecordNotFound
		}
		return nil, err
	}

	mappings := make(map[string]dto.MappingInfo, len(record.Mappings))
	for _, m := range record.Mappings {
		mappings[m.EntityType] = dto.MappingInfo{
			SourceID:  m.SourceEntityID,
			TargetID:  m.TargetEntityID,
			SourceKey: m.SourceObjectKey,
			TargetKey: m.TargetObjectKey,
			Status:    m.Status,
		}
	}

	var copiedBy, copyFor string
	if record.CopiedBy != nil {
		copiedBy = record.CopiedBy.Username
	}
	if record.CopyFor != nil {
		copyFor = record.CopyFor.Username
	}
	return s.buildResult(record, copiedBy, copyFor, mappings), nil
}

// ListInitiatedBy 用户发起的复制记录，最新在前
func (s *PipelineCopyService) ListInitiatedBy(userID int64) ([]*dto.PipelineCopyListItem, error) {
	records, err := s.copyRepo.ListInitiatedBy(userID)
	if err != nil {
		return nil, err
	}
	return buildListItems(records), nil
}

// ListReceivedBy 复制给用户的记录，最新在前
func (s *PipelineCopyService) ListReceivedBy(userID int64) ([]*dto.PipelineCopyListItem, error) {
	records, err := s.copyRepo.ListReceivedBy(userID)
	if err != nil {
		return nil, err
	}
	return buildListItems(records), nil
}

func buildListItems(records []*model.PipelineCopy) []*dto.PipelineCopyListItem {
	items := make([]*dto.PipelineCopyListItem, len(records))
	for i, r := range records {
		item := &dto.PipelineCopyListItem{
			PipelineCopyID:   r.ID,
			SourceTrainingID: r.SourceTrainingID,
			TargetTrainingID: r.TargetTrainingID,
			CopyDate:         r.CopyDate.Format(time.RFC3339),
			Status:           r.Status,
			ErrorMessage:     r.ErrorMessage,
		}
		if r.CopiedBy != nil {
			item.CopiedByUsername = r.CopiedBy.Username
		}
		if r.CopyFor != nil {
			item.CopyForUsername = r.CopyFor.Username
		}
		items[i] = item
	}
	return items
}

func (s *PipelineCopyService) buildResult(record *model.PipelineCopy, copiedBy, copyFor string, mappings map[string]dto.MappingInfo) *dto.PipelineCopyResult {
	return &dto.PipelineCopyResult{
		PipelineCopyID:   record.ID,
		SourceTrainingID: record.SourceTrainingID,
		TargetTrainingID: record.TargetTrainingID,
		CopiedByUsername: copiedBy,
		CopyForUsername:  copyFor,
		CopyDate:         record.CopyDate.Format(time.RFC3339),
		Status:           record.Status,
		ErrorMessage:     record.ErrorMessage,
		Mappings:         mappings,
	}
}

// addMapping 落一条 COPIED 映射并记入结果集
func (s *PipelineCopyService) addMapping(st *copyState, entityType string, sourceID, targetID int64, sourceKey, targetKey string) error {
	mapping := &model.PipelineCopyMapping{
		PipelineCopyID:  st.record.ID,
		EntityType:      entityType,
		SourceEntityID:  sourceID,
		TargetEntityID:  targetID,
		SourceObjectKey: sourceKey,
		TargetObjectKey: targetKey,
		Status:          model.MappingStatusCopied,
	}
	if err := s.copyRepo.AddMapping(mapping); err != nil {
		return err
	}
	st.mappings[entityType] = dto.MappingInfo{
		SourceID:  sourceID,
		TargetID:  targetID,
		SourceKey: sourceKey,
		TargetKey: targetKey,
		Status:    model.MappingStatusCopied,
	}
	return nil
}

func (s *PipelineCopyService) addHistory(copyID int64, action string, userID int64, detail string) {
	history := &model.PipelineCopyHistory{
		PipelineCopyID: copyID,
		Action:         action,
		UserID:         userID,
		Detail:         detail,
	}
	if err := s.copyRepo.AddHistory(history); err != nil {
		// 审计失败不中断复制
		log.Printf("PipelineCopy %d: add history %s failed: %v", copyID, action, err)
	}
}

// storeCopy 带超时的对象拷贝
func (s *PipelineCopyService) storeCopy(sourceKey, targetKey string) error {
	timeout := 30 * time.Second
	if s.cfg != nil && s.cfg.OSS.OperationTimeout > 0 {
		timeout = time.Duration(s.cfg.OSS.OperationTimeout) * time.Second
	}

	done := make(chan error, 1)
	go func() {
		done <- s.store.Copy(sourceKey, targetKey)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("对象拷贝超时: %s -> %s", sourceKey, targetKey)
	}
}

func (s *PipelineCopyService) publishProgress(st *copyState, step, status, errMsg string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishProgress(context.Background(), &pubsub.CopyProgressMessage{
		UserID:           st.actor.ID,
		PipelineCopyID:   st.record.ID,
		SourceTrainingID: st.source.ID,
		Status:           status,
		Step:             step,
		Error:            errMsg,
	})
	if err != nil {
		log.Printf("PipelineCopy %d: publish progress failed: %v", st.record.ID, err)
	}
}
