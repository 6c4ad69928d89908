package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/repository"
	"github.com/shareml/shareml_go_server/internal/testutil"
)

func setupCopyService(t *testing.T, db *gorm.DB, store *testutil.FakeObjectStore) *PipelineCopyService {
	t.Helper()

	return NewPipelineCopyService(
		repository.NewTrainingRepository(db),
		repository.NewUserRepository(db),
		repository.NewGroupRepository(db),
		repository.NewDatasetRepository(db),
		repository.NewDatasetConfigRepository(db),
		repository.NewAlgorithmConfigRepository(db),
		repository.NewCustomAlgorithmConfigRepository(db),
		repository.NewModelRepository(db),
		repository.NewPipelineCopyRepository(db),
		store,
		nil, // 不推送进度
		nil,
	)
}

// pipelineFixture 一条完整的已训练流水线及其 OSS 对象
type pipelineFixture struct {
	owner         *model.User
	dataset       *model.Dataset
	datasetConfig *model.DatasetConfiguration
	training      *model.Training
	trainedModel  *model.Model
	datasetKey    string
}

// seedPipeline 建一条 dataset → config → 算法配置 → training → model 的流水线，
// 并把数据集文件和模型产物放进对象存储
func seedPipeline(t *testing.T, db *gorm.DB, store *testutil.FakeObjectStore, owner *model.User) *pipelineFixture {
	t.Helper()

	dataset := testutil.TestDataset(t, db, owner.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	algoConfig := testutil.TestAlgorithmConfig(t, db, algorithm.ID, owner.ID)
	training := testutil.TestTraining(t, db, owner.ID, datasetConfig.ID,
		testutil.WithAlgorithmConfig(algoConfig.ID))
	trainedModel := testutil.TestModel(t, db, training.ID)

	datasetKey := store.ExtractObjectKey(dataset.StorageURL)
	store.Put(datasetKey, []byte("csv-data"))
	store.Put(trainedModel.WeightsKey, []byte("weights"))
	store.Put(trainedModel.MetricsKey, []byte("metrics"))

	return &pipelineFixture{
		owner:         owner,
		dataset:       dataset,
		datasetConfig: datasetConfig,
		training:      training,
		trainedModel:  trainedModel,
		datasetKey:    datasetKey,
	}
}

func TestCopyPipeline_FullPipeline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	fixture := seedPipeline(t, db, store, alice)

	result, err := service.CopyPipeline(fixture.training.ID, "bob", alice.ID)
	require.NoError(t, err)

	assert.Equal(t, model.CopyStatusCompleted, result.Status)
	assert.Equal(t, "alice", result.CopiedByUsername)
	assert.Equal(t, "bob", result.CopyForUsername)
	require.NotNil(t, result.TargetTrainingID)

	// 五个实体各有一条 COPIED 映射
	require.Len(t, result.Mappings, 5)
	for _, entityType := range []string{
		model.EntityTypeDataset,
		model.EntityTypeDatasetConfig,
		model.EntityTypeAlgorithmConfig,
		model.EntityTypeTraining,
		model.EntityTypeModel,
	} {
		mapping, ok := result.Mappings[entityType]
		require.True(t, ok, "missing mapping for %s", entityType)
		assert.Equal(t, model.MappingStatusCopied, mapping.Status)
		assert.NotZero(t, mapping.TargetID)
	}

	// 新数据集属于 bob，对象在目录内且带 COPY 前缀和目标用户名
	var newDataset model.Dataset
	require.NoError(t, db.First(&newDataset, result.Mappings[model.EntityTypeDataset].TargetID).Error)
	assert.Equal(t, bob.ID, newDataset.UserID)
	newDatasetKey := result.Mappings[model.EntityTypeDataset].TargetKey
	assert.True(t, strings.HasPrefix(newDatasetKey, "datasets/"))
	assert.Contains(t, newDatasetKey, "COPY_")
	assert.Contains(t, newDatasetKey, "_bob_")
	assert.True(t, store.Exists(newDatasetKey))
	assert.Contains(t, newDataset.Description, "复制自数据集")

	// 新训练属于 bob，状态与结果摘要原样带走
	var newTraining model.Training
	require.NoError(t, db.First(&newTraining, *result.TargetTrainingID).Error)
	assert.Equal(t, bob.ID, newTraining.UserID)
	assert.Equal(t, fixture.training.Status, newTraining.Status)
	assert.Equal(t, fixture.training.ResultSummary, newTraining.ResultSummary)
	require.NotNil(t, newTraining.AlgorithmConfigurationID)
	assert.Nil(t, newTraining.CustomAlgorithmConfigurationID)

	// 训练完成后才指回新模型（复制期间不会出现半成品引用）
	require.NotNil(t, newTraining.ModelID)
	var newModel model.Model
	require.NoError(t, db.First(&newModel, *newTraining.ModelID).Error)
	assert.Equal(t, newTraining.ID, newModel.TrainingID)
	assert.Equal(t, "Copy of "+fixture.trainedModel.DisplayName, newModel.DisplayName)
	assert.True(t, store.Exists(newModel.WeightsKey))
	assert.True(t, store.Exists(newModel.MetricsKey))

	// 审计：发起 + 完成
	copyRepo := repository.NewPipelineCopyRepository(db)
	history, err := copyRepo.ListHistory(result.PipelineCopyID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.CopyActionInitiated, history[0].Action)
	assert.Equal(t, model.CopyActionCompleted, history[1].Action)
}

func TestCopyPipeline_SelfCopyTargets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	fixture := seedPipeline(t, db, store, alice)

	// 不填目标用户名 = 复制给自己
	result, err := service.CopyPipeline(fixture.training.ID, "", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.CopyForUsername)

	// 填自己的用户名与缺省等价，同一目标触发幂等守卫
	_, err = service.CopyPipeline(fixture.training.ID, "alice", alice.ID)
	assert.ErrorIs(t, err, ErrCopyConflict)
}

func TestCopyPipeline_Conflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"))
	fixture := seedPipeline(t, db, store, alice)

	_, err := service.CopyPipeline(fixture.training.ID, "bob", alice.ID)
	require.NoError(t, err)

	_, err = service.CopyPipeline(fixture.training.ID, "bob", alice.ID)
	assert.ErrorIs(t, err, ErrCopyConflict)

	// 换一个目标用户不受影响
	testutil.TestUser(t, db, testutil.WithUsername("carol"))
	_, err = service.CopyPipeline(fixture.training.ID, "carol", alice.ID)
	assert.NoError(t, err)
}

func TestCopyPipeline_Permission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	mallory := testutil.TestUser(t, db, testutil.WithUsername("mallory"))
	admin := testutil.TestUser(t, db, testutil.WithUsername("root"), testutil.WithRole(model.RoleAdmin))
	fixture := seedPipeline(t, db, store, alice)

	// 非属主、未被分享：拒绝
	_, err := service.CopyPipeline(fixture.training.ID, "", mallory.ID)
	assert.ErrorIs(t, err, ErrCopyPermission)

	// 模型被分享后允许
	require.NoError(t, db.Create(&model.ModelShare{
		ModelID: fixture.trainedModel.ID,
		UserID:  mallory.ID,
	}).Error)
	_, err = service.CopyPipeline(fixture.training.ID, "", mallory.ID)
	assert.NoError(t, err)

	// 管理员始终允许
	_, err = service.CopyPipeline(fixture.training.ID, "", admin.ID)
	assert.NoError(t, err)
}

func TestCopyPipeline_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))

	_, err := service.CopyPipeline(99999, "", alice.ID)
	assert.ErrorIs(t, err, ErrTrainingNotFound)

	fixture := seedPipeline(t, db, store, alice)
	_, err = service.CopyPipeline(fixture.training.ID, "nobody", alice.ID)
	assert.ErrorIs(t, err, ErrTargetUserNotFound)
}

func TestCopyPipeline_RollbackOnModelArtifactFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"))
	fixture := seedPipeline(t, db, store, alice)

	// 数据集拷贝成功，权重文件拷贝失败
	store.FailCopyTo("weights")

	_, err := service.CopyPipeline(fixture.training.ID, "bob", alice.ID)
	require.ErrorIs(t, err, ErrCopyFailed)

	copyRepo := repository.NewPipelineCopyRepository(db)

	// 记录置为 ROLLED_BACK 并带失败原因
	var record model.PipelineCopy
	require.NoError(t, db.Where("source_training_id = ?", fixture.training.ID).First(&record).Error)
	assert.Equal(t, model.CopyStatusRolledBack, record.Status)
	assert.NotEmpty(t, record.ErrorMessage)
	assert.Nil(t, record.TargetTrainingID)

	// 失败前落的映射全部改写为 FAILED
	mappings, err := copyRepo.ListMappings(record.ID)
	require.NoError(t, err)
	require.NotEmpty(t, mappings)
	for _, m := range mappings {
		assert.Equal(t, model.MappingStatusFailed, m.Status)
	}

	// 已复制的数据集对象被清理
	deleted := store.DeletedKeys()
	require.Len(t, deleted, 1)
	assert.Contains(t, deleted[0], "COPY_")
	assert.False(t, store.Exists(deleted[0]))

	// 审计：发起 + 回滚
	history, err := copyRepo.ListHistory(record.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.CopyActionInitiated, history[0].Action)
	assert.Equal(t, model.CopyActionRolledBack, history[1].Action)
}

func TestCopyPipeline_RetryAfterRollback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"))

	// 数据集对象缺失：第一步就失败
	dataset := testutil.TestDataset(t, db, alice.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	algoConfig := testutil.TestAlgorithmConfig(t, db, algorithm.ID, alice.ID)
	training := testutil.TestTraining(t, db, alice.ID, datasetConfig.ID,
		testutil.WithAlgorithmConfig(algoConfig.ID))

	_, err := service.CopyPipeline(training.ID, "bob", alice.ID)
	require.ErrorIs(t, err, ErrCopyFailed)

	// ROLLED_BACK 记录不触发幂等守卫，补齐对象后重试成功
	store.Put(store.ExtractObjectKey(dataset.StorageURL), []byte("csv-data"))
	result, err := service.CopyPipeline(training.ID, "bob", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CopyStatusCompleted, result.Status)
}

func TestCopyPipeline_CustomAlgorithmConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))

	dataset := testutil.TestDataset(t, db, alice.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	customConfig := testutil.TestCustomAlgorithmConfig(t, db, algorithm.ID, alice.ID)
	training := testutil.TestTraining(t, db, alice.ID, datasetConfig.ID,
		testutil.WithCustomAlgorithmConfig(customConfig.ID))
	store.Put(store.ExtractObjectKey(dataset.StorageURL), []byte("csv-data"))

	result, err := service.CopyPipeline(training.ID, "bob", alice.ID)
	require.NoError(t, err)

	mapping, ok := result.Mappings[model.EntityTypeCustomAlgorithmConfig]
	require.True(t, ok)
	_, hasStandard := result.Mappings[model.EntityTypeAlgorithmConfig]
	assert.False(t, hasStandard)

	var newConfig model.CustomAlgorithmConfiguration
	require.NoError(t, db.First(&newConfig, mapping.TargetID).Error)
	assert.Equal(t, bob.ID, newConfig.UserID)
	assert.Equal(t, algorithm.ID, newConfig.AlgorithmID)

	var newTraining model.Training
	require.NoError(t, db.First(&newTraining, *result.TargetTrainingID).Error)
	require.NotNil(t, newTraining.CustomAlgorithmConfigurationID)
	assert.Nil(t, newTraining.AlgorithmConfigurationID)
}

func TestCopyPipeline_TrainingWithoutModel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"))

	dataset := testutil.TestDataset(t, db, alice.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	algoConfig := testutil.TestAlgorithmConfig(t, db, algorithm.ID, alice.ID)
	training := testutil.TestTraining(t, db, alice.ID, datasetConfig.ID,
		testutil.WithAlgorithmConfig(algoConfig.ID))
	store.Put(store.ExtractObjectKey(dataset.StorageURL), []byte("csv-data"))

	result, err := service.CopyPipeline(training.ID, "bob", alice.ID)
	require.NoError(t, err)

	assert.Equal(t, model.CopyStatusCompleted, result.Status)
	assert.Len(t, result.Mappings, 4)
	_, hasModel := result.Mappings[model.EntityTypeModel]
	assert.False(t, hasModel)

	var newTraining model.Training
	require.NoError(t, db.First(&newTraining, *result.TargetTrainingID).Error)
	assert.Nil(t, newTraining.ModelID)
}

func TestCopyPipelineToGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	carol := testutil.TestUser(t, db, testutil.WithUsername("carol"))
	group := testutil.TestGroup(t, db, alice.ID, bob.ID, carol.ID)
	fixture := seedPipeline(t, db, store, alice)

	results, err := service.CopyPipelineToGroup(fixture.training.ID, group.ID, alice.ID)
	require.NoError(t, err)

	// 发起人自己被跳过
	require.Len(t, results, 2)
	targets := []string{results[0].CopyForUsername, results[1].CopyForUsername}
	assert.ElementsMatch(t, []string{"bob", "carol"}, targets)

	// 再次分发：全体冲突被跳过，批次本身不报错
	results, err = service.CopyPipelineToGroup(fixture.training.ID, group.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCopyPipelineToGroup_PartialConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"))
	carol := testutil.TestUser(t, db, testutil.WithUsername("carol"))
	group := testutil.TestGroup(t, db, alice.ID, carol.ID)
	fixture := seedPipeline(t, db, store, alice)

	// bob 不在组里；carol 已收到过复制
	_, err := service.CopyPipeline(fixture.training.ID, "carol", alice.ID)
	require.NoError(t, err)

	results, err := service.CopyPipelineToGroup(fixture.training.ID, group.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCopyPipelineToGroup_Permission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	group := testutil.TestGroup(t, db, alice.ID, bob.ID)
	fixture := seedPipeline(t, db, store, alice)

	// 普通成员不能向全组分发
	_, err := service.CopyPipelineToGroup(fixture.training.ID, group.ID, bob.ID)
	assert.ErrorIs(t, err, ErrCopyPermission)

	// 团队不存在
	_, err = service.CopyPipelineToGroup(fixture.training.ID, 99999, alice.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGetWithMappings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"))
	fixture := seedPipeline(t, db, store, alice)

	created, err := service.CopyPipeline(fixture.training.ID, "bob", alice.ID)
	require.NoError(t, err)

	fetched, err := service.GetWithMappings(created.PipelineCopyID)
	require.NoError(t, err)
	assert.Equal(t, created.PipelineCopyID, fetched.PipelineCopyID)
	assert.Equal(t, "alice", fetched.CopiedByUsername)
	assert.Equal(t, "bob", fetched.CopyForUsername)
	assert.Equal(t, model.CopyStatusCompleted, fetched.Status)
	assert.Len(t, fetched.Mappings, 5)

	_, err = service.GetWithMappings(99999)
	assert.ErrorIs(t, err, ErrCopyRecordNotFound)
}

func TestListInitiatedAndReceived(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := testutil.NewFakeObjectStore()
	service := setupCopyService(t, db, store)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	fixture := seedPipeline(t, db, store, alice)

	_, err := service.CopyPipeline(fixture.training.ID, "bob", alice.ID)
	require.NoError(t, err)

	initiated, err := service.ListInitiatedBy(alice.ID)
	require.NoError(t, err)
	require.Len(t, initiated, 1)
	assert.Equal(t, "alice", initiated[0].CopiedByUsername)
	assert.Equal(t, "bob", initiated[0].CopyForUsername)

	received, err := service.ListReceivedBy(bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, fixture.training.ID, received[0].SourceTrainingID)

	// 发起人没有收到，接收人没有发起
	none, err := service.ListReceivedBy(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
	none, err = service.ListInitiatedBy(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
