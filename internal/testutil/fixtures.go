package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), seq)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", seq),
		Email:        &email,
		PasswordHash: &passwordHash,
		Role:         model.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestGroup 创建测试群组（leader 自动成为成员之外的组长）
func TestGroup(t *testing.T, db *gorm.DB, leaderID int64, memberIDs ...int64) *model.Group {
	t.Helper()

	group := &model.Group{
		Name:     fmt.Sprintf("Test Group %d", nextSeq()),
		LeaderID: leaderID,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}

	for _, userID := range memberIDs {
		member := &model.GroupMember{
			GroupID: group.ID,
			UserID:  userID,
		}
		if err := db.Create(member).Error; err != nil {
			t.Fatalf("Failed to add test group member: %v", err)
		}
	}

	return group
}

// TestDataset 创建测试数据集
func TestDataset(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Dataset)) *model.Dataset {
	t.Helper()

	seq := nextSeq()
	dataset := &model.Dataset{
		UserID:           userID,
		StorageURL:       fmt.Sprintf("https://bucket.oss-cn-hangzhou.aliyuncs.com/datasets/%d/%d_data.csv", userID, seq),
		OriginalFilename: "data.csv",
		DisplayFilename:  "data.csv",
		Size:             1024,
		ContentType:      "text/csv",
		Accessibility:    model.AccessibilityPrivate,
	}

	for _, opt := range opts {
		opt(dataset)
	}

	if err := db.Create(dataset).Error; err != nil {
		t.Fatalf("Failed to create test dataset: %v", err)
	}

	return dataset
}

// WithStorageURL 设置数据集存储地址
func WithStorageURL(url string) func(*model.Dataset) {
	return func(d *model.Dataset) {
		d.StorageURL = url
	}
}

// TestDatasetConfig 创建测试数据集配置
func TestDatasetConfig(t *testing.T, db *gorm.DB, datasetID int64, opts ...func(*model.DatasetConfiguration)) *model.DatasetConfiguration {
	t.Helper()

	config := &model.DatasetConfiguration{
		DatasetID:      datasetID,
		FeatureColumns: model.StringArray{"age", "income"},
		TargetColumn:   "label",
		Status:         model.DatasetConfigStatusCustom,
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := db.Create(config).Error; err != nil {
		t.Fatalf("Failed to create test dataset config: %v", err)
	}

	return config
}

// TestAlgorithm 创建测试算法
func TestAlgorithm(t *testing.T, db *gorm.DB, opts ...func(*model.Algorithm)) *model.Algorithm {
	t.Helper()

	algorithm := &model.Algorithm{
		Name: fmt.Sprintf("test_algorithm_%d", nextSeq()),
		Type: "classification",
	}

	for _, opt := range opts {
		opt(algorithm)
	}

	if err := db.Create(algorithm).Error; err != nil {
		t.Fatalf("Failed to create test algorithm: %v", err)
	}

	return algorithm
}

// TestAlgorithmConfig 创建测试算法配置
func TestAlgorithmConfig(t *testing.T, db *gorm.DB, algorithmID, userID int64) *model.AlgorithmConfiguration {
	t.Helper()

	config := &model.AlgorithmConfiguration{
		AlgorithmID: algorithmID,
		UserID:      userID,
		Options:     `{"max_depth": 5}`,
	}
	if err := db.Create(config).Error; err != nil {
		t.Fatalf("Failed to create test algorithm config: %v", err)
	}

	return config
}

// TestCustomAlgorithmConfig 创建测试自定义算法配置
func TestCustomAlgorithmConfig(t *testing.T, db *gorm.DB, algorithmID, userID int64) *model.CustomAlgorithmConfiguration {
	t.Helper()

	config := &model.CustomAlgorithmConfiguration{
		AlgorithmID: algorithmID,
		UserID:      userID,
	}
	if err := db.Create(config).Error; err != nil {
		t.Fatalf("Failed to create test custom algorithm config: %v", err)
	}

	return config
}

// TestTraining 创建测试训练（默认已完成，使用标准算法配置）
func TestTraining(t *testing.T, db *gorm.DB, userID, datasetConfigID int64, opts ...func(*model.Training)) *model.Training {
	t.Helper()

	started := time.Now().Add(-time.Hour)
	finished := time.Now().Add(-30 * time.Minute)
	training := &model.Training{
		UserID:                 userID,
		DatasetConfigurationID: datasetConfigID,
		Status:                 model.TrainingStatusFinished,
		StartedAt:              &started,
		FinishedAt:             &finished,
		ResultSummary:          `{"accuracy": 0.92}`,
	}

	for _, opt := range opts {
		opt(training)
	}

	if err := db.Create(training).Error; err != nil {
		t.Fatalf("Failed to create test training: %v", err)
	}

	return training
}

// WithAlgorithmConfig 设置标准算法配置
func WithAlgorithmConfig(configID int64) func(*model.Training) {
	return func(tr *model.Training) {
		tr.AlgorithmConfigurationID = &configID
		tr.CustomAlgorithmConfigurationID = nil
	}
}

// WithCustomAlgorithmConfig 设置自定义算法配置
func WithCustomAlgorithmConfig(configID int64) func(*model.Training) {
	return func(tr *model.Training) {
		tr.CustomAlgorithmConfigurationID = &configID
		tr.AlgorithmConfigurationID = nil
	}
}

// WithTrainingStatus 设置训练状态
func WithTrainingStatus(status string) func(*model.Training) {
	return func(tr *model.Training) {
		tr.Status = status
	}
}

// TestModel 创建测试模型并回填训练的 ModelID
func TestModel(t *testing.T, db *gorm.DB, trainingID int64, opts ...func(*model.Model)) *model.Model {
	t.Helper()

	seq := nextSeq()
	m := &model.Model{
		TrainingID:  trainingID,
		DisplayName: fmt.Sprintf("Test Model %d", seq),
		ModelType:   "classification",
		Status:      model.ModelStatusAvailable,
		WeightsKey:  fmt.Sprintf("models/weights_%d.bin", seq),
		MetricsKey:  fmt.Sprintf("models/metrics_%d.json", seq),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}

	if err := db.Model(&model.Training{}).Where("id = ?", trainingID).UpdateColumn("model_id", m.ID).Error; err != nil {
		t.Fatalf("Failed to link test model to training: %v", err)
	}

	return m
}

// WithWeightsKey 设置权重文件 key
func WithWeightsKey(key string) func(*model.Model) {
	return func(m *model.Model) {
		m.WeightsKey = key
	}
}

// WithModelKeys 设置模型全部文件 key
func WithModelKeys(weights, metrics, labelMapping, featureColumns string) func(*model.Model) {
	return func(m *model.Model) {
		m.WeightsKey = weights
		m.MetricsKey = metrics
		m.LabelMappingKey = labelMapping
		m.FeatureColumnsKey = featureColumns
	}
}

// WithFinalized 标记模型已定稿
func WithFinalized() func(*model.Model) {
	return func(m *model.Model) {
		now := time.Now()
		m.Finalized = true
		m.FinalizedAt = &now
	}
}
