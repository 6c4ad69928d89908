package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelCopyProgress = "pipeline_copy_progress"
)

// CopyProgressMessage 流水线复制进度消息
type CopyProgressMessage struct {
	Type             string `json:"type"`
	UserID           int64  `json:"user_id"`
	PipelineCopyID   int64  `json:"pipeline_copy_id"`
	SourceTrainingID int64  `json:"source_training_id"`
	Status           string `json:"status"`
	Step             string `json:"step"`
	Progress         int    `json:"progress"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
}

// 复制阶段常量
const (
	StepDataset         = "dataset"
	StepDatasetConfig   = "dataset_config"
	StepAlgorithmConfig = "algorithm_config"
	StepTraining        = "training"
	StepModel           = "model"
	StepDone            = "done"
)

// 阶段对应的进度百分比
var StepProgress = map[string]int{
	StepDataset:         20,
	StepDatasetConfig:   35,
	StepAlgorithmConfig: 50,
	StepTraining:        65,
	StepModel:           85,
	StepDone:            100,
}

// 阶段对应的消息
var StepMessages = map[string]string{
	StepDataset:         "正在复制数据集",
	StepDatasetConfig:   "正在复制数据集配置",
	StepAlgorithmConfig: "正在复制算法配置",
	StepTraining:        "正在复制训练记录",
	StepModel:           "正在复制模型文件",
	StepDone:            "复制完成",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishProgress 发布进度消息
func (p *Publisher) PublishProgress(ctx context.Context, msg *CopyProgressMessage) error {
	msg.Type = "copy_progress"

	// 自动填充进度和消息
	if msg.Progress == 0 && msg.Step != "" {
		if progress, ok := StepProgress[msg.Step]; ok {
			msg.Progress = progress
		}
	}
	if msg.Message == "" && msg.Step != "" {
		if message, ok := StepMessages[msg.Step]; ok {
			msg.Message = message
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal progress message: %w", err)
	}

	return p.client.Publish(ctx, ChannelCopyProgress, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅进度消息，直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*CopyProgressMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelCopyProgress)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var progressMsg CopyProgressMessage
			if err := json.Unmarshal([]byte(msg.Payload), &progressMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&progressMsg)
		}
	}
}
