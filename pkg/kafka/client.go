// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"

	"leaf-care-go/internal/config"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/tasks"
)

// TaskProcessor defines the interface for any service that can process a task.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.ReminderDigestTask) error
}

// Producer 投递提醒摘要任务。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers(cfg)...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// PublishDigest 以用户 ID 为 key 发送摘要任务，同一用户的任务落在同一分区。
func (p *Producer) PublishDigest(ctx context.Context, task tasks.ReminderDigestTask) error {
	msg, err := encodeTask(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func brokers(cfg config.KafkaConfig) []string {
	var out []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func encodeTask(task tasks.ReminderDigestTask) (kafka.Message, error) {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(task.UserID), 10)),
		Value: taskBytes,
	}, nil
}

// StartConsumer 阻塞消费摘要任务，直到 ctx 被取消。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			return
		}

		// 摘要每天重新生成，失败的任务记录后直接提交，不重试
		if err := handleMessage(ctx, processor, m); err != nil {
			log.Errorf("丢弃 Kafka 消息: offset=%d, Error: %v", m.Offset, err)
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}
}

// handleMessage 解析并处理一条消息。
func handleMessage(ctx context.Context, processor TaskProcessor, m kafka.Message) error {
	var task tasks.ReminderDigestTask
	if err := json.Unmarshal(m.Value, &task); err != nil {
		return fmt.Errorf("decode task %q: %w", string(m.Value), err)
	}
	if err := processor.Process(ctx, task); err != nil {
		return fmt.Errorf("process digest for user %d: %w", task.UserID, err)
	}
	log.Infof("提醒摘要处理成功: user=%d, offset=%d", task.UserID, m.Offset)
	return nil
}
