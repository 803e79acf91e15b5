package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/reminder"
	"leaf-care-go/internal/repository"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/metrics"
	"leaf-care-go/pkg/tasks"
)

// DigestPublisher 投递摘要任务，生产环境为 Kafka 生产者。
type DigestPublisher interface {
	PublishDigest(ctx context.Context, task tasks.ReminderDigestTask) error
}

// DigestJob 为每个有待办提醒的用户生成一份当天摘要。
type DigestJob struct {
	userRepo  repository.UserRepository
	plantRepo repository.PlantRepository
	publisher DigestPublisher
	clock     Clock
}

func NewDigestJob(userRepo repository.UserRepository, plantRepo repository.PlantRepository, publisher DigestPublisher, clock Clock) *DigestJob {
	return &DigestJob{userRepo: userRepo, plantRepo: plantRepo, publisher: publisher, clock: clock}
}

// Run 执行一次摘要生成，返回成功投递的数量。单个用户失败不会中断整体任务。
func (j *DigestJob) Run(ctx context.Context) (int, error) {
	ids, err := j.userRepo.FindAllIDs()
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	now := j.clock.Now()
	date := now.Format(model.DateLayout)
	published := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		plants, err := j.plantRepo.ListByUser(id)
		if err != nil {
			log.Errorf("读取用户 %d 的植物失败: %v", id, err)
			continue
		}
		items := reminder.Compute(now, plants)
		if len(items) == 0 {
			continue
		}

		task := tasks.ReminderDigestTask{UserID: id, Date: date, Reminders: items, GeneratedAt: now}
		if err := j.publisher.PublishDigest(ctx, task); err != nil {
			metrics.DigestsPublished.WithLabelValues("error").Inc()
			log.Errorf("投递用户 %d 的提醒摘要失败: %v", id, err)
			continue
		}
		metrics.DigestsPublished.WithLabelValues("ok").Inc()
		published++
	}
	log.Infof("提醒摘要生成完成: date=%s, users=%d, published=%d", date, len(ids), published)
	return published, nil
}

// DigestProcessor 消费摘要任务并写入缓存，实现 kafka.TaskProcessor。
type DigestProcessor struct {
	digestRepo repository.DigestRepository
}

func NewDigestProcessor(digestRepo repository.DigestRepository) *DigestProcessor {
	return &DigestProcessor{digestRepo: digestRepo}
}

func (p *DigestProcessor) Process(ctx context.Context, task tasks.ReminderDigestTask) error {
	return p.digestRepo.Save(ctx, task.Digest())
}

// localPublisher 在未启用 Kafka 时直接写入缓存。
type localPublisher struct {
	processor *DigestProcessor
}

func NewLocalDigestPublisher(processor *DigestProcessor) DigestPublisher {
	return localPublisher{processor: processor}
}

func (p localPublisher) PublishDigest(ctx context.Context, task tasks.ReminderDigestTask) error {
	return p.processor.Process(ctx, task)
}

// DigestScheduler 按 cron 表达式定时运行 DigestJob。
type DigestScheduler struct {
	cron *cron.Cron
	job  *DigestJob
}

func NewDigestScheduler(job *DigestJob, clock Clock) *DigestScheduler {
	loc := clock.Now().Location()
	return &DigestScheduler{cron: cron.New(cron.WithLocation(loc)), job: job}
}

// Start 注册摘要任务并启动调度。
func (s *DigestScheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.job.Run(context.Background()); err != nil {
			log.Error("提醒摘要任务失败", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest cron %q: %w", spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop 等待正在运行的任务结束。
func (s *DigestScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
