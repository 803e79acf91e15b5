package service

import (
	"context"
	"errors"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/reminder"
	"leaf-care-go/internal/repository"
)

// ReminderService 在请求时实时计算提醒，并读取定时任务生成的摘要。
type ReminderService interface {
	List(userID uint) (*model.ReminderList, error)
	Digest(ctx context.Context, userID uint) (*model.ReminderDigest, error)
}

type reminderService struct {
	plantRepo  repository.PlantRepository
	digestRepo repository.DigestRepository
	clock      Clock
}

// NewReminderService 创建提醒服务。digestRepo 为 nil 时摘要接口始终返回未生成。
func NewReminderService(plantRepo repository.PlantRepository, digestRepo repository.DigestRepository, clock Clock) ReminderService {
	return &reminderService{plantRepo: plantRepo, digestRepo: digestRepo, clock: clock}
}

func (s *reminderService) List(userID uint) (*model.ReminderList, error) {
	plants, err := s.plantRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	items := reminder.Compute(s.clock.Now(), plants)
	return &model.ReminderList{Reminders: items, Total: len(items)}, nil
}

func (s *reminderService) Digest(ctx context.Context, userID uint) (*model.ReminderDigest, error) {
	if s.digestRepo == nil {
		return nil, ErrDigestNotFound
	}
	d, err := s.digestRepo.Latest(ctx, userID)
	if errors.Is(err, repository.ErrDigestNotFound) {
		return nil, ErrDigestNotFound
	}
	return d, err
}
