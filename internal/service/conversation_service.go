package service

import (
	"context"
	"errors"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
)

const (
	recentConversations = 10
	lastMessageMaxRunes = 50
)

// ConversationService 提供会话历史查询。
type ConversationService interface {
	ListRecent(ctx context.Context, userID uint) ([]model.ConversationSummary, error)
	Get(ctx context.Context, userID uint, conversationID string) (*model.Conversation, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

// ListRecent 返回最近 10 个会话的摘要，message_count 为问答轮数。
func (s *conversationService) ListRecent(ctx context.Context, userID uint) ([]model.ConversationSummary, error) {
	convs, err := s.repo.ListByUser(ctx, userID, recentConversations)
	if err != nil {
		return nil, err
	}
	out := make([]model.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		summary := model.ConversationSummary{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			MessageCount: len(c.Messages) / 2,
		}
		if n := len(c.Messages); n > 0 {
			summary.LastMessage = truncateRunes(c.Messages[n-1].Content, lastMessageMaxRunes)
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *conversationService) Get(ctx context.Context, userID uint, conversationID string) (*model.Conversation, error) {
	conv, err := s.repo.Get(ctx, conversationID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}
