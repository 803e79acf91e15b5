package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"leaf-care-go/internal/model"
)

// ErrConversationNotFound 表示会话不存在。
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository 定义了会话历史的存取接口。
// 默认实现保存在进程内存中，可切换为 Redis 实现。
type ConversationRepository interface {
	Create(ctx context.Context, conv *model.Conversation) error
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
	AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error
	// ListByUser 按创建顺序返回该用户最近的 limit 个会话。
	ListByUser(ctx context.Context, userID uint, limit int) ([]model.Conversation, error)
}

// memoryConversationRepository 没有淘汰策略，进程重启后数据丢失。
type memoryConversationRepository struct {
	mu     sync.RWMutex
	convs  map[string]*model.Conversation
	byUser map[uint][]string
}

// NewMemoryConversationRepository 创建内存版会话存储。
func NewMemoryConversationRepository() ConversationRepository {
	return &memoryConversationRepository{
		convs:  make(map[string]*model.Conversation),
		byUser: make(map[uint][]string),
	}
}

func (r *memoryConversationRepository) Create(_ context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.convs[conv.ID]; exists {
		return fmt.Errorf("conversation %s already exists", conv.ID)
	}
	c := cloneConversation(*conv)
	r.convs[conv.ID] = &c
	r.byUser[conv.UserID] = append(r.byUser[conv.UserID], conv.ID)
	return nil
}

func (r *memoryConversationRepository) Get(_ context.Context, conversationID string) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	out := cloneConversation(*c)
	return &out, nil
}

func (r *memoryConversationRepository) AppendMessages(_ context.Context, conversationID string, messages ...model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	c.Messages = append(c.Messages, messages...)
	return nil
}

func (r *memoryConversationRepository) ListByUser(_ context.Context, userID uint, limit int) ([]model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := tail(r.byUser[userID], limit)
	out := make([]model.Conversation, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneConversation(*r.convs[id]))
	}
	return out, nil
}

func cloneConversation(c model.Conversation) model.Conversation {
	c.Messages = append([]model.ChatMessage(nil), c.Messages...)
	return c
}

func tail[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

const conversationTTL = 7 * 24 * time.Hour

type redisConversationRepository struct {
	redisClient *redis.Client
}

// NewRedisConversationRepository 创建 Redis 版会话存储，会话 7 天未更新后过期。
func NewRedisConversationRepository(redisClient *redis.Client) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient}
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

func userConversationsKey(userID uint) string {
	return fmt.Sprintf("user:%d:conversations", userID)
}

func (r *redisConversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	if err := r.save(ctx, conv); err != nil {
		return err
	}
	key := userConversationsKey(conv.UserID)
	pipe := r.redisClient.TxPipeline()
	pipe.RPush(ctx, key, conv.ID)
	pipe.Expire(ctx, key, conversationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index conversation: %w", err)
	}
	return nil
}

func (r *redisConversationRepository) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	data, err := r.redisClient.Get(ctx, conversationKey(conversationID)).Bytes()
	if err == redis.Nil {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

// 乐观锁重试次数
const maxAppendRetries = 10

// AppendMessages 使用 WATCH 保证并发追加不会互相覆盖。
func (r *redisConversationRepository) AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error {
	key := conversationKey(conversationID)
	appendFn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrConversationNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get conversation: %w", err)
		}
		var conv model.Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			return fmt.Errorf("failed to unmarshal conversation: %w", err)
		}
		conv.Messages = append(conv.Messages, messages...)
		updated, err := json.Marshal(&conv)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, conversationTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxAppendRetries; i++ {
		err := r.redisClient.Watch(ctx, appendFn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to append conversation %s: too many concurrent writers", conversationID)
}

func (r *redisConversationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Conversation, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	ids, err := r.redisClient.LRange(ctx, userConversationsKey(userID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	out := make([]model.Conversation, 0, len(ids))
	for _, id := range ids {
		conv, err := r.Get(ctx, id)
		if errors.Is(err, ErrConversationNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *conv)
	}
	return out, nil
}

func (r *redisConversationRepository) save(ctx context.Context, conv *model.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := r.redisClient.Set(ctx, conversationKey(conv.ID), data, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to set conversation: %w", err)
	}
	return nil
}
