package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"leaf-care-go/internal/model"
)

var ErrDigestNotFound = errors.New("reminder digest not found")

// DigestRepository 缓存每个用户最近一次生成的提醒摘要。
type DigestRepository interface {
	Save(ctx context.Context, digest model.ReminderDigest) error
	Latest(ctx context.Context, userID uint) (*model.ReminderDigest, error)
}

const digestTTL = 24 * time.Hour

type redisDigestRepository struct {
	redisClient *redis.Client
}

func NewDigestRepository(redisClient *redis.Client) DigestRepository {
	return &redisDigestRepository{redisClient: redisClient}
}

func digestKey(userID uint) string {
	return fmt.Sprintf("reminder:digest:%d", userID)
}

func (r *redisDigestRepository) Save(ctx context.Context, digest model.ReminderDigest) error {
	data, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}
	return r.redisClient.Set(ctx, digestKey(digest.UserID), data, digestTTL).Err()
}

func (r *redisDigestRepository) Latest(ctx context.Context, userID uint) (*model.ReminderDigest, error) {
	data, err := r.redisClient.Get(ctx, digestKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrDigestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get digest: %w", err)
	}
	var digest model.ReminderDigest
	if err := json.Unmarshal(data, &digest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal digest: %w", err)
	}
	return &digest, nil
}
