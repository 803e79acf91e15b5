package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-care-go/internal/model"
)

func TestTokenBlacklist(t *testing.T) {
	client, mr := newTestRedis(t)
	bl := NewTokenBlacklist(client)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "tok", time.Minute))
	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bl.Add(ctx, "expired", 0))
	ok, err = bl.Contains(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDigestRepository(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewDigestRepository(client)
	ctx := context.Background()

	_, err := repo.Latest(ctx, 1)
	assert.ErrorIs(t, err, ErrDigestNotFound)

	digest := model.ReminderDigest{
		UserID:    1,
		Date:      "2024-05-20",
		Reminders: []model.ReminderItem{{PlantID: 3, Type: model.ActionWater, Urgency: model.UrgencyHigh}},
		Total:     1,
	}
	require.NoError(t, repo.Save(ctx, digest))

	got, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-20", got.Date)
	require.Len(t, got.Reminders, 1)
	assert.Equal(t, uint(3), got.Reminders[0].PlantID)
}

func TestBuiltinKnowledgeRepository(t *testing.T) {
	repo := NewBuiltinKnowledgeRepository()
	list := repo.List()
	require.Len(t, list, 4)
	assert.Equal(t, "多肉浇水指南", list[0].ID)

	a, ok := repo.Get("病虫害防治")
	require.True(t, ok)
	assert.Equal(t, "植物常见病虫害防治方法", a.Title)

	_, ok = repo.Get("不存在")
	assert.False(t, ok)
}
