package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-care-go/internal/config"
	"leaf-care-go/internal/model"
	"leaf-care-go/pkg/tasks"
)

type fakeProcessor struct {
	got []tasks.ReminderDigestTask
	err error
}

func (f *fakeProcessor) Process(_ context.Context, task tasks.ReminderDigestTask) error {
	f.got = append(f.got, task)
	return f.err
}

func TestEncodeAndHandleMessage(t *testing.T) {
	task := tasks.ReminderDigestTask{
		UserID:    42,
		Date:      "2024-05-20",
		Reminders: []model.ReminderItem{{PlantID: 1, Type: model.ActionWater}},
	}
	msg, err := encodeTask(task)
	require.NoError(t, err)
	assert.Equal(t, "42", string(msg.Key))

	p := &fakeProcessor{}
	require.NoError(t, handleMessage(context.Background(), p, msg))
	require.Len(t, p.got, 1)
	assert.Equal(t, uint(42), p.got[0].UserID)
	assert.Equal(t, "2024-05-20", p.got[0].Date)
}

func TestHandleMessageFailures(t *testing.T) {
	p := &fakeProcessor{}
	bad, _ := encodeTask(tasks.ReminderDigestTask{})
	bad.Value = []byte("not json")
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, handleMessage(context.Background(), p, bad), &syntaxErr)
	assert.Empty(t, p.got)

	redisDown := errors.New("redis down")
	p.err = redisDown
	msg, err := encodeTask(tasks.ReminderDigestTask{UserID: 1})
	require.NoError(t, err)
	err = handleMessage(context.Background(), p, msg)
	assert.ErrorIs(t, err, redisDown)
	assert.Contains(t, err.Error(), "user 1")
	assert.Len(t, p.got, 1)
}

func TestBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, brokers(config.KafkaConfig{Brokers: "a:9092, b:9092,"}))
}

func TestDigestConversion(t *testing.T) {
	d := tasks.ReminderDigestTask{UserID: 3, Date: "2024-05-20"}.Digest()
	assert.Equal(t, 0, d.Total)
	assert.NotNil(t, d.Reminders)
}
