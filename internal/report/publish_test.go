package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog-bot/internal/flow"
)

type fakeRecorder struct {
	saved   []flow.CompletedRecord
	saveErr error
}

func (f *fakeRecorder) Save(ctx context.Context, rec flow.CompletedRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRecorder) Recent(ctx context.Context, userID string, n int) ([]flow.CompletedRecord, error) {
	return f.saved, nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) Publish(body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func testRecord() flow.CompletedRecord {
	return flow.CompletedRecord{
		UserID:     "79991234567",
		Work:       "work_field",
		Shift:      "shift_1",
		Hours:      "hours_8",
		RecordedAt: time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
	}
}

func TestBroadcastPublishesAfterSave(t *testing.T) {
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	b := NewBroadcastRecorder(rec, pub)

	require.NoError(t, b.Save(context.Background(), testRecord()))

	require.Len(t, rec.saved, 1)
	require.Len(t, pub.published, 1)

	var env recordEnvelope
	require.NoError(t, json.Unmarshal(pub.published[0], &env))
	assert.Equal(t, "79991234567", env.UserID)
	assert.Equal(t, "work_field", env.Work)
	assert.Equal(t, "shift_1", env.Shift)
	assert.Equal(t, "hours_8", env.Hours)
}

func TestBroadcastSkipsPublishOnSaveError(t *testing.T) {
	rec := &fakeRecorder{saveErr: errors.New("db down")}
	pub := &fakePublisher{}
	b := NewBroadcastRecorder(rec, pub)

	err := b.Save(context.Background(), testRecord())

	assert.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestBroadcastToleratesPublishError(t *testing.T) {
	rec := &fakeRecorder{}
	pub := &fakePublisher{err: errors.New("broker down")}
	b := NewBroadcastRecorder(rec, pub)

	// A broker failure must not fail or undo the save.
	require.NoError(t, b.Save(context.Background(), testRecord()))
	assert.Len(t, rec.saved, 1)
}
