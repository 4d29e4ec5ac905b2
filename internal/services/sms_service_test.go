package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/store"
)

func newSMSService() (*SMSService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewSMSService(st, zap.NewNop()), st
}

func incomingSMS(id string) models.IncomingSMS {
	return models.IncomingSMS{
		ID:         id,
		FromNumber: "+46700000001",
		ToNumber:   "+46700000002",
		Message:    "hello there",
		Direction:  "incoming",
		Created:    "2024-06-15T10:30:00.123456",
	}
}

func TestSMSServiceStore(t *testing.T) {
	svc, _ := newSMSService()
	ctx := context.Background()

	sms, err := svc.Store(ctx, incomingSMS("s1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", sms.ID, "gateway id is kept as the primary key")
	assert.False(t, sms.Processed)
	assert.False(t, sms.ReplySent)

	// The zoneless gateway timestamp is read as UTC.
	want := time.Date(2024, 6, 15, 10, 30, 0, 123456000, time.UTC)
	assert.True(t, sms.Created.Equal(want), "got %v", sms.Created)

	got, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "+46700000001", got.FromNumber)
	assert.Equal(t, "hello there", got.Message)
}

func TestSMSServiceStoreBadTimestamp(t *testing.T) {
	svc, _ := newSMSService()

	in := incomingSMS("s1")
	in.Created = "not-a-timestamp"
	_, err := svc.Store(context.Background(), in)
	assert.Error(t, err)
}

func TestSMSServiceGetMissing(t *testing.T) {
	svc, _ := newSMSService()
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSMSServiceMarkProcessed(t *testing.T) {
	svc, _ := newSMSService()
	ctx := context.Background()

	_, err := svc.Store(ctx, incomingSMS("s1"))
	require.NoError(t, err)

	sms, err := svc.MarkProcessed(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sms.Processed)
	assert.NotNil(t, sms.ProcessedAt)
}

func TestSMSServiceMarkReplySent(t *testing.T) {
	svc, _ := newSMSService()
	ctx := context.Background()

	_, err := svc.Store(ctx, incomingSMS("s1"))
	require.NoError(t, err)

	sms, err := svc.MarkReplySent(ctx, "s1", ReplyGreeting)
	require.NoError(t, err)
	assert.True(t, sms.ReplySent)
	require.NotNil(t, sms.ReplyMessage)
	assert.Equal(t, ReplyGreeting, *sms.ReplyMessage)

	_, err = svc.MarkReplySent(ctx, "nope", "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSMSServiceGenerateReply(t *testing.T) {
	svc, _ := newSMSService()

	tests := []struct {
		message string
		want    string
	}{
		{"Hello there", ReplyGreeting},
		{"hi", ReplyGreeting},
		{"I need HELP", ReplyHelp},
		{"what is the status?", ReplyStatus},
		{"random text", ReplyGeneric},
		{"", ReplyGeneric},
		// Greeting wins over later categories when both match.
		{"hi, what's the status?", ReplyGreeting},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.GenerateReply(tt.message), "message %q", tt.message)
	}
}

func TestSMSServiceDelete(t *testing.T) {
	svc, _ := newSMSService()
	ctx := context.Background()

	_, err := svc.Store(ctx, incomingSMS("s1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "s1"))
	assert.ErrorIs(t, svc.Delete(ctx, "s1"), store.ErrNotFound)
}

func TestSMSServiceDeleteOlderThan(t *testing.T) {
	svc, st := newSMSService()
	ctx := context.Background()
	now := time.Now().UTC()

	put := func(id string, age time.Duration, processed bool) {
		sms := models.SMS{
			ID:         id,
			FromNumber: "+46700000001",
			ToNumber:   "+46700000002",
			Message:    "hi",
			Direction:  "incoming",
			Created:    now.Add(-age),
			Processed:  processed,
		}
		require.NoError(t, st.Put(ctx, SMSCollection, sms.ToItem()))
	}

	put("old-processed", 31*24*time.Hour, true)
	put("old-unprocessed", 31*24*time.Hour, false)
	put("recent-processed", 29*24*time.Hour, true)

	deleted, err := svc.DeleteOlderThan(ctx, now.AddDate(0, 0, -30), 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = svc.Get(ctx, "old-processed")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Get(ctx, "old-unprocessed")
	assert.NoError(t, err)
}
