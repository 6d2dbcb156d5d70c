package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herdbook/internal/countdown"
	"herdbook/pkg/contracts"
)

func fixedClock(t time.Time) countdown.Clock {
	return func() time.Time { return t }
}

var saleNow = time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)

func TestCountdownServiceClassify(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	svc := NewCountdownService(fixedClock(saleNow), metrics, discardLogger())

	tests := []struct {
		target string
		bucket countdown.Bucket
		label  string
	}{
		{"2026-10-18", countdown.BucketDue, "Sale Day!"},
		{"2026-10-21", countdown.BucketImminent, "3d left"},
		{"2026-11-02", countdown.BucketUpcoming, "15d to sale"},
		{"2026-12-25", countdown.BucketScheduled, "Sale: Dec 25"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			status, err := svc.Classify(context.Background(), tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, status.Bucket)
			assert.Equal(t, tt.label, status.Label)
		})
	}

	assert.Equal(t, int64(len(tests)), counterTotal(t, reader, "herdbook_countdown_classifications_total"))
}

func TestCountdownServiceInvalidTarget(t *testing.T) {
	svc := NewCountdownService(fixedClock(saleNow), nil, discardLogger())

	for _, target := range []string{"", "next week", "2026-13-01"} {
		_, err := svc.Classify(context.Background(), target)
		assert.ErrorIs(t, err, ErrInvalidTarget, target)
		assert.ErrorIs(t, err, countdown.ErrInvalidTarget, target)
	}

	_, err := svc.Classify(context.Background(), "next week")
	assert.Contains(t, err.Error(), "want YYYY-MM-DD or RFC 3339")
}

func TestCountdownServiceBatch(t *testing.T) {
	svc := NewCountdownService(fixedClock(saleNow), nil, discardLogger())

	resp, err := svc.Batch(context.Background(), []contracts.CountdownItem{
		{ID: "lot-1", Target: "2026-10-18"},
		{ID: "lot-2", Target: "2026-10-25"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18T14:00:00Z", resp.Now)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "lot-1", resp.Results[0].ID)
	assert.Equal(t, countdown.BucketDue, resp.Results[0].Status.Bucket)
	assert.Equal(t, 7, resp.Results[1].Status.DaysRemaining)

	_, err = svc.Batch(context.Background(), []contracts.CountdownItem{
		{ID: "lot-1", Target: "2026-10-18"},
		{ID: "lot-bad", Target: "soon"},
	})
	require.ErrorIs(t, err, ErrInvalidTarget)
	assert.Contains(t, err.Error(), "lot-bad")
}

func TestCountdownServiceDefaultClock(t *testing.T) {
	svc := NewCountdownService(nil, nil, nil)
	assert.WithinDuration(t, time.Now(), svc.Now(), time.Second)
}
