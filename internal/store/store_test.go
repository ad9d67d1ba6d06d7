package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"melting-tank-backend/internal/models"
)

func prediction(id string, prob float64) models.DefectPrediction {
	label := models.LabelOK
	if prob >= 0.5 {
		label = models.LabelNG
	}
	return models.DefectPrediction{
		ID:           id,
		Timestamp:    time.Date(2025, 11, 20, 4, 48, 0, 0, time.UTC),
		Probability:  prob,
		Label:        label,
		Threshold:    0.5,
		ModelVersion: "test-1",
	}
}

func TestEmptyStore(t *testing.T) {
	s := NewPredictionStore(10)

	_, ok := s.Latest()
	assert.False(t, ok)

	_, ok = s.RecentAverage(5)
	assert.False(t, ok)

	assert.Empty(t, s.History())
	assert.Zero(t, s.Len())
}

func TestAppendAndLatest(t *testing.T) {
	s := NewPredictionStore(10)
	s.Append(prediction("a", 0.1))
	s.Append(prediction("b", 0.9))

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "b", latest.ID)
	assert.Equal(t, 2, s.Len())
}

func TestHistoryRoundTrip(t *testing.T) {
	s := NewPredictionStore(10)
	want := prediction("round-trip", 0.78)
	s.Append(want)

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, want, history[0])
}

func TestHistoryIsFreshPerCall(t *testing.T) {
	s := NewPredictionStore(10)
	s.Append(prediction("a", 0.2))

	first := s.History()
	first[0].Probability = 0.99

	second := s.History()
	assert.Equal(t, 0.2, second[0].Probability)
}

func TestRecentAverageIdenticalProbabilities(t *testing.T) {
	s := NewPredictionStore(10)
	for i := 0; i < 5; i++ {
		s.Append(prediction("x", 0.37))
	}

	avg, ok := s.RecentAverage(5)
	require.True(t, ok)
	assert.InDelta(t, 0.37, avg, 1e-12)
}

func TestRecentAverageWindowing(t *testing.T) {
	s := NewPredictionStore(10)
	s.Append(prediction("a", 0.0))
	s.Append(prediction("b", 0.4))
	s.Append(prediction("c", 0.8))

	avg, ok := s.RecentAverage(2)
	require.True(t, ok)
	assert.InDelta(t, 0.6, avg, 1e-12)

	// k larger than the store averages everything
	avg, ok = s.RecentAverage(100)
	require.True(t, ok)
	assert.InDelta(t, 0.4, avg, 1e-12)
}

func TestRetentionLimitFloor(t *testing.T) {
	// A misconfigured limit must not make Append panic
	for _, limit := range []int{0, -1} {
		s := NewPredictionStore(limit)
		s.Append(prediction("a", 0.1))
		s.Append(prediction("b", 0.9))

		assert.Equal(t, 1, s.Len(), "limit=%d", limit)
		latest, ok := s.Latest()
		require.True(t, ok)
		assert.Equal(t, "b", latest.ID)
	}
}

func TestRetentionDropsOldest(t *testing.T) {
	s := NewPredictionStore(3)
	for _, id := range []string{"a", "b", "c", "d"} {
		s.Append(prediction(id, 0.5))
	}

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "b", history[0].ID)
	assert.Equal(t, "d", history[2].ID)
}
