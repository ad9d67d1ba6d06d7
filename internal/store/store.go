package store

import (
	"sync"

	"melting-tank-backend/internal/models"
)

// PredictionStore keeps recent predictions in insertion order.
// Retention is bounded: once limit entries exist, appending drops the
// oldest. This keeps a long-running service from growing without bound
// while the ClickHouse archive keeps the full history.
type PredictionStore struct {
	mu      sync.Mutex
	limit   int
	entries []models.DefectPrediction
}

// NewPredictionStore creates an empty store retaining at most limit
// entries. A limit below 1 is raised to 1 so Append stays total.
func NewPredictionStore(limit int) *PredictionStore {
	if limit < 1 {
		limit = 1
	}
	return &PredictionStore{
		limit:   limit,
		entries: make([]models.DefectPrediction, 0, limit),
	}
}

// Append adds one prediction, evicting the oldest at the retention limit
func (s *PredictionStore) Append(prediction models.DefectPrediction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == s.limit {
		copy(s.entries, s.entries[1:])
		s.entries[len(s.entries)-1] = prediction
		return
	}
	s.entries = append(s.entries, prediction)
}

// Latest returns the most recent prediction.
// ok is false when nothing has been stored yet.
func (s *PredictionStore) Latest() (models.DefectPrediction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return models.DefectPrediction{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// RecentAverage returns the mean probability over the most recent k
// entries, or over everything if fewer exist. ok is false on an empty
// store so callers never mistake "no data" for a real average.
func (s *PredictionStore) RecentAverage(k int) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 || k <= 0 {
		return 0, false
	}

	start := len(s.entries) - k
	if start < 0 {
		start = 0
	}

	sum := 0.0
	for _, e := range s.entries[start:] {
		sum += e.Probability
	}
	return sum / float64(len(s.entries)-start), true
}

// History returns a copy of all retained predictions in insertion order.
// Each call yields a fresh slice, never a shared cursor.
func (s *PredictionStore) History() []models.DefectPrediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.DefectPrediction, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained predictions
func (s *PredictionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
