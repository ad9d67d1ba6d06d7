package ml

import (
	"fmt"

	"melting-tank-backend/internal/models"
)

// Classifier converts a defect probability into a binary label.
// The threshold is injected at construction and read-only afterwards.
type Classifier struct {
	threshold float64
}

// NewClassifier creates a classifier with the given cutoff.
// The threshold must lie strictly inside (0, 1).
func NewClassifier(threshold float64) (*Classifier, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1), got %v", threshold)
	}
	return &Classifier{threshold: threshold}, nil
}

// Classify returns NG when the probability meets or exceeds the
// threshold. Equality counts as NG.
func (c *Classifier) Classify(probability float64) models.Label {
	if probability >= c.threshold {
		return models.LabelNG
	}
	return models.LabelOK
}

// Threshold returns the configured cutoff
func (c *Classifier) Threshold() float64 {
	return c.threshold
}
