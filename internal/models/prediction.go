package models

import "time"

// Label is the binary quality verdict for a prediction
type Label string

const (
	LabelOK Label = "OK" // Expected good unit
	LabelNG Label = "NG" // Defect predicted
)

// DefectPrediction records one model verdict.
// Timestamp is stored as an absolute UTC instant; the display time zone
// is applied only when rendering at the API boundary.
type DefectPrediction struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Probability  float64   `json:"prob_ng"` // 0-1 probability of defect
	Label        Label     `json:"label"`
	Threshold    float64   `json:"threshold"`
	ModelVersion string    `json:"model_version"`
}
