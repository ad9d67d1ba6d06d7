package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"melting-tank-backend/internal/ml"
	"melting-tank-backend/internal/models"
	"melting-tank-backend/internal/store"
	"melting-tank-backend/internal/window"
)

// ErrNotReady is returned by Predict while the window is still warming
// up. It signals "insufficient data", not a failure.
var ErrNotReady = errors.New("sensor window not yet full")

// Inferencer produces a defect probability for a full reading sequence
type Inferencer interface {
	Infer(readings []models.SensorReading) (float64, error)
	Version() string
}

// Archiver persists readings and predictions durably.
// Archive writes are best effort: a failed write is logged, never
// propagated into the prediction path.
type Archiver interface {
	SaveReading(reading *models.SensorReading) error
	SavePrediction(prediction *models.DefectPrediction) error
}

// Notifier sends an out-of-band alert when a defect is predicted
type Notifier interface {
	NotifyDefect(prediction models.DefectPrediction)
}

// PredictionService orchestrates the prediction pipeline: window
// snapshot, inference, classification, timestamping, storage.
// It has two logical states: warming (window not yet full) and ready.
// Once ready it stays ready, the window content just keeps sliding.
type PredictionService struct {
	window     *window.SensorWindow
	predictor  Inferencer
	classifier *ml.Classifier
	store      *store.PredictionStore
	archive    Archiver
	notifier   Notifier

	// Input channel from the ingestion transport
	ReadingChan chan *models.SensorReading
}

// Config holds construction parameters for the prediction service
type Config struct {
	WindowCapacity  int
	ReadingChanSize int
}

// NewPredictionService wires the pipeline. archive and notifier may be
// nil when persistence or alerting is disabled.
func NewPredictionService(
	predictor Inferencer,
	classifier *ml.Classifier,
	predStore *store.PredictionStore,
	archive Archiver,
	notifier Notifier,
	cfg Config,
) *PredictionService {
	return &PredictionService{
		window:      window.NewSensorWindow(cfg.WindowCapacity),
		predictor:   predictor,
		classifier:  classifier,
		store:       predStore,
		archive:     archive,
		notifier:    notifier,
		ReadingChan: make(chan *models.SensorReading, cfg.ReadingChanSize),
	}
}

// Predict runs one inference over the current window contents.
// Returns ErrNotReady while warming up. An inference failure is
// reported and nothing is stored; it is not retried because the same
// window would fail the same way.
func (s *PredictionService) Predict() (models.DefectPrediction, error) {
	if !s.window.Ready() {
		return models.DefectPrediction{}, ErrNotReady
	}

	// Snapshot first so inference runs without holding the window lock
	snapshot := s.window.Snapshot()

	prob, err := s.predictor.Infer(snapshot)
	if err != nil {
		log.Printf("Inference failed over window %+v: %v", snapshot, err)
		return models.DefectPrediction{}, fmt.Errorf("inference failed: %w", err)
	}

	prediction := models.DefectPrediction{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Probability:  prob,
		Label:        s.classifier.Classify(prob),
		Threshold:    s.classifier.Threshold(),
		ModelVersion: s.predictor.Version(),
	}

	s.store.Append(prediction)

	if s.archive != nil {
		if err := s.archive.SavePrediction(&prediction); err != nil {
			log.Printf("Error archiving prediction %s: %v", prediction.ID, err)
		}
	}

	if prediction.Label == models.LabelNG && s.notifier != nil {
		go s.notifier.NotifyDefect(prediction)
	}

	return prediction, nil
}

// Ready reports whether the window holds a full sequence
func (s *PredictionService) Ready() bool {
	return s.window.Ready()
}

// WindowLen returns the current number of buffered readings
func (s *PredictionService) WindowLen() int {
	return s.window.Len()
}

// WindowCapacity returns the model's required sequence length
func (s *PredictionService) WindowCapacity() int {
	return s.window.Capacity()
}

// Store exposes the in-memory prediction log for the dashboard feed
func (s *PredictionService) Store() *store.PredictionStore {
	return s.store
}
