package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"

	"melting-tank-backend/internal/models"
)

// ErrNonFiniteOutput is returned when the model produces NaN or Inf.
// The service layer treats it as an inference failure and stores nothing.
var ErrNonFiniteOutput = errors.New("model produced a non-finite probability")

// Scaler holds the min-max parameters used at training time.
// It is part of the artifact so inference always applies the same
// transformation the model was trained with.
type Scaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// LSTMWeights holds one LSTM layer in Keras layout:
// Kernel is (features x 4*units), Recurrent is (units x 4*units),
// Bias is 4*units, gate order i, f, c, o.
type LSTMWeights struct {
	Units     int         `json:"units"`
	Kernel    [][]float64 `json:"kernel"`
	Recurrent [][]float64 `json:"recurrent"`
	Bias      []float64   `json:"bias"`
}

// DenseWeights holds the sigmoid output head
type DenseWeights struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Artifact is the trained model as stored on disk
type Artifact struct {
	Version        string       `json:"version"`
	SequenceLength int          `json:"sequence_length"`
	Features       []string     `json:"features"`
	Scaler         Scaler       `json:"scaler"`
	LSTM           LSTMWeights  `json:"lstm"`
	Dense          DenseWeights `json:"dense"`
}

// Predictor runs defect-probability inference over a reading sequence.
// The artifact is loaded once at startup; Infer keeps all state on the
// stack so concurrent calls do not interfere.
type Predictor struct {
	artifact *Artifact
}

// NewPredictor loads and validates the model artifact.
// Any failure here is fatal for the service: it must not start with a
// model it cannot trust.
func NewPredictor(artifactPath string) (*Predictor, error) {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact: %w", err)
	}

	if err := validateArtifact(&artifact); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", artifactPath, err)
	}

	log.Printf("Loaded model artifact %s (version=%s, seq_len=%d, features=%v, units=%d)",
		artifactPath, artifact.Version, artifact.SequenceLength, artifact.Features, artifact.LSTM.Units)

	return &Predictor{artifact: &artifact}, nil
}

// validateArtifact checks that every weight matrix has the shape the
// forward pass expects, so a truncated or mismatched file fails at load
// time instead of producing garbage probabilities.
func validateArtifact(a *Artifact) error {
	nf := len(a.Features)
	if nf == 0 {
		return fmt.Errorf("artifact declares no feature columns")
	}
	if a.SequenceLength <= 0 {
		return fmt.Errorf("invalid sequence length %d", a.SequenceLength)
	}
	if len(a.Scaler.Min) != nf || len(a.Scaler.Max) != nf {
		return fmt.Errorf("scaler has %d/%d params for %d features",
			len(a.Scaler.Min), len(a.Scaler.Max), nf)
	}
	units := a.LSTM.Units
	if units <= 0 {
		return fmt.Errorf("invalid LSTM unit count %d", units)
	}
	if len(a.LSTM.Kernel) != nf {
		return fmt.Errorf("LSTM kernel has %d rows, expected %d", len(a.LSTM.Kernel), nf)
	}
	for i, row := range a.LSTM.Kernel {
		if len(row) != 4*units {
			return fmt.Errorf("LSTM kernel row %d has %d cols, expected %d", i, len(row), 4*units)
		}
	}
	if len(a.LSTM.Recurrent) != units {
		return fmt.Errorf("LSTM recurrent has %d rows, expected %d", len(a.LSTM.Recurrent), units)
	}
	for i, row := range a.LSTM.Recurrent {
		if len(row) != 4*units {
			return fmt.Errorf("LSTM recurrent row %d has %d cols, expected %d", i, len(row), 4*units)
		}
	}
	if len(a.LSTM.Bias) != 4*units {
		return fmt.Errorf("LSTM bias has %d values, expected %d", len(a.LSTM.Bias), 4*units)
	}
	if len(a.Dense.Weights) != units {
		return fmt.Errorf("dense head has %d weights, expected %d", len(a.Dense.Weights), units)
	}
	return nil
}

// Version returns the artifact version string
func (p *Predictor) Version() string {
	return p.artifact.Version
}

// SequenceLength returns the input length the model was trained with
func (p *Predictor) SequenceLength() int {
	return p.artifact.SequenceLength
}

// Infer runs the full sequence through the LSTM and returns the defect
// probability. The input must hold exactly SequenceLength readings.
func (p *Predictor) Infer(readings []models.SensorReading) (float64, error) {
	a := p.artifact

	if len(readings) != a.SequenceLength {
		return 0, fmt.Errorf("expected %d readings, got %d", a.SequenceLength, len(readings))
	}

	scaled, err := p.scale(readings)
	if err != nil {
		return 0, err
	}

	prob := p.forward(scaled)
	if math.IsNaN(prob) || math.IsInf(prob, 0) {
		return 0, ErrNonFiniteOutput
	}

	return prob, nil
}

// scale applies the training-time min-max transformation per feature
func (p *Predictor) scale(readings []models.SensorReading) ([][]float64, error) {
	a := p.artifact

	scaled := make([][]float64, len(readings))
	for t := range readings {
		row := make([]float64, len(a.Features))
		for j, name := range a.Features {
			value, ok := readings[t].Feature(name)
			if !ok {
				return nil, fmt.Errorf("unknown feature column %q in artifact", name)
			}
			span := a.Scaler.Max[j] - a.Scaler.Min[j]
			if span == 0 {
				row[j] = 0
			} else {
				row[j] = (value - a.Scaler.Min[j]) / span
			}
		}
		scaled[t] = row
	}
	return scaled, nil
}

// forward runs one LSTM pass over the scaled sequence followed by the
// sigmoid output head
func (p *Predictor) forward(sequence [][]float64) float64 {
	a := p.artifact
	units := a.LSTM.Units

	h := make([]float64, units)
	c := make([]float64, units)
	gates := make([]float64, 4*units)

	for _, x := range sequence {
		copy(gates, a.LSTM.Bias)
		for j, xj := range x {
			for k, w := range a.LSTM.Kernel[j] {
				gates[k] += xj * w
			}
		}
		for j, hj := range h {
			for k, w := range a.LSTM.Recurrent[j] {
				gates[k] += hj * w
			}
		}

		for u := 0; u < units; u++ {
			i := sigmoid(gates[u])
			f := sigmoid(gates[units+u])
			g := math.Tanh(gates[2*units+u])
			o := sigmoid(gates[3*units+u])

			c[u] = f*c[u] + i*g
			h[u] = o * math.Tanh(c[u])
		}
	}

	logit := a.Dense.Bias
	for u, w := range a.Dense.Weights {
		logit += w * h[u]
	}
	return sigmoid(logit)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
