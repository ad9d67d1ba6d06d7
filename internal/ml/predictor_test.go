package ml

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"melting-tank-backend/internal/models"
)

func writeArtifact(t *testing.T, a Artifact) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// singleUnitArtifact builds a minimal one-unit LSTM over MELT_TEMP with
// the given input-to-cell weight
func singleUnitArtifact(cellWeight float64) Artifact {
	return Artifact{
		Version:        "test-1",
		SequenceLength: 2,
		Features:       []string{"MELT_TEMP"},
		Scaler:         Scaler{Min: []float64{0}, Max: []float64{1}},
		LSTM: LSTMWeights{
			Units:     1,
			Kernel:    [][]float64{{0, 0, cellWeight, 0}},
			Recurrent: [][]float64{{0, 0, 0, 0}},
			Bias:      []float64{0, 0, 0, 0},
		},
		Dense: DenseWeights{Weights: []float64{4}, Bias: 0},
	}
}

func TestSampleArtifactLoadsAndInfers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, WriteSampleArtifact(path))

	p, err := NewPredictor(path)
	require.NoError(t, err)

	assert.Equal(t, "sample-0.1", p.Version())
	assert.Equal(t, 10, p.SequenceLength())

	readings := make([]models.SensorReading, 10)
	for i := range readings {
		readings[i] = models.SensorReading{MeltTemp: 650, MotorSpeed: 120, MeltWeight: 500, Moisture: 3}
	}

	// All-zero weights: the net output is sigmoid(0) regardless of input
	prob, err := p.Infer(readings)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, prob, 1e-12)
}

func TestInferRejectsWrongSequenceLength(t *testing.T) {
	p, err := NewPredictor(writeArtifact(t, singleUnitArtifact(1)))
	require.NoError(t, err)

	_, err = p.Infer([]models.SensorReading{{MeltTemp: 0.5}})
	assert.Error(t, err)

	_, err = p.Infer(make([]models.SensorReading, 3))
	assert.Error(t, err)
}

func TestInferRespondsToInput(t *testing.T) {
	p, err := NewPredictor(writeArtifact(t, singleUnitArtifact(5)))
	require.NoError(t, err)

	low, err := p.Infer([]models.SensorReading{{MeltTemp: 0}, {MeltTemp: 0}})
	require.NoError(t, err)
	high, err := p.Infer([]models.SensorReading{{MeltTemp: 1}, {MeltTemp: 1}})
	require.NoError(t, err)

	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 1.0)
}

func TestInferIsStatelessAcrossCalls(t *testing.T) {
	p, err := NewPredictor(writeArtifact(t, singleUnitArtifact(5)))
	require.NoError(t, err)

	input := []models.SensorReading{{MeltTemp: 0.3}, {MeltTemp: 0.9}}

	first, err := p.Infer(input)
	require.NoError(t, err)
	second, err := p.Infer(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScaleAppliesTrainingTransform(t *testing.T) {
	a := singleUnitArtifact(1)
	a.Scaler = Scaler{Min: []float64{400}, Max: []float64{900}}
	p := &Predictor{artifact: &a}

	scaled, err := p.scale([]models.SensorReading{{MeltTemp: 650}, {MeltTemp: 400}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scaled[0][0], 1e-12)
	assert.InDelta(t, 0.0, scaled[1][0], 1e-12)
}

func TestScaleSpanZeroYieldsZero(t *testing.T) {
	a := singleUnitArtifact(1)
	a.Scaler = Scaler{Min: []float64{7}, Max: []float64{7}}
	p := &Predictor{artifact: &a}

	scaled, err := p.scale([]models.SensorReading{{MeltTemp: 123}})
	require.NoError(t, err)
	assert.Zero(t, scaled[0][0])
}

func TestInferRejectsUnknownFeatureColumn(t *testing.T) {
	a := singleUnitArtifact(1)
	a.Features = []string{"BOGUS"}

	p, err := NewPredictor(writeArtifact(t, a))
	require.NoError(t, err)

	_, err = p.Infer([]models.SensorReading{{}, {}})
	assert.Error(t, err)
}

func TestInferReportsNonFiniteOutput(t *testing.T) {
	// JSON cannot carry NaN/Inf, so corrupt the weights in memory
	cases := map[string]func(*Artifact){
		"NaN dense bias":   func(a *Artifact) { a.Dense.Bias = math.NaN() },
		"Inf dense weight": func(a *Artifact) { a.Dense.Weights = []float64{math.Inf(1)} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			// Zero LSTM weights keep the hidden state at 0, so the Inf
			// weight multiplies into NaN at the output head
			a := singleUnitArtifact(0)
			mutate(&a)
			p := &Predictor{artifact: &a}

			_, err := p.Infer([]models.SensorReading{{MeltTemp: 0.5}, {MeltTemp: 0.5}})
			assert.ErrorIs(t, err, ErrNonFiniteOutput)
		})
	}
}

func TestNewPredictorMissingFile(t *testing.T) {
	_, err := NewPredictor(filepath.Join(t.TempDir(), "no-such-model.json"))
	assert.Error(t, err)
}

func TestNewPredictorCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := NewPredictor(path)
	assert.Error(t, err)
}

func TestNewPredictorRejectsMalformedShapes(t *testing.T) {
	cases := map[string]func(*Artifact){
		"no features":         func(a *Artifact) { a.Features = nil },
		"bad sequence length": func(a *Artifact) { a.SequenceLength = 0 },
		"scaler mismatch":     func(a *Artifact) { a.Scaler.Min = []float64{0, 1} },
		"zero units":          func(a *Artifact) { a.LSTM.Units = 0 },
		"kernel row count":    func(a *Artifact) { a.LSTM.Kernel = append(a.LSTM.Kernel, []float64{0, 0, 0, 0}) },
		"kernel row width":    func(a *Artifact) { a.LSTM.Kernel[0] = []float64{1} },
		"recurrent rows":      func(a *Artifact) { a.LSTM.Recurrent = nil },
		"bias length":         func(a *Artifact) { a.LSTM.Bias = []float64{0} },
		"dense width":         func(a *Artifact) { a.Dense.Weights = []float64{1, 2} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := singleUnitArtifact(1)
			mutate(&a)
			_, err := NewPredictor(writeArtifact(t, a))
			assert.Error(t, err)
		})
	}
}
