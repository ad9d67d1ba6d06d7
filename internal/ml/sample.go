package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// WriteSampleArtifact creates a small demonstration artifact for local
// runs when no trained model file exists. The weights are zero except
// for the output head, so the predictor produces a stable probability
// regardless of input.
func WriteSampleArtifact(path string) error {
	units := 4
	features := []string{"MELT_TEMP", "MOTORSPEED", "MELT_WEIGHT", "INSP"}

	kernel := make([][]float64, len(features))
	for i := range kernel {
		kernel[i] = make([]float64, 4*units)
	}
	recurrent := make([][]float64, units)
	for i := range recurrent {
		recurrent[i] = make([]float64, 4*units)
	}

	artifact := Artifact{
		Version:        "sample-0.1",
		SequenceLength: 10,
		Features:       features,
		Scaler: Scaler{
			Min: []float64{400, 0, 300, 0},
			Max: []float64{900, 300, 700, 10},
		},
		LSTM: LSTMWeights{
			Units:     units,
			Kernel:    kernel,
			Recurrent: recurrent,
			Bias:      make([]float64, 4*units),
		},
		Dense: DenseWeights{
			Weights: make([]float64, units),
			Bias:    0,
		},
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample artifact: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sample artifact: %w", err)
	}

	log.Printf("Created sample model artifact at %s", path)
	return nil
}
