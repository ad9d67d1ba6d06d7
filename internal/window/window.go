package window

import (
	"sync"

	"melting-tank-backend/internal/models"
)

// SensorWindow keeps the most recent readings in arrival order.
// Capacity equals the sequence length the model was trained with.
// Push and Snapshot are mutually exclusive so a snapshot never observes
// a partially evicted window.
type SensorWindow struct {
	mu       sync.Mutex
	capacity int
	readings []models.SensorReading
}

// NewSensorWindow creates an empty window with the given capacity
func NewSensorWindow(capacity int) *SensorWindow {
	return &SensorWindow{
		capacity: capacity,
		readings: make([]models.SensorReading, 0, capacity),
	}
}

// Push appends one reading, evicting the oldest when at capacity
func (w *SensorWindow) Push(reading models.SensorReading) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.readings) == w.capacity {
		copy(w.readings, w.readings[1:])
		w.readings[len(w.readings)-1] = reading
		return
	}
	w.readings = append(w.readings, reading)
}

// Snapshot returns a copy of the current window contents in arrival order
func (w *SensorWindow) Snapshot() []models.SensorReading {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]models.SensorReading, len(w.readings))
	copy(out, w.readings)
	return out
}

// Ready reports whether the window holds a full sequence
func (w *SensorWindow) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.readings) == w.capacity
}

// Len returns the current number of buffered readings
func (w *SensorWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.readings)
}

// Capacity returns the fixed window capacity
func (w *SensorWindow) Capacity() int {
	return w.capacity
}
