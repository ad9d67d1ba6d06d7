package service

import (
	"context"
	"log"

	"melting-tank-backend/internal/models"
)

// Start consumes readings from ReadingChan until the context is
// cancelled. Each reading is pushed into the window and archived best
// effort. Readings keep flowing regardless of prediction activity; the
// request path never mutates the window.
func (s *PredictionService) Start(ctx context.Context) {
	log.Println("PredictionService: Starting reading ingest loop...")

	for {
		select {
		case <-ctx.Done():
			log.Println("PredictionService: Shutting down ingest loop...")
			return

		case reading, ok := <-s.ReadingChan:
			if !ok {
				log.Println("PredictionService: Reading channel closed, shutting down...")
				return
			}
			s.ingest(reading)
		}
	}
}

// ingest handles a single sensor reading
func (s *PredictionService) ingest(reading *models.SensorReading) {
	wasReady := s.window.Ready()

	s.window.Push(*reading)

	if !wasReady && s.window.Ready() {
		log.Printf("PredictionService: Window warmed up (%d readings), predictions available",
			s.window.Capacity())
	}

	if s.archive != nil {
		if err := s.archive.SaveReading(reading); err != nil {
			log.Printf("Error archiving sensor reading: %v", err)
		}
	}
}
