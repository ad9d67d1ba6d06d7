package mqtt

import (
	"encoding/json"
	"fmt"
	"log"

	"melting-tank-backend/internal/models"
)

// Publisher publishes sensor readings to the readings topic.
// Used by the MES simulator to feed the backend.
type Publisher struct {
	client        *Client
	readingsTopic string
}

// PublisherConfig holds configuration for the MQTT publisher
type PublisherConfig struct {
	ReadingsTopic string // e.g., "melting-tank/readings"
}

// NewPublisher creates a new MQTT publisher
func NewPublisher(client *Client, config PublisherConfig) *Publisher {
	return &Publisher{
		client:        client,
		readingsTopic: config.ReadingsTopic,
	}
}

// PublishReading publishes one sensor reading as JSON
func (p *Publisher) PublishReading(reading *models.SensorReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal sensor reading: %w", err)
	}

	if err := p.client.Publish(p.readingsTopic, 1, payload); err != nil {
		return fmt.Errorf("failed to publish sensor reading: %w", err)
	}

	log.Printf("Published reading to %s: temp=%.1f, rpm=%.1f",
		p.readingsTopic, reading.MeltTemp, reading.MotorSpeed)
	return nil
}
