package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"melting-tank-backend/internal/models"
)

// Subscriber handles MQTT subscriptions and writes readings to a channel
type Subscriber struct {
	client *Client

	// Output channel (written by subscriber, read by the prediction service)
	ReadingChan chan *models.SensorReading

	readingsTopic string
}

// SubscriberConfig holds configuration for the MQTT subscriber
type SubscriberConfig struct {
	ReadingsTopic string // e.g., "melting-tank/readings"
}

// NewSubscriber creates a new MQTT subscriber with a reading channel
func NewSubscriber(
	client *Client,
	config SubscriberConfig,
	readingChan chan *models.SensorReading,
) *Subscriber {
	return &Subscriber{
		client:        client,
		ReadingChan:   readingChan,
		readingsTopic: config.ReadingsTopic,
	}
}

// Subscribe subscribes to the sensor readings topic
func (s *Subscriber) Subscribe() error {
	if err := s.client.Subscribe(s.readingsTopic, 1, s.handleReading); err != nil {
		return fmt.Errorf("failed to subscribe to readings topic: %w", err)
	}
	log.Printf("Subscribed to readings topic: %s", s.readingsTopic)
	return nil
}

// handleReading decodes a reading message and writes it to the channel
func (s *Subscriber) handleReading(client mqtt.Client, msg mqtt.Message) {
	var reading models.SensorReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		log.Printf("Error parsing sensor reading from %s: %v", msg.Topic(), err)
		return
	}

	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	// Non-blocking send so a stalled consumer never wedges the MQTT
	// callback goroutine
	select {
	case s.ReadingChan <- &reading:
	default:
		log.Printf("Warning: reading channel full, dropping reading from %s", msg.Topic())
	}
}
