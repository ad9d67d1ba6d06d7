package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"melting-tank-backend/internal/models"
	mqtttransport "melting-tank-backend/internal/mqtt"
	"melting-tank-backend/pkg/config"
)

// MES simulator: replays melting-tank sensor data from CSV and
// publishes one reading per interval to the readings topic, looping
// back to the start when the file is exhausted.
func main() {
	log.Println("Starting MES simulator...")

	cfg := config.Load()

	readings, err := loadCSV(cfg.SimCSVPath)
	if err != nil {
		log.Fatalf("Failed to load CSV: %v", err)
	}
	log.Printf("Loaded CSV %s: %d readings", cfg.SimCSVPath, len(readings))

	mqttClient, err := mqtttransport.NewClient(mqtttransport.ClientConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID + "-simulator",
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	})
	if err != nil {
		log.Fatalf("Failed to initialize MQTT client: %v", err)
	}
	defer mqttClient.Close()

	publisher := mqtttransport.NewPublisher(
		mqttClient,
		mqtttransport.PublisherConfig{ReadingsTopic: cfg.MQTTTopicReadings},
	)

	interval := time.Duration(cfg.SimIntervalSecs) * time.Second
	log.Printf("Publishing to %s every %v", cfg.MQTTTopicReadings, interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	idx := 0
	for {
		select {
		case <-sigChan:
			log.Println("Shutdown signal received. Goodbye!")
			return

		case <-ticker.C:
			reading := readings[idx]
			reading.Timestamp = time.Now().UTC()

			if err := publisher.PublishReading(&reading); err != nil {
				log.Printf("Error publishing reading: %v", err)
			}

			idx++
			if idx == len(readings) {
				log.Println("Reached end of CSV. Restart simulation from the top.")
				idx = 0
			}
		}
	}
}

// loadCSV reads sensor readings from a CSV file.
// Required columns: MELT_TEMP, MOTORSPEED, MELT_WEIGHT, INSP.
// Extra columns (e.g. TAG) are ignored.
func loadCSV(path string) ([]models.SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV %s has no data rows", path)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, required := range []string{"MELT_TEMP", "MOTORSPEED", "MELT_WEIGHT", "INSP"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %s", required)
		}
	}

	readings := make([]models.SensorReading, 0, len(rows)-1)
	for i, row := range rows[1:] {
		reading := models.SensorReading{}
		var parseErr error
		reading.MeltTemp, parseErr = parseField(row, cols["MELT_TEMP"])
		if parseErr == nil {
			reading.MotorSpeed, parseErr = parseField(row, cols["MOTORSPEED"])
		}
		if parseErr == nil {
			reading.MeltWeight, parseErr = parseField(row, cols["MELT_WEIGHT"])
		}
		if parseErr == nil {
			reading.Moisture, parseErr = parseField(row, cols["INSP"])
		}
		if parseErr != nil {
			return nil, fmt.Errorf("CSV row %d: %w", i+2, parseErr)
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

func parseField(row []string, idx int) (float64, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("row too short")
	}
	return strconv.ParseFloat(row[idx], 64)
}
