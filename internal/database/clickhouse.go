package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"melting-tank-backend/internal/models"
)

type ClickHouseDB struct {
	conn driver.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(addr, database, username, password string) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Printf("Connected to ClickHouse at %s", addr)

	db := &ClickHouseDB{conn: conn}

	// Initialize schema
	if err := db.InitSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema() error {
	ctx := context.Background()

	for _, tableSQL := range AllTables() {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// SaveReading saves one sensor reading to the database
func (db *ClickHouseDB) SaveReading(reading *models.SensorReading) error {
	ctx := context.Background()

	query := `
		INSERT INTO sensor_readings (timestamp, melt_temp, motorspeed, melt_weight, insp)
		VALUES (?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		reading.Timestamp,
		reading.MeltTemp,
		reading.MotorSpeed,
		reading.MeltWeight,
		reading.Moisture,
	)

	if err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}

	return nil
}

// SavePrediction saves a defect prediction to the archive table
func (db *ClickHouseDB) SavePrediction(prediction *models.DefectPrediction) error {
	ctx := context.Background()

	query := `
		INSERT INTO defect_predictions (id, timestamp, prob_ng, label, threshold, model_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		prediction.ID,
		prediction.Timestamp,
		prediction.Probability,
		string(prediction.Label),
		prediction.Threshold,
		prediction.ModelVersion,
	)

	if err != nil {
		return fmt.Errorf("failed to insert defect prediction: %w", err)
	}

	return nil
}

// RecentPredictions returns the most recent archived predictions,
// newest first
func (db *ClickHouseDB) RecentPredictions(limit int) ([]models.DefectPrediction, error) {
	ctx := context.Background()

	query := `
		SELECT id, timestamp, prob_ng, label, threshold, model_version
		FROM defect_predictions
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query defect predictions: %w", err)
	}
	defer rows.Close()

	var predictions []models.DefectPrediction
	for rows.Next() {
		var p models.DefectPrediction
		var label string
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.Probability, &label, &p.Threshold, &p.ModelVersion); err != nil {
			return nil, fmt.Errorf("failed to scan defect prediction: %w", err)
		}
		p.Label = models.Label(label)
		predictions = append(predictions, p)
	}

	return predictions, nil
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		log.Println("ClickHouse connection closed")
	}
	return nil
}
