package database

// SQL schemas for all ClickHouse tables

const (
	// SensorReadingsTableSQL creates the sensor_readings table
	SensorReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS sensor_readings (
			timestamp DateTime64(3),
			melt_temp Float64,
			motorspeed Float64,
			melt_weight Float64,
			insp Float64
		) ENGINE = MergeTree()
		ORDER BY timestamp
		PARTITION BY toYYYYMM(timestamp)
	`

	// DefectPredictionsTableSQL creates the defect_predictions table
	DefectPredictionsTableSQL = `
		CREATE TABLE IF NOT EXISTS defect_predictions (
			id String,
			timestamp DateTime64(3),
			prob_ng Float64,
			label String,
			threshold Float64,
			model_version String
		) ENGINE = MergeTree()
		ORDER BY timestamp
		PARTITION BY toYYYYMM(timestamp)
	`
)

// AllTables returns every table definition in creation order
func AllTables() []string {
	return []string{
		SensorReadingsTableSQL,
		DefectPredictionsTableSQL,
	}
}
