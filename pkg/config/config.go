package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP API Configuration
	HTTPPort string
	APIKey   string

	// MQTT Configuration
	MQTTBroker        string
	MQTTClientID      string
	MQTTUsername      string
	MQTTPassword      string
	MQTTTopicReadings string

	// ClickHouse Configuration
	ClickHouseAddr string
	ClickHouseDB   string
	ClickHouseUser string
	ClickHousePass string

	// ML Model Configuration
	ModelPath           string
	WindowCapacity      int
	PredictionThreshold float64

	// Presentation Configuration
	DisplayTimezone string
	RollingAvgSize  int
	HistoryLimit    int

	// Alerting Configuration
	SlackWebhookURL string

	// Simulator Configuration
	SimCSVPath      string
	SimIntervalSecs int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		// HTTP API Configuration
		HTTPPort: getEnv("HTTP_PORT", "8000"),
		APIKey:   getEnv("API_KEY", "happy"),

		// MQTT Configuration
		MQTTBroker:        getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:      getEnv("MQTT_CLIENT_ID", "melting-tank-backend"),
		MQTTUsername:      getEnv("MQTT_USERNAME", ""),
		MQTTPassword:      getEnv("MQTT_PASSWORD", ""),
		MQTTTopicReadings: getEnv("MQTT_TOPIC_READINGS", "melting-tank/readings"),

		// ClickHouse Configuration
		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "melting_tank"),
		ClickHouseUser: getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePass: getEnv("CLICKHOUSE_PASS", ""),

		// ML Model Configuration
		ModelPath:           getEnv("MODEL_PATH", "./model/lstm_defect_model.json"),
		WindowCapacity:      getEnvInt("WINDOW_CAPACITY", 10),
		PredictionThreshold: getEnvFloat("PREDICTION_THRESHOLD", 0.5),

		// Presentation Configuration
		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Asia/Seoul"),
		RollingAvgSize:  getEnvInt("ROLLING_AVG_SIZE", 10),
		HistoryLimit:    getEnvInt("HISTORY_LIMIT", 30),

		// Alerting Configuration
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),

		// Simulator Configuration
		SimCSVPath:      getEnv("SIM_CSV_PATH", "data/mes_sample_data.csv"),
		SimIntervalSecs: getEnvInt("SIM_INTERVAL_SEC", 30),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}
