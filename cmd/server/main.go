package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melting-tank-backend/internal/alert"
	"melting-tank-backend/internal/api"
	"melting-tank-backend/internal/database"
	"melting-tank-backend/internal/ml"
	mqtttransport "melting-tank-backend/internal/mqtt"
	"melting-tank-backend/internal/service"
	"melting-tank-backend/internal/store"
	"melting-tank-backend/pkg/config"
)

const version = "1.0.0"

func main() {
	log.Printf("Starting Melting Tank Quality Service v%s...", version)

	// Load configuration
	cfg := config.Load()

	// Load the model artifact. Failure here is fatal: the service must
	// not start serving with a model it could not load.
	predictor, err := ml.NewPredictor(cfg.ModelPath)
	if err != nil {
		log.Fatalf("Failed to load model artifact: %v", err)
	}
	if predictor.SequenceLength() != cfg.WindowCapacity {
		log.Fatalf("WINDOW_CAPACITY (%d) does not match model sequence length (%d)",
			cfg.WindowCapacity, predictor.SequenceLength())
	}

	classifier, err := ml.NewClassifier(cfg.PredictionThreshold)
	if err != nil {
		log.Fatalf("Invalid prediction threshold: %v", err)
	}

	if cfg.HistoryLimit < 1 {
		log.Fatalf("HISTORY_LIMIT must be at least 1, got %d", cfg.HistoryLimit)
	}
	if cfg.RollingAvgSize < 1 {
		log.Fatalf("ROLLING_AVG_SIZE must be at least 1, got %d", cfg.RollingAvgSize)
	}

	displayZone, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		log.Fatalf("Invalid display timezone %q: %v", cfg.DisplayTimezone, err)
	}

	// Initialize ClickHouse database
	db, err := database.NewClickHouseDB(
		cfg.ClickHouseAddr,
		cfg.ClickHouseDB,
		cfg.ClickHouseUser,
		cfg.ClickHousePass,
	)
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse: %v", err)
	}
	defer db.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === Initialize Prediction Service ===
	predStore := store.NewPredictionStore(cfg.HistoryLimit)
	notifier := alert.NewSlackNotifier(cfg.SlackWebhookURL)

	predictionService := service.NewPredictionService(
		predictor,
		classifier,
		predStore,
		db,
		notifier,
		service.Config{
			WindowCapacity:  cfg.WindowCapacity,
			ReadingChanSize: 100,
		},
	)

	// Start ingest loop
	go predictionService.Start(ctx)

	// === Initialize MQTT Client ===
	log.Println("Connecting to MQTT broker...")
	mqttClient, err := mqtttransport.NewClient(mqtttransport.ClientConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	})
	if err != nil {
		log.Fatalf("Failed to initialize MQTT client: %v", err)
	}
	defer mqttClient.Close()

	// === Initialize MQTT Subscriber ===
	subscriber := mqtttransport.NewSubscriber(
		mqttClient,
		mqtttransport.SubscriberConfig{ReadingsTopic: cfg.MQTTTopicReadings},
		predictionService.ReadingChan,
	)
	if err := subscriber.Subscribe(); err != nil {
		log.Fatalf("Failed to subscribe to readings topic: %v", err)
	}

	// === Initialize HTTP API ===
	handler := &api.Handler{
		Service:        predictionService,
		Archive:        db,
		APIKey:         cfg.APIKey,
		DisplayZone:    displayZone,
		RollingAvgSize: cfg.RollingAvgSize,
		Version:        version,
	}

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Printf("HTTP API listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// === Log startup info ===
	log.Printf("=== Melting Tank Quality Service v%s is running ===", version)
	log.Printf("Model: %s (version=%s, window=%d)", cfg.ModelPath, predictor.Version(), cfg.WindowCapacity)
	log.Printf("Threshold: %.2f, display zone: %s, history limit: %d",
		cfg.PredictionThreshold, cfg.DisplayTimezone, cfg.HistoryLimit)
	log.Printf("Readings topic: %s", cfg.MQTTTopicReadings)
	log.Println("Press Ctrl+C to exit...")

	// === Wait for interrupt signal ===
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// === Graceful shutdown ===
	log.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete. Goodbye!")
}
