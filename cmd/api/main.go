package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/labkite/researchdesk/internal/api"
	"github.com/labkite/researchdesk/internal/config"
	"github.com/labkite/researchdesk/internal/pkg/supabase"
	"github.com/labkite/researchdesk/pkg/database"
	"github.com/labkite/researchdesk/pkg/kafka"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	// Initialize database clients
	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("✅ Connected to databases")

	if err := db.CreateTables(); err != nil {
		slog.Error("Failed to create tables", "error", err)
		os.Exit(1)
	}

	// Initialize Supabase auth client
	auth, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		slog.Error("Failed to initialize Supabase client", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	slog.Info("✅ Connected to Kafka")

	// Create and start server
	server := api.NewServer(cfg, db, producer, auth)
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
