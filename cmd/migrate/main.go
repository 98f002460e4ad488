package main

import (
	"log"

	"price-prediction/internal/config"
	"price-prediction/internal/store"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Running migrations...")
	if err := db.AutoMigrate(&store.KVEntry{}); err != nil {
		log.Fatalf("Failed to migrate market_state table: %v", err)
	}

	log.Println("✅ Migration applied successfully!")
}
