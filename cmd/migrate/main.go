package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fixora/oauth-service/infrastructure/adapter/postgres"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or status")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	switch strings.ToLower(*mode) {
	case "up":
		if err := postgres.MigrateUp(ctx, db); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("Migration up completed successfully")
	case "down":
		if err := postgres.MigrateDown(ctx, db); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("Migration down completed successfully")
	case "status":
		if err := postgres.MigrationStatus(ctx, db); err != nil {
			log.Fatalf("migration status failed: %v", err)
		}
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}
