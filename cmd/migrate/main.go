package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"github.com/mona5211005/certificate-system/internal/bootstrap"
	"github.com/mona5211005/certificate-system/internal/shared/config"
	"github.com/mona5211005/certificate-system/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	target := bootstrap.DatabaseTarget(cfg)
	if target == "" {
		log.Printf("no database configured: set DATABASE_URL or SQLITE_PATH")
		os.Exit(1)
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, target, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, db.Dialect(target)); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied")
}
