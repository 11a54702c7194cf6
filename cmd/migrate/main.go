package main

import (
	"context"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	version, err := migrate.ApplyDSN(context.Background(), cfg.DBConnString)
	if err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Printf("schema at version %d", version)
}
