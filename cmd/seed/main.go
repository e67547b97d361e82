package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/housingpipeline/housingpipeline/pkg/config"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
)

// Loads the sample portfolio into an empty database. Safe to run repeatedly;
// a database that already holds projects is left untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if err := db.Seed(context.Background()); err != nil {
		logger.Fatal("Failed to seed database", zap.Error(err))
	}

	logger.Info("Sample data loaded")
}
