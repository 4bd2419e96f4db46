package main

import (
	"context"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/config"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_LOAD_FAILED, Description: %v", err)
	}
	logging.InitLogger(logging.Options{SystemName: "mesatech-seeder", Level: cfg.LogLevel, Console: true})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cb := repositories.NewBreaker(repositories.BreakerSettings{
		Name:        "mongodb-seeder",
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
	})
	store, err := repositories.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName, cb)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DATABASE_CONNECTION_FAILED, Description: %v", err)
	}
	defer store.Close(context.Background())

	result, err := seed.Run(ctx, store)
	if err != nil {
		logging.Logger.Fatalf("Event ID: SEED_FAILED, Description: %v", err)
	}
	logging.Logger.Infof("Event ID: SEED_COMPLETED, Description: Seed completed with %d collaborators and %d projects", result.Collaborators, result.Projects)
}
