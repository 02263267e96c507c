package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/ewasteapp/ewaste-client/internal/catalog"
	"github.com/ewasteapp/ewaste-client/internal/config"
	"github.com/ewasteapp/ewaste-client/internal/credentials"
	"github.com/ewasteapp/ewaste-client/internal/gateway"
	"github.com/ewasteapp/ewaste-client/internal/session"

	database "github.com/ewasteapp/ewaste-client/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start client: %v", err)
	}

	dbService, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		log.Fatalf("Could not initialize cache database: %v", err)
	}
	defer dbService.Close()

	client := gateway.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	store := credentials.NewFileStore(cfg.CredentialPath, cfg.StoreKey)

	cacheRepo := catalog.NewSQLiteCacheRepository(dbService.DB)
	syncService := catalog.NewSyncService(client, cacheRepo)
	sessionService := session.NewService(client, store)

	states, cancelStates := sessionService.Subscribe()
	defer cancelStates()
	go func() {
		for state := range states {
			log.Printf("session state: %s %s %q", state.Phase, state.Purpose, state.Message)
		}
	}()

	if sessionService.IsLoggedIn() {
		log.Println("Existing session found, running with stored credentials")
	} else {
		log.Println("No stored session, catalog browsing only")
	}

	ctx := context.Background()
	categories, err := syncService.FetchCategories(ctx)
	if err != nil {
		log.Fatalf("Catalog unavailable, no remote data and no cache: %v", err)
	}
	log.Printf("Catalog ready: %d categories", len(categories))

	types, err := syncService.FetchAllWasteTypes(ctx)
	if err != nil {
		log.Fatalf("Catalog unavailable, no remote data and no cache: %v", err)
	}
	log.Printf("Catalog ready: %d waste types", len(types))

	if err := startSyncScheduler(syncService, cfg.SyncSchedule); err != nil {
		log.Fatalf("Scheduler didn't start, stopping the client ...")
	}

	log.Println("Client running, waiting for shutdown signal...")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down")
}

func startSyncScheduler(syncService *catalog.SyncService, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx := context.Background()
		if _, err := syncService.FetchCategories(ctx); err != nil {
			log.Printf("Error refreshing categories: %v", err)
		}
		if _, err := syncService.FetchAllWasteTypes(ctx); err != nil {
			log.Printf("Error refreshing waste types: %v", err)
		} else {
			log.Println("Catalog refreshed successfully.")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
