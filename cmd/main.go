package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"crisis-service/internal/api"
	"crisis-service/internal/audit"
	"crisis-service/internal/catalog"
	"crisis-service/internal/config"
	"crisis-service/internal/crisis"
	"crisis-service/internal/db"
	"crisis-service/internal/detection"
	"crisis-service/internal/dispatch"
	"crisis-service/internal/history"
	"crisis-service/internal/kafka"
	"crisis-service/internal/lifecycle"
	"crisis-service/internal/logging"
	"crisis-service/internal/protocol"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	// Connect to storage
	var store db.Store
	switch cfg.Store.Driver {
	case "memory":
		store = db.NewMemoryStore()
		logger.Warnf("Using in-memory store; alerts will not survive a restart")
	default:
		pg, err := db.New(cfg.Store.DSN)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			log.Fatalf("Database connection failed: %v", err)
		}
		defer pg.Close()
		store = pg
	}

	var wg sync.WaitGroup

	// Audit trail
	recorder := audit.New(store, logger, cfg.Audit.QueueSize)
	recorder.Start(&wg)

	// Notification dispatch
	dsp := dispatch.New(store, logger, cfg)
	dsp.Start(&wg)

	// Resource catalog
	resources := catalog.Default()
	if cfg.Crisis.ResourceFile != "" {
		resources, err = catalog.LoadFile(cfg.Crisis.ResourceFile)
		if err != nil {
			log.Fatalf("Failed to load resource file: %v", err)
		}
	}
	cat := catalog.New(resources)

	// Crisis pipeline
	builder := protocol.NewBuilder(cat, cfg.Crisis.Level1TimeoutMinutes, cfg.Crisis.Level2TimeoutMinutes)
	manager := lifecycle.NewManager(store, recorder, dsp, logger, builder.EscalationPath(),
		time.Duration(cfg.Crisis.Level1TimeoutMinutes)*time.Minute,
		time.Duration(cfg.Crisis.Level2TimeoutMinutes)*time.Minute)
	tracker := history.NewTracker(store, logger, cfg.Crisis.HistoryWindowDays)
	svc := crisis.New(detection.NewDetector(), tracker, cat, builder, manager, recorder, logger)

	// Re-arm escalation timers for alerts that were open when the
	// previous process stopped.
	if err := manager.Recover(context.Background()); err != nil {
		logger.Errorf("Timer recovery failed: %v", err)
	}

	// Kafka input-event consumer (optional)
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer([]string{cfg.Kafka.Broker}, cfg.Kafka.Topic, cfg.Kafka.GroupID, svc, logger)
		consumer.Start(consumerCtx, &wg)
		logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.Topic)
	}

	// Start API server
	handler := api.NewHandler(svc, store, dsp, logger)
	router := api.NewRouter(logger, cfg, handler)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancelConsumer()
	if consumer != nil {
		consumer.Close()
	}
	dsp.Close()
	recorder.Close()
	wg.Wait()
	logger.Infof("Service stopped")
}
