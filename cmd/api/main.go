package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/cors"

	"eo-tracker/api/router"
	"eo-tracker/cache"
	"eo-tracker/config"
	"eo-tracker/db"
	_ "eo-tracker/docs" // swag generated package
	"eo-tracker/eventbus"
	"eo-tracker/fetcher"
	"eo-tracker/kvstore"
	"eo-tracker/queue"
	"eo-tracker/services"
)

// @title           EO Tracker API
// @version         1.0
// @description     API for browsing executive orders and their AI-generated summaries
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	store := kvstore.NewMongoStore(db.Database())
	client := fetcher.NewClient(cfg.FederalRegister)

	// The API never summarizes in-process; queue access here is limited
	// to reads and requeues, so no generator or limiter is wired.
	q := queue.New(store, client, nil, nil, cfg.Queue)

	mgr, err := cache.NewManager(store, client, q, cfg.FederalRegister)
	if err != nil {
		config.Logger.Errorf("failed to build cache manager: %v", err)
		os.Exit(1)
	}

	// Event publication is optional for the API: without brokers,
	// refresh and regenerate still work, the processor just is not
	// notified.
	var bus services.EventPublisher
	if os.Getenv("KAFKA_BOOTSTRAP_SERVERS") != "" {
		kafkaBus, err := eventbus.NewKafkaEventBus(eventbus.GetBrokers())
		if err != nil {
			config.Logger.Errorf("failed to create event bus: %v", err)
			os.Exit(1)
		}
		defer kafkaBus.Close()
		bus = kafkaBus
	} else {
		config.Logger.Info("KAFKA_BOOTSTRAP_SERVERS not set, event publication disabled")
	}

	svc := services.NewOrderService(mgr, q, bus, "api", cfg.API)

	r := router.New(svc)
	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	}).Handler(r)

	config.Logger.Infof("api listening on %s", cfg.API.Addr)
	if err := http.ListenAndServe(cfg.API.Addr, handler); err != nil && err != http.ErrServerClosed {
		config.Logger.Errorf("api server error: %v", err)
		os.Exit(1)
	}
}
