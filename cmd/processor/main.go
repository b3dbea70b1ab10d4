package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"eo-tracker/cache"
	"eo-tracker/config"
	"eo-tracker/db"
	"eo-tracker/eventbus"
	"eo-tracker/events"
	"eo-tracker/fetcher"
	"eo-tracker/kvstore"
	"eo-tracker/queue"
	"eo-tracker/quota"
	"eo-tracker/services"
	"eo-tracker/summarizer"
)

// The processor owns summary generation. It reacts to order events and
// sweeps the queue periodically so retry-delayed items are picked up
// without a triggering event.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	generator, err := summarizer.New(ctx, cfg.LLM)
	if err != nil {
		config.Logger.Errorf("failed to build summarizer: %v", err)
		os.Exit(1)
	}

	store := kvstore.NewMongoStore(db.Database())
	client := fetcher.NewClient(cfg.FederalRegister)
	limiter := quota.NewSummaryQuotaLimiterFromConfig(cfg)
	q := queue.New(store, client, generator, limiter, cfg.Queue)

	mgr, err := cache.NewManager(store, client, q, cfg.FederalRegister)
	if err != nil {
		config.Logger.Errorf("failed to build cache manager: %v", err)
		os.Exit(1)
	}

	brokers := eventbus.GetBrokers()
	if err := eventbus.EnsureTopics(brokers, eventbus.TopicOrderEvents, 3); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	svc := services.NewOrderService(mgr, q, bus, "processor", cfg.API)

	var sweepMu sync.Mutex
	sweep := func(trigger string) error {
		// Batches are serialized; the whole-queue persist inside
		// ProcessBatch is not safe against a concurrent batch in the
		// same process.
		sweepMu.Lock()
		defer sweepMu.Unlock()

		results, err := svc.ProcessQueue(ctx)
		if err != nil {
			return err
		}
		if len(results) > 0 {
			config.Logger.Infof("batch (%s): processed %d items", trigger, len(results))
		}
		return nil
	}

	groupID := eventbus.GetGroupID()

	// Only the type is decoded up front; BaseEvent.Type is top-level.
	type typePeek struct {
		Type events.EventType `json:"type"`
	}

	subscribeRunner := func() error {
		return eventbus.SubscribeJSON(ctx, bus, groupID, eventbus.TopicOrderEvents, func(ctx context.Context, peek typePeek, _ eventbus.Event) error {
			switch peek.Type {
			case events.OrderSummaryRequested:
				return sweep("event")
			case events.SnapshotRefreshRequested:
				out, err := svc.Refresh(ctx)
				if err != nil {
					return err
				}
				config.Logger.Infof("event-triggered refresh: %d orders, %d newly enqueued", out.OrderCount, out.Enqueued)
				return nil
			default:
				// Events for other consumers are committed untouched.
				return nil
			}
		})
	}

	config.Logger.Info("starting processor service with eventbus...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := subscribeRunner(); err != nil && err != context.Canceled {
			config.Logger.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	// Retry sweep: failed items come back after the retry delay with no
	// new event, so the queue is swept on that cadence.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Queue.RetryDelay.Std())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sweep("retry sweep"); err != nil {
					config.Logger.Errorf("retry sweep error: %v", err)
				}
			}
		}
	}()

	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down processor service...")

	cancel()
	wg.Wait()

	config.Logger.Info("processor service stopped")
}
