package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eo-tracker/cache"
	"eo-tracker/config"
	"eo-tracker/db"
	"eo-tracker/eventbus"
	"eo-tracker/feedwatch"
	"eo-tracker/fetcher"
	"eo-tracker/kvstore"
	"eo-tracker/queue"
	"eo-tracker/services"
)

// The scheduler refreshes the order snapshot on a fixed interval and
// polls the Federal Register feed in between, triggering an early
// refresh when a new document shows up before the next tick.
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

	store := kvstore.NewMongoStore(db.Database())
	client := fetcher.NewClient(cfg.FederalRegister)
	q := queue.New(store, client, nil, nil, cfg.Queue)

	mgr, err := cache.NewManager(store, client, q, cfg.FederalRegister)
	if err != nil {
		config.Logger.Errorf("failed to build cache manager: %v", err)
		os.Exit(1)
	}

	var bus services.EventPublisher
	if os.Getenv("KAFKA_BOOTSTRAP_SERVERS") != "" {
		brokers := eventbus.GetBrokers()
		if err := eventbus.EnsureTopics(brokers, eventbus.TopicOrderEvents, 3); err != nil {
			config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
		}
		kafkaBus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			config.Logger.Errorf("failed to create event bus: %v", err)
			os.Exit(1)
		}
		defer kafkaBus.Close()
		bus = kafkaBus
	} else {
		config.Logger.Info("KAFKA_BOOTSTRAP_SERVERS not set, event publication disabled")
	}

	svc := services.NewOrderService(mgr, q, bus, "scheduler", cfg.API)

	refreshNow := make(chan string, 1)

	// Feed watcher: a new feed entry requests an early refresh.
	if cfg.FederalRegister.FeedURL != "" {
		watcher := feedwatch.NewWatcher(cfg.FederalRegister.FeedURL)
		// Prime the seen set so startup does not double-refresh.
		if _, err := watcher.Poll(); err != nil {
			config.Logger.Warnf("initial feed poll failed: %v", err)
		}

		go func() {
			ticker := time.NewTicker(cfg.Scheduler.FeedPollInterval.Std())
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					fresh, err := watcher.Poll()
					if err != nil {
						config.Logger.Warnf("feed poll failed: %v", err)
						continue
					}
					if len(fresh) == 0 {
						continue
					}
					config.Logger.Infof("feed reported %d new documents", len(fresh))
					select {
					case refreshNow <- "feed update":
					default: // refresh already requested
					}
				}
			}
		}()
	}

	runOnce := func(reason string) {
		out, err := svc.Refresh(ctx)
		if err != nil {
			config.Logger.Errorf("refresh (%s) failed: %v", reason, err)
			return
		}
		config.Logger.Infof("refresh (%s): %d orders, %d newly enqueued", reason, out.OrderCount, out.Enqueued)
	}

	// First run happens immediately.
	runOnce("startup")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Scheduler.RefreshInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runOnce("interval")
		case reason := <-refreshNow:
			runOnce(reason)
		case <-sigChan:
			config.Logger.Info("received shutdown signal, stopping scheduler...")
			cancel()
			return
		}
	}
}
