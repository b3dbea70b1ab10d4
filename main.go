package main

import (
	"context"
	"os"

	"eo-tracker/cache"
	"eo-tracker/config"
	"eo-tracker/db"
	"eo-tracker/fetcher"
	"eo-tracker/kvstore"
	"eo-tracker/models"
	"eo-tracker/queue"
	"eo-tracker/quota"
	"eo-tracker/summarizer"
)

// One-shot backfill: refresh the snapshot, then drain the summary queue
// in-process. Useful for first-time setup and local runs without Kafka.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx := context.Background()
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

	snap, enqueued, err := mgr.Refresh(ctx)
	if err != nil {
		config.Logger.Errorf("refresh failed: %v", err)
		os.Exit(1)
	}
	config.Logger.Infof("snapshot: %d orders, %d newly enqueued", len(snap.Orders), len(enqueued))

	completed, failed := 0, 0
	for {
		results, err := q.ProcessBatch(ctx)
		if err != nil {
			config.Logger.Errorf("batch failed: %v", err)
			os.Exit(1)
		}
		if len(results) == 0 {
			break
		}
		for _, r := range results {
			switch r.Status {
			case models.StatusCompleted:
				completed++
			case models.StatusFailed:
				failed++
				config.Logger.Warnf("summary failed for %s: %v", r.DocumentNumber, r.Err)
			}
		}
	}

	config.Logger.Infof("backfill done: %d summarized, %d failed (failed items retry after %s)",
		completed, failed, cfg.Queue.RetryDelay.Std())
}
