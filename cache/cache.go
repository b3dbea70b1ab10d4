// Package cache owns the canonical orders snapshot. A refresh fetches
// the complete window from the upstream listing and replaces the stored
// snapshot wholesale with a single put; readers therefore never observe
// a mix of old and new orders.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eo-tracker/config"
	"eo-tracker/kvstore"
	"eo-tracker/models"
)

var (
	// ErrNoSnapshot means no refresh has completed yet. The API layer
	// reports "not yet available" and triggers a refresh instead of
	// blocking on the full fetch.
	ErrNoSnapshot = errors.New("cache: no snapshot available")

	// ErrOrderNotFound means the document number is not in the current
	// snapshot. Distinct from a missing summary, which is a property of
	// the summary store.
	ErrOrderNotFound = errors.New("cache: order not found")
)

// OrderFetcher is the upstream listing collaborator.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, from, to time.Time) ([]models.ExecutiveOrder, error)
}

// Enqueuer receives the refreshed order set so new documents get
// summarization work queued without a second explicit step.
type Enqueuer interface {
	EnqueueNew(ctx context.Context, orders []models.ExecutiveOrder) ([]models.SummaryQueueItem, error)
}

// Manager refreshes and reads the snapshot.
type Manager struct {
	store     kvstore.Store
	fetcher   OrderFetcher
	enqueuer  Enqueuer
	startDate time.Time

	// now is swapped out by tests.
	now func() time.Time
}

// NewManager builds a Manager. enqueuer may be nil, in which case
// refreshes do not touch the summary queue.
func NewManager(store kvstore.Store, fetcher OrderFetcher, enqueuer Enqueuer, cfg config.FederalRegisterConfig) (*Manager, error) {
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse federal_register.start_date: %w", err)
	}
	return &Manager{
		store:     store,
		fetcher:   fetcher,
		enqueuer:  enqueuer,
		startDate: start,
		now:       time.Now,
	}, nil
}

// Refresh fetches the full order set for the configured window, wraps it
// with the current timestamp and persists it, replacing any prior
// snapshot in full. A fetch failure aborts the refresh: the old snapshot
// stays untouched, never a partial one. When an enqueuer is attached the
// newly queued items are returned so callers can publish events for them.
func (m *Manager) Refresh(ctx context.Context) (*models.OrderSnapshot, []models.SummaryQueueItem, error) {
	orders, err := m.fetcher.FetchOrders(ctx, m.startDate, m.now())
	if err != nil {
		return nil, nil, fmt.Errorf("refresh snapshot: %w", err)
	}

	snapshot := &models.OrderSnapshot{
		LastUpdated: m.now(),
		Orders:      orders,
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := m.store.Put(ctx, kvstore.KeySnapshot, string(data)); err != nil {
		return nil, nil, fmt.Errorf("persist snapshot: %w", err)
	}

	var enqueued []models.SummaryQueueItem
	if m.enqueuer != nil {
		enqueued, err = m.enqueuer.EnqueueNew(ctx, orders)
		if err != nil {
			return nil, nil, fmt.Errorf("enqueue new orders: %w", err)
		}
	}

	return snapshot, enqueued, nil
}

// Snapshot returns the stored snapshot, or ErrNoSnapshot when no refresh
// has completed yet.
func (m *Manager) Snapshot(ctx context.Context) (*models.OrderSnapshot, error) {
	raw, err := m.store.Get(ctx, kvstore.KeySnapshot)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snapshot models.OrderSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// Order looks up one record in the current snapshot.
func (m *Manager) Order(ctx context.Context, documentNumber string) (models.ExecutiveOrder, error) {
	snapshot, err := m.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return models.ExecutiveOrder{}, ErrOrderNotFound
		}
		return models.ExecutiveOrder{}, err
	}

	order, ok := snapshot.Find(documentNumber)
	if !ok {
		return models.ExecutiveOrder{}, ErrOrderNotFound
	}
	return order, nil
}
