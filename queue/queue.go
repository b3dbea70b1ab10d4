// Package queue drives background summary generation. The whole queue is
// one JSON sequence under a fixed key, loaded and rewritten on every
// mutation; overlapping triggers race with last-writer-wins semantics,
// which is the accepted storage discipline here, not a bug to fix.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eo-tracker/config"
	"eo-tracker/kvstore"
	"eo-tracker/models"
	"eo-tracker/parser"
	"eo-tracker/summarizer"
)

// ErrItemNotFound is returned when a document has no queue item.
var ErrItemNotFound = errors.New("queue: item not found")

// TextSource fetches raw document bodies. Satisfied by fetcher.Client.
type TextSource interface {
	FetchRawText(ctx context.Context, url string) (string, string, error)
}

// Limiter gates generator calls. Satisfied by quota.SummaryQuotaLimiter.
type Limiter interface {
	WaitAndReserve(ctx context.Context) (bool, error)
}

// Result reports what happened to one item during a batch. ModelName
// and Format are set only for completed items.
type Result struct {
	DocumentNumber string
	Status         models.QueueStatus
	ModelName      string
	Format         string
	Err            error
}

// Queue bounds concurrent summarization work and retries transient
// failures with a fixed delay gate.
type Queue struct {
	store     kvstore.Store
	texts     TextSource
	generator summarizer.Generator
	limiter   Limiter
	cfg       config.QueueConfig

	// now is swapped out by tests exercising the retry-delay gate.
	now func() time.Time
}

// New builds a Queue. limiter may be nil to disable quota gating.
func New(store kvstore.Store, texts TextSource, generator summarizer.Generator, limiter Limiter, cfg config.QueueConfig) *Queue {
	return &Queue{
		store:     store,
		texts:     texts,
		generator: generator,
		limiter:   limiter,
		cfg:       cfg,
		now:       time.Now,
	}
}

// EnqueueNew appends a pending item for every order whose document number
// is not already tracked, preserving input order. Called on every
// snapshot refresh, so repeated overlapping input must never produce
// duplicates. Returns the items actually appended.
func (q *Queue) EnqueueNew(ctx context.Context, orders []models.ExecutiveOrder) ([]models.SummaryQueueItem, error) {
	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.DocumentNumber] = true
	}

	var added []models.SummaryQueueItem
	for _, o := range orders {
		if known[o.DocumentNumber] {
			continue
		}
		known[o.DocumentNumber] = true
		item := models.SummaryQueueItem{
			DocumentNumber: o.DocumentNumber,
			RawTextURL:     o.RawTextURL,
			Title:          o.Title,
			Status:         models.StatusPending,
			Attempts:       0,
		}
		items = append(items, item)
		added = append(added, item)
	}

	if len(added) == 0 {
		return nil, nil
	}
	if err := q.persist(ctx, items); err != nil {
		return nil, err
	}
	return added, nil
}

// Items returns the persisted queue in order.
func (q *Queue) Items(ctx context.Context) ([]models.SummaryQueueItem, error) {
	return q.load(ctx)
}

// Requeue resets the item for the given order back to pending with a
// fresh attempt budget, appending a new item if none exists. Used by the
// manual regeneration trigger.
func (q *Queue) Requeue(ctx context.Context, order models.ExecutiveOrder) error {
	items, err := q.load(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range items {
		if items[i].DocumentNumber == order.DocumentNumber {
			items[i].Status = models.StatusPending
			items[i].Attempts = 0
			items[i].LastAttempt = nil
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.SummaryQueueItem{
			DocumentNumber: order.DocumentNumber,
			RawTextURL:     order.RawTextURL,
			Title:          order.Title,
			Status:         models.StatusPending,
		})
	}
	return q.persist(ctx, items)
}

// ProcessBatch takes at most MaxConcurrentRequests eligible items in
// queue order and works through them sequentially. Item-level failures
// are converted into status updates and never abort the batch; storage
// failures do abort it, since a lost queue write would desynchronize
// state across the next retry.
func (q *Queue) ProcessBatch(ctx context.Context) ([]Result, error) {
	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}

	now := q.now()
	var batch []int
	for i := range items {
		if len(batch) >= q.cfg.MaxConcurrentRequests {
			break
		}
		if q.eligible(items[i], now) {
			batch = append(batch, i)
		}
	}
	if len(batch) == 0 {
		return nil, nil
	}

	var results []Result
	for _, i := range batch {
		if q.limiter != nil {
			allowed, err := q.limiter.WaitAndReserve(ctx)
			if err != nil {
				return results, err
			}
			if !allowed {
				// Daily quota exhausted: leave the remaining items
				// untouched for a later batch.
				config.Logger.Warn("summary daily quota exceeded, stopping batch early")
				break
			}
		}

		// Mark the item before doing any work so an interruption is
		// visible as a stuck processing state rather than a silent loss.
		attemptTime := q.now()
		items[i].Status = models.StatusProcessing
		items[i].Attempts++
		items[i].LastAttempt = &attemptTime
		if err := q.persist(ctx, items); err != nil {
			return results, err
		}

		summary, procErr := q.processItem(ctx, items[i])
		if procErr != nil {
			config.Logger.Errorf("summarization failed for %s (attempt %d): %v",
				items[i].DocumentNumber, items[i].Attempts, procErr)
			items[i].Status = models.StatusFailed
		} else {
			if err := q.putSummary(ctx, summary); err != nil {
				return results, err
			}
			items[i].Status = models.StatusCompleted
		}

		// Persist after every item, not once at the end: an interrupted
		// batch then loses at most the in-flight item's final state.
		if err := q.persist(ctx, items); err != nil {
			return results, err
		}

		res := Result{
			DocumentNumber: items[i].DocumentNumber,
			Status:         items[i].Status,
			Err:            procErr,
		}
		if procErr == nil {
			res.ModelName = summary.ModelName
			res.Format = string(summary.Format)
		}
		results = append(results, res)
	}

	return results, nil
}

// eligible decides whether an item may be picked up now.
func (q *Queue) eligible(item models.SummaryQueueItem, now time.Time) bool {
	switch item.Status {
	case models.StatusPending:
		return true
	case models.StatusFailed:
		if item.Attempts >= q.cfg.MaxRetries {
			return false
		}
		return item.LastAttempt == nil || now.Sub(*item.LastAttempt) >= q.cfg.RetryDelay.Std()
	case models.StatusProcessing:
		// A crash between the processing mark and the completion write
		// strands the item; treat it as retryable once stale.
		if item.Attempts >= q.cfg.MaxRetries {
			return false
		}
		return item.LastAttempt != nil && now.Sub(*item.LastAttempt) >= q.cfg.ProcessingTimeout.Std()
	default:
		return false
	}
}

func (q *Queue) processItem(ctx context.Context, item models.SummaryQueueItem) (*models.OrderSummary, error) {
	raw, contentType, err := q.texts.FetchRawText(ctx, item.RawTextURL)
	if err != nil {
		return nil, fmt.Errorf("fetch raw text: %w", err)
	}

	text, err := parser.ExtractPlainText(raw, contentType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	summary, err := q.generator.Summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	return &models.OrderSummary{
		DocumentNumber: item.DocumentNumber,
		Summary:        summary,
		Format:         models.FormatMarkdown,
		ModelName:      q.generator.ModelName(),
		GeneratedAt:    q.now(),
	}, nil
}

// Summary reads the stored summary for one document, or ErrItemNotFound.
func (q *Queue) Summary(ctx context.Context, documentNumber string) (*models.OrderSummary, error) {
	raw, err := q.store.Get(ctx, kvstore.SummaryKey(documentNumber))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load summary: %w", err)
	}

	var s models.OrderSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

func (q *Queue) putSummary(ctx context.Context, s *models.OrderSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := q.store.Put(ctx, kvstore.SummaryKey(s.DocumentNumber), string(data)); err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	return nil
}

func (q *Queue) load(ctx context.Context) ([]models.SummaryQueueItem, error) {
	raw, err := q.store.Get(ctx, kvstore.KeySummaryQueue)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load queue: %w", err)
	}

	var items []models.SummaryQueueItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode queue: %w", err)
	}
	return items, nil
}

func (q *Queue) persist(ctx context.Context, items []models.SummaryQueueItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	if err := q.store.Put(ctx, kvstore.KeySummaryQueue, string(data)); err != nil {
		return fmt.Errorf("persist queue: %w", err)
	}
	return nil
}
