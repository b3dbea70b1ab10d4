package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eo-tracker/config"
	"eo-tracker/kvstore"
	"eo-tracker/models"
)

type stubTextSource struct {
	text string
	err  error
}

func (s *stubTextSource) FetchRawText(ctx context.Context, url string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return s.text, "text/plain", nil
}

type stubGenerator struct {
	summary string
	err     error
	calls   int
}

func (g *stubGenerator) Summarize(ctx context.Context, text string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.summary, nil
}

func (g *stubGenerator) ModelName() string { return "stub-model" }

type stubLimiter struct {
	allowFirst int // grants this many reservations, then reports quota exhausted
	granted    int
}

func (l *stubLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	if l.granted >= l.allowFirst {
		return false, nil
	}
	l.granted++
	return true, nil
}

func testConfig() config.QueueConfig {
	return config.QueueConfig{
		MaxConcurrentRequests: 5,
		MaxRetries:            3,
		RetryDelay:            config.Duration(30 * time.Minute),
		ProcessingTimeout:     config.Duration(2 * time.Hour),
	}
}

func testOrders(docs ...string) []models.ExecutiveOrder {
	out := make([]models.ExecutiveOrder, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ExecutiveOrder{
			DocumentNumber: d,
			Title:          "Order " + d,
			RawTextURL:     "https://example.org/raw/" + d,
		})
	}
	return out
}

func newTestQueue(gen *stubGenerator) (*Queue, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	if gen == nil {
		gen = &stubGenerator{summary: "## Summary\n\nfine."}
	}
	q := New(store, &stubTextSource{text: "document body"}, gen, nil, testConfig())
	return q, store
}

func TestEnqueueNewDeduplicates(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(nil)

	added, err := q.EnqueueNew(ctx, testOrders("2025-001", "2025-002"))
	require.NoError(t, err)
	require.Len(t, added, 2)

	// Overlapping refresh: one known, one new.
	added, err = q.EnqueueNew(ctx, testOrders("2025-002", "2025-003"))
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "2025-003", added[0].DocumentNumber)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "2025-001", items[0].DocumentNumber)
	assert.Equal(t, "2025-002", items[1].DocumentNumber)
	assert.Equal(t, "2025-003", items[2].DocumentNumber)
	for _, it := range items {
		assert.Equal(t, models.StatusPending, it.Status)
		assert.Zero(t, it.Attempts)
		assert.Nil(t, it.LastAttempt)
	}
}

func TestEnqueueNewNothingNewDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	q, store := newTestQueue(nil)

	_, err := q.EnqueueNew(ctx, testOrders("2025-001"))
	require.NoError(t, err)
	before, err := store.Get(ctx, kvstore.KeySummaryQueue)
	require.NoError(t, err)

	added, err := q.EnqueueNew(ctx, testOrders("2025-001"))
	require.NoError(t, err)
	assert.Empty(t, added)

	after, err := store.Get(ctx, kvstore.KeySummaryQueue)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProcessBatchRespectsConcurrencyCap(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{summary: "## Summary\n\nok"}
	q, _ := newTestQueue(gen)

	docs := []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7"}
	_, err := q.EnqueueNew(ctx, testOrders(docs...))
	require.NoError(t, err)

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, 5, gen.calls)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	for i, it := range items {
		if i < 5 {
			assert.Equal(t, models.StatusCompleted, it.Status, it.DocumentNumber)
		} else {
			assert.Equal(t, models.StatusPending, it.Status, it.DocumentNumber)
		}
	}

	// Second batch picks up the remainder.
	results, err = q.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestProcessBatchSuccessRecordsSummary(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{summary: "## What It Does\n\nThings."}
	q, _ := newTestQueue(gen)

	_, err := q.EnqueueNew(ctx, testOrders("2025-100"))
	require.NoError(t, err)

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusCompleted, results[0].Status)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "stub-model", results[0].ModelName)
	assert.Equal(t, string(models.FormatMarkdown), results[0].Format)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, items[0].Status)
	assert.Equal(t, 1, items[0].Attempts)
	require.NotNil(t, items[0].LastAttempt)

	s, err := q.Summary(ctx, "2025-100")
	require.NoError(t, err)
	assert.Equal(t, "## What It Does\n\nThings.", s.Summary)
	assert.Equal(t, models.FormatMarkdown, s.Format)
	assert.Equal(t, "stub-model", s.ModelName)
}

func TestProcessBatchFailureMarksFailedWithoutSummary(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("model overloaded")}
	q, _ := newTestQueue(gen)

	_, err := q.EnqueueNew(ctx, testOrders("2025-200"))
	require.NoError(t, err)

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, items[0].Status)
	assert.Equal(t, 1, items[0].Attempts)

	_, err = q.Summary(ctx, "2025-200")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestFailedItemWaitsOutRetryDelay(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("boom")}
	q, _ := newTestQueue(gen)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }

	_, err := q.EnqueueNew(ctx, testOrders("2025-300"))
	require.NoError(t, err)

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// One second short of the delay: nothing eligible.
	q.now = func() time.Time { return base.Add(30*time.Minute - time.Second) }
	results, err = q.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)

	// At the delay boundary the item comes back.
	q.now = func() time.Time { return base.Add(30 * time.Minute) }
	results, err = q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, items[0].Attempts)
}

func TestExhaustedItemNeverRetries(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("always fails")}
	q, _ := newTestQueue(gen)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	current := base
	q.now = func() time.Time { return current }

	_, err := q.EnqueueNew(ctx, testOrders("2025-400"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		results, err := q.ProcessBatch(ctx)
		require.NoError(t, err)
		require.Len(t, results, 1, "attempt %d", i+1)
		current = current.Add(time.Hour)
	}

	// Attempts exhausted: even far in the future nothing runs.
	current = base.Add(100 * 24 * time.Hour)
	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, items[0].Status)
	assert.Equal(t, 3, items[0].Attempts)
	assert.Equal(t, 3, gen.calls)
}

func TestStaleProcessingItemBecomesEligible(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(nil)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	stale := base.Add(-3 * time.Hour)
	fresh := base.Add(-10 * time.Minute)
	q.now = func() time.Time { return base }

	// A crashed batch leaves items stuck in processing.
	items := []models.SummaryQueueItem{
		{DocumentNumber: "stuck", RawTextURL: "u", Status: models.StatusProcessing, Attempts: 1, LastAttempt: &stale},
		{DocumentNumber: "in-flight", RawTextURL: "u", Status: models.StatusProcessing, Attempts: 1, LastAttempt: &fresh},
	}
	require.NoError(t, q.persist(ctx, items))

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "stuck", results[0].DocumentNumber)
	assert.Equal(t, models.StatusCompleted, results[0].Status)

	after, err := q.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, after[1].Status)
	assert.Equal(t, 1, after[1].Attempts)
}

func TestDailyQuotaStopsBatchEarly(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	gen := &stubGenerator{summary: "s"}
	limiter := &stubLimiter{allowFirst: 2}
	q := New(store, &stubTextSource{text: "body"}, gen, limiter, testConfig())

	_, err := q.EnqueueNew(ctx, testOrders("a", "b", "c", "d"))
	require.NoError(t, err)

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	items, err := q.Items(ctx)
	require.NoError(t, err)
	// Skipped items keep their clean pending state for the next batch.
	assert.Equal(t, models.StatusPending, items[2].Status)
	assert.Equal(t, models.StatusPending, items[3].Status)
	assert.Zero(t, items[2].Attempts)
}

func TestRequeueResetsAttemptBudget(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("nope")}
	q, _ := newTestQueue(gen)

	current := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return current }

	order := testOrders("2025-500")[0]
	_, err := q.EnqueueNew(ctx, []models.ExecutiveOrder{order})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := q.ProcessBatch(ctx)
		require.NoError(t, err)
		current = current.Add(time.Hour)
	}

	require.NoError(t, q.Requeue(ctx, order))

	items, err := q.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusPending, items[0].Status)
	assert.Zero(t, items[0].Attempts)
	assert.Nil(t, items[0].LastAttempt)

	gen.err = nil
	gen.summary = "second try"
	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusCompleted, results[0].Status)
}

func TestRequeueUnknownOrderAppends(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(nil)

	require.NoError(t, q.Requeue(ctx, testOrders("2025-600")[0]))

	items, err := q.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2025-600", items[0].DocumentNumber)
	assert.Equal(t, models.StatusPending, items[0].Status)
}

func TestQueueStateRoundTripsThroughStore(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("fail once")}
	store := kvstore.NewMemoryStore()
	q := New(store, &stubTextSource{text: "body"}, gen, nil, testConfig())

	_, err := q.EnqueueNew(ctx, testOrders("2025-700"))
	require.NoError(t, err)
	_, err = q.ProcessBatch(ctx)
	require.NoError(t, err)

	// A fresh queue over the same store sees identical state.
	q2 := New(store, &stubTextSource{text: "body"}, gen, nil, testConfig())
	items, err := q2.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusFailed, items[0].Status)
	assert.Equal(t, 1, items[0].Attempts)
	assert.NotNil(t, items[0].LastAttempt)
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(nil)

	results, err := q.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)
}
