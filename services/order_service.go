package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eo-tracker/cache"
	"eo-tracker/config"
	"eo-tracker/dto"
	"eo-tracker/eventbus"
	"eo-tracker/events"
	"eo-tracker/models"
	"eo-tracker/queue"
)

// ErrRegenerationDisabled is returned when summary regeneration is
// turned off in configuration.
var ErrRegenerationDisabled = errors.New("summary regeneration is disabled")

// ErrOrderNotFound mirrors the cache sentinel for callers that only
// import the service layer.
var ErrOrderNotFound = cache.ErrOrderNotFound

// EventPublisher is the slice of the event bus the service needs.
// Satisfied by eventbus.EventBus; nil disables event publication.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event eventbus.Event) error
}

// OrderService encapsulates business logic for executive orders and
// DTO mapping.
type OrderService struct {
	cache             *cache.Manager
	queue             *queue.Queue
	bus               EventPublisher
	source            string
	allowRegeneration bool
}

func NewOrderService(c *cache.Manager, q *queue.Queue, bus EventPublisher, source string, apiCfg config.APIConfig) *OrderService {
	return &OrderService{
		cache:             c,
		queue:             q,
		bus:               bus,
		source:            source,
		allowRegeneration: apiCfg.AllowRegeneration,
	}
}

// List returns all cached orders with their summary status. When no
// snapshot exists yet a refresh request event is published (best
// effort) and cache.ErrNoSnapshot is returned so the caller can report
// that data is still being prepared.
func (s *OrderService) List(ctx context.Context) (*dto.OrderListDTO, error) {
	snap, err := s.cache.Snapshot(ctx)
	if errors.Is(err, cache.ErrNoSnapshot) {
		s.publishRefreshRequested(ctx, "initial snapshot missing")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	itemsByDoc, err := s.queueIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.OrderListDTO{
		LastUpdated: snap.LastUpdated,
		Count:       len(snap.Orders),
		Data:        make([]dto.OrderDTO, 0, len(snap.Orders)),
	}
	for _, o := range snap.Orders {
		out.Data = append(out.Data, dto.NewOrderDTO(o, itemsByDoc[o.DocumentNumber]))
	}
	return out, nil
}

// Get returns one order with its summary. Orders whose summary is not
// yet completed get a placeholder markdown body.
func (s *OrderService) Get(ctx context.Context, documentNumber string) (*dto.OrderDetailDTO, error) {
	order, err := s.cache.Order(ctx, documentNumber)
	if err != nil {
		return nil, err
	}

	itemsByDoc, err := s.queueIndex(ctx)
	if err != nil {
		return nil, err
	}
	item := itemsByDoc[documentNumber]

	detail := &dto.OrderDetailDTO{OrderDTO: dto.NewOrderDTO(order, item)}

	summary, err := s.queue.Summary(ctx, documentNumber)
	switch {
	case err == nil:
		detail.Summary = dto.SummaryDTO{
			Summary:     summary.Summary,
			Format:      string(summary.Format),
			ModelName:   summary.ModelName,
			GeneratedAt: summary.GeneratedAt,
		}
	case errors.Is(err, queue.ErrItemNotFound):
		detail.Summary = placeholderSummary(item)
	default:
		return nil, err
	}

	return detail, nil
}

// Refresh fetches the current order set, replaces the cached snapshot
// and enqueues new documents for summarization. Snapshot and summary
// request events are published for downstream workers.
func (s *OrderService) Refresh(ctx context.Context) (*dto.RefreshResultDTO, error) {
	snap, enqueued, err := s.cache.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	s.publishRefreshed(ctx, snap, enqueued)

	return &dto.RefreshResultDTO{
		LastUpdated: snap.LastUpdated,
		OrderCount:  len(snap.Orders),
		Enqueued:    len(enqueued),
	}, nil
}

// Regenerate forces a fresh summary for one order by resetting its
// queue entry. Gated by the api.allow_regeneration setting.
func (s *OrderService) Regenerate(ctx context.Context, documentNumber string) error {
	if !s.allowRegeneration {
		return ErrRegenerationDisabled
	}

	order, err := s.cache.Order(ctx, documentNumber)
	if err != nil {
		return err
	}
	if err := s.queue.Requeue(ctx, order); err != nil {
		return err
	}

	s.publishSummaryRequested(ctx, models.SummaryQueueItem{
		DocumentNumber: order.DocumentNumber,
		RawTextURL:     order.RawTextURL,
		Title:          order.Title,
	})
	return nil
}

// ProcessQueue runs one summarization batch and announces every stored
// summary to downstream consumers. Completed items are announced even
// when the batch itself was cut short, since their summaries are
// already persisted.
func (s *OrderService) ProcessQueue(ctx context.Context) ([]queue.Result, error) {
	results, err := s.queue.ProcessBatch(ctx)
	for _, r := range results {
		if r.Status == models.StatusCompleted {
			s.publishSummarized(ctx, r)
		}
	}
	return results, err
}

func (s *OrderService) queueIndex(ctx context.Context) (map[string]*models.SummaryQueueItem, error) {
	items, err := s.queue.Items(ctx)
	if err != nil {
		return nil, err
	}
	byDoc := make(map[string]*models.SummaryQueueItem, len(items))
	for i := range items {
		byDoc[items[i].DocumentNumber] = &items[i]
	}
	return byDoc, nil
}

func placeholderSummary(item *models.SummaryQueueItem) dto.SummaryDTO {
	body := "## Summary Pending\n\nAn AI-generated summary for this executive order is being prepared. Check back shortly."
	if item != nil && item.Status == models.StatusFailed {
		body = "## Summary Unavailable\n\nSummary generation for this executive order has not succeeded yet. It will be retried automatically."
	}
	return dto.SummaryDTO{
		Summary: body,
		Format:  string(models.FormatMarkdown),
	}
}

func (s *OrderService) newBase(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    s.source,
		Version:   "1.0",
	}
}

func (s *OrderService) publish(ctx context.Context, event interface{}) {
	if s.bus == nil {
		return
	}
	data, eventType, err := events.SerializeEvent(event)
	if err != nil {
		config.Logger.Error(fmt.Sprintf("failed to serialize %T: %v", event, err))
		return
	}
	evt, err := eventbus.NewJSONEvent(uuid.New().String(), json.RawMessage(data), len(eventbus.RetryDelays))
	if err != nil {
		config.Logger.Error(fmt.Sprintf("failed to build %s event: %v", eventType, err))
		return
	}
	if err := s.bus.Publish(ctx, eventbus.TopicOrderEvents.Base(), evt); err != nil {
		config.Logger.Error(fmt.Sprintf("failed to publish %s event: %v", eventType, err))
	}
}

func (s *OrderService) publishRefreshRequested(ctx context.Context, reason string) {
	s.publish(ctx, events.SnapshotRefreshRequestedEvent{
		BaseEvent: s.newBase(events.SnapshotRefreshRequested),
		Reason:    reason,
	})
}

func (s *OrderService) publishRefreshed(ctx context.Context, snap *models.OrderSnapshot, enqueued []models.SummaryQueueItem) {
	newDocs := make([]string, 0, len(enqueued))
	for _, item := range enqueued {
		newDocs = append(newDocs, item.DocumentNumber)
	}
	s.publish(ctx, events.SnapshotRefreshedEvent{
		BaseEvent:          s.newBase(events.SnapshotRefreshed),
		RefreshedAt:        snap.LastUpdated,
		OrderCount:         len(snap.Orders),
		NewDocumentNumbers: newDocs,
	})
	for _, item := range enqueued {
		s.publishSummaryRequested(ctx, item)
	}
}

func (s *OrderService) publishSummarized(ctx context.Context, r queue.Result) {
	s.publish(ctx, events.OrderSummarizedEvent{
		BaseEvent:      s.newBase(events.OrderSummarized),
		DocumentNumber: r.DocumentNumber,
		ModelName:      r.ModelName,
		Format:         r.Format,
	})
}

func (s *OrderService) publishSummaryRequested(ctx context.Context, item models.SummaryQueueItem) {
	s.publish(ctx, events.OrderSummaryRequestedEvent{
		BaseEvent:      s.newBase(events.OrderSummaryRequested),
		DocumentNumber: item.DocumentNumber,
		RawTextURL:     item.RawTextURL,
		Title:          item.Title,
	})
}
