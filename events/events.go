package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies a domain event.
type EventType string

const (
	SnapshotRefreshRequested EventType = "orders.refresh_requested"
	SnapshotRefreshed        EventType = "orders.snapshot_refreshed"
	OrderSummaryRequested    EventType = "order.summary_requested"
	OrderSummarized          EventType = "order.summarized"
)

// BaseEvent is the common head of every domain event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// SnapshotRefreshRequestedEvent asks for an out-of-band snapshot refresh
// (manual API trigger or the feed watcher spotting a new document).
type SnapshotRefreshRequestedEvent struct {
	BaseEvent
	Reason string `json:"reason,omitempty"`
}

// SnapshotRefreshedEvent announces a completed snapshot refresh.
type SnapshotRefreshedEvent struct {
	BaseEvent
	RefreshedAt        time.Time `json:"refreshed_at"`
	OrderCount         int       `json:"order_count"`
	NewDocumentNumbers []string  `json:"new_document_numbers,omitempty"`
}

// OrderSummaryRequestedEvent triggers queue processing for newly
// enqueued or requeued documents.
type OrderSummaryRequestedEvent struct {
	BaseEvent
	DocumentNumber string `json:"document_number"`
	RawTextURL     string `json:"raw_text_url"`
	Title          string `json:"title,omitempty"`
}

// OrderSummarizedEvent announces a stored summary.
type OrderSummarizedEvent struct {
	BaseEvent
	DocumentNumber string `json:"document_number"`
	ModelName      string `json:"model_name"`
	Format         string `json:"format"`
}

// SerializeEvent marshals an event and reports its type.
func SerializeEvent(event interface{}) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case SnapshotRefreshRequestedEvent:
		eventType = e.Type
	case SnapshotRefreshedEvent:
		eventType = e.Type
	case OrderSummaryRequestedEvent:
		eventType = e.Type
	case OrderSummarizedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}

// DeserializeEvent unmarshals payload bytes into the struct matching the
// given type.
func DeserializeEvent(eventType EventType, data []byte) (interface{}, error) {
	var event interface{}

	switch eventType {
	case SnapshotRefreshRequested:
		event = &SnapshotRefreshRequestedEvent{}
	case SnapshotRefreshed:
		event = &SnapshotRefreshedEvent{}
	case OrderSummaryRequested:
		event = &OrderSummaryRequestedEvent{}
	case OrderSummarized:
		event = &OrderSummarizedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}
