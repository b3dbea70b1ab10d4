package models

import "time"

// QueueStatus is the lifecycle state of one summarization work item.
type QueueStatus string

const (
	StatusPending    QueueStatus = "pending"
	StatusProcessing QueueStatus = "processing"
	StatusCompleted  QueueStatus = "completed"
	StatusFailed     QueueStatus = "failed"
)

// SummaryQueueItem is one unit of summarization work for a single
// document. At most one item exists per document number; items are
// appended when a document first shows up in a refresh and are never
// removed. A failed item stays retryable until attempts reaches the
// configured ceiling.
type SummaryQueueItem struct {
	DocumentNumber string      `json:"document_number"`
	RawTextURL     string      `json:"raw_text_url"`
	Title          string      `json:"title,omitempty"`
	Status         QueueStatus `json:"status"`
	Attempts       int         `json:"attempts"`
	LastAttempt    *time.Time  `json:"last_attempt,omitempty"`
}
