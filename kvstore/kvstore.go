// Package kvstore is the durable string-keyed storage substrate. The
// snapshot and the summary queue are each a single value under a fixed
// key; summaries get one entry per document. Callers follow a
// read-modify-write discipline with last-writer-wins semantics; there is
// no locking or optimistic concurrency token.
package kvstore

import (
	"context"
	"errors"
)

// Fixed keys and prefixes used by the cache and queue layers.
const (
	KeySnapshot     = "orders:snapshot"
	KeySummaryQueue = "summary:queue"
	PrefixSummary   = "summary:doc:"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("kvstore: key not found")

// SummaryKey builds the storage key for one document's summary.
func SummaryKey(documentNumber string) string {
	return PrefixSummary + documentNumber
}

// Store is the get/put/list contract the core depends on. No
// transactions, no TTLs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
