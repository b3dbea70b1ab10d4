package models

import "time"

// SummaryFormat tags how a stored summary should be interpreted.
type SummaryFormat string

const (
	FormatMarkdown SummaryFormat = "markdown"
	FormatText     SummaryFormat = "text"
)

// OrderSummary stores the generated summary for one document. Written
// once per successful generation; regeneration overwrites it.
type OrderSummary struct {
	DocumentNumber string        `json:"document_number"`
	Summary        string        `json:"summary"`
	Format         SummaryFormat `json:"format"`
	ModelName      string        `json:"model_name"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
