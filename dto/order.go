package dto

import (
	"time"

	"eo-tracker/models"
)

// OrderDTO exposes the fields API consumers need for a single order.
// Queue bookkeeping is flattened into summary_status/attempts so
// clients do not see raw queue internals.
type OrderDTO struct {
	DocumentNumber       string `json:"document_number"`
	ExecutiveOrderNumber string `json:"executive_order_number,omitempty"`
	Title                string `json:"title"`
	President            string `json:"president,omitempty"`
	PublicationDate      string `json:"publication_date"`
	SigningDate          string `json:"signing_date,omitempty"`
	PDFURL               string `json:"pdf_url,omitempty"`
	SummaryStatus        string `json:"summary_status"`
	SummaryAttempts      int    `json:"summary_attempts,omitempty"`
}

// NewOrderDTO constructs OrderDTO from an order and its queue item.
// A nil item means the order was never enqueued.
func NewOrderDTO(o models.ExecutiveOrder, item *models.SummaryQueueItem) OrderDTO {
	d := OrderDTO{
		DocumentNumber:       o.DocumentNumber,
		ExecutiveOrderNumber: o.ExecutiveOrderNumber,
		Title:                o.Title,
		President:            o.President,
		PublicationDate:      o.PublicationDate,
		SigningDate:          o.SigningDate,
		PDFURL:               o.PDFURL,
		SummaryStatus:        string(models.StatusPending),
	}
	if item != nil {
		d.SummaryStatus = string(item.Status)
		d.SummaryAttempts = item.Attempts
	}
	return d
}

// OrderListDTO is the envelope for the order listing endpoint.
// swagger:model OrderListDTO
type OrderListDTO struct {
	LastUpdated time.Time  `json:"last_updated"`
	Count       int        `json:"count"`
	Data        []OrderDTO `json:"data"`
}

// SummaryDTO carries a generated summary.
type SummaryDTO struct {
	Summary     string    `json:"summary"`
	Format      string    `json:"format"`
	ModelName   string    `json:"model_name,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

// OrderDetailDTO is the single-order response: order metadata plus its
// summary. Pending and failed orders carry a placeholder summary.
// swagger:model OrderDetailDTO
type OrderDetailDTO struct {
	OrderDTO
	Summary SummaryDTO `json:"summary"`
}

// RefreshResultDTO reports the outcome of a snapshot refresh.
// swagger:model RefreshResultDTO
type RefreshResultDTO struct {
	LastUpdated time.Time `json:"last_updated"`
	OrderCount  int       `json:"order_count"`
	Enqueued    int       `json:"enqueued"`
}
