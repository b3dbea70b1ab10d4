package models

import "time"

// ExecutiveOrder is one upstream Federal Register document, normalized to
// the subset the rest of the system consumes. Records are immutable once
// fetched; a snapshot refresh replaces them wholesale.
type ExecutiveOrder struct {
	DocumentNumber       string `json:"document_number"`
	ExecutiveOrderNumber string `json:"executive_order_number,omitempty"`
	Title                string `json:"title"`
	President            string `json:"president"`
	PublicationDate      string `json:"publication_date"`
	SigningDate          string `json:"signing_date"`
	RawTextURL           string `json:"raw_text_url"`
	PDFURL               string `json:"pdf_url"`
	Type                 string `json:"type"`
}

// OrderSnapshot is the full cached order set plus its refresh timestamp.
// One logical row per deployment, stored under a fixed key and overwritten
// with a single put on every refresh. No partial updates.
type OrderSnapshot struct {
	LastUpdated time.Time        `json:"last_updated"`
	Orders      []ExecutiveOrder `json:"orders"`
}

// Find returns the record with the given document number, if present.
func (s *OrderSnapshot) Find(documentNumber string) (ExecutiveOrder, bool) {
	for _, o := range s.Orders {
		if o.DocumentNumber == documentNumber {
			return o, true
		}
	}
	return ExecutiveOrder{}, false
}
