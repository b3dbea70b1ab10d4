// Package fetcher pulls executive-order listings and raw document text
// from the Federal Register API.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"eo-tracker/config"
	"eo-tracker/models"
)

const FETCH_TIMEOUT = 30 * time.Second

// StatusError reports a non-success upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.URL)
}

// Client queries the Federal Register documents API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

func NewClient(cfg config.FederalRegisterConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: FETCH_TIMEOUT,
		},
	}
}

// listResponse is the paged shape of /documents.json.
type listResponse struct {
	Count      int          `json:"count"`
	TotalPages int          `json:"total_pages"`
	Results    []listResult `json:"results"`
}

type listResult struct {
	DocumentNumber       string `json:"document_number"`
	ExecutiveOrderNumber any    `json:"executive_order_number"`
	Title                string `json:"title"`
	President            struct {
		Name string `json:"name"`
	} `json:"president"`
	PublicationDate string `json:"publication_date"`
	SigningDate     string `json:"signing_date"`
	RawTextURL      string `json:"raw_text_url"`
	PDFURL          string `json:"pdf_url"`
	Type            string `json:"type"`
}

// FetchOrders retrieves every executive order signed in [from, to],
// following pagination until exhausted. Any page failure aborts the
// whole fetch so callers never see a partial listing.
func (c *Client) FetchOrders(ctx context.Context, from, to time.Time) ([]models.ExecutiveOrder, error) {
	var orders []models.ExecutiveOrder

	page := 1
	for {
		pageURL := c.listURL(from, to, page)
		resp, err := c.getJSON(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch orders page %d: %w", page, err)
		}

		for _, r := range resp.Results {
			orders = append(orders, normalize(r))
		}

		if page >= resp.TotalPages || len(resp.Results) == 0 {
			break
		}
		page++
	}

	return orders, nil
}

// FetchRawText downloads the raw document body from rawTextURL. The
// Federal Register serves these as XHTML; the parser layer strips them
// down to plain text before summarization.
func (c *Client) FetchRawText(ctx context.Context, rawTextURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawTextURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("build raw text request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch raw text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &StatusError{URL: rawTextURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read raw text body: %w", err)
	}

	return string(body), resp.Header.Get("Content-Type"), nil
}

func (c *Client) listURL(from, to time.Time, page int) string {
	q := url.Values{}
	q.Set("conditions[presidential_document_type]", "executive_order")
	q.Set("conditions[type][]", "PRESDOCU")
	q.Set("conditions[correction]", "0")
	q.Set("conditions[signing_date][gte]", from.Format("2006-01-02"))
	q.Set("conditions[signing_date][lte]", to.Format("2006-01-02"))
	for _, f := range []string{
		"document_number", "executive_order_number", "title", "president",
		"publication_date", "signing_date", "raw_text_url", "pdf_url", "type",
	} {
		q.Add("fields[]", f)
	}
	q.Set("order", "executive_order")
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))
	return c.baseURL + "/documents.json?" + q.Encode()
}

func (c *Client) getJSON(ctx context.Context, pageURL string) (*listResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode listing response: %w", err)
	}
	return &out, nil
}

// normalize maps one upstream result to the internal record shape. The
// API is inconsistent about executive_order_number (string vs number),
// so both are accepted.
func normalize(r listResult) models.ExecutiveOrder {
	return models.ExecutiveOrder{
		DocumentNumber:       r.DocumentNumber,
		ExecutiveOrderNumber: eoNumberString(r.ExecutiveOrderNumber),
		Title:                r.Title,
		President:            r.President.Name,
		PublicationDate:      r.PublicationDate,
		SigningDate:          r.SigningDate,
		RawTextURL:           r.RawTextURL,
		PDFURL:               r.PDFURL,
		Type:                 r.Type,
	}
}

func eoNumberString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatInt(int64(n), 10)
	default:
		return ""
	}
}
