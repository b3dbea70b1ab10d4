package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eo-tracker/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.FederalRegisterConfig{
		BaseURL:  baseURL,
		PageSize: 2,
	})
}

func TestFetchOrdersFollowsPagination(t *testing.T) {
	pages := map[string]string{
		"1": `{"count":3,"total_pages":2,"results":[
			{"document_number":"2025-001","executive_order_number":"14100","title":"First Order","president":{"name":"Example President"},"publication_date":"2025-01-21","signing_date":"2025-01-20","raw_text_url":"https://example.org/raw/2025-001","pdf_url":"https://example.org/pdf/2025-001","type":"Executive Order"},
			{"document_number":"2025-002","executive_order_number":14101,"title":"Second Order","president":{"name":"Example President"},"publication_date":"2025-01-22","signing_date":"2025-01-21","raw_text_url":"https://example.org/raw/2025-002","pdf_url":"https://example.org/pdf/2025-002","type":"Executive Order"}]}`,
		"2": `{"count":3,"total_pages":2,"results":[
			{"document_number":"2025-003","executive_order_number":null,"title":"Third Order","president":{"name":"Example President"},"publication_date":"2025-01-23","signing_date":"2025-01-22","raw_text_url":"https://example.org/raw/2025-003","pdf_url":"https://example.org/pdf/2025-003","type":"Executive Order"}]}`,
	}

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		page := r.URL.Query().Get("page")
		body, ok := pages[page]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	from := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	orders, err := c.FetchOrders(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Len(t, requests, 2)

	assert.Equal(t, "2025-001", orders[0].DocumentNumber)
	assert.Equal(t, "14100", orders[0].ExecutiveOrderNumber)
	// Number-typed executive_order_number is normalized to a string.
	assert.Equal(t, "14101", orders[1].ExecutiveOrderNumber)
	// Missing number stays empty.
	assert.Equal(t, "", orders[2].ExecutiveOrderNumber)
	assert.Equal(t, "Example President", orders[0].President)
}

func TestFetchOrdersSendsWindowAndFilters(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count":0,"total_pages":1,"results":[]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	from := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchOrders(context.Background(), from, to)
	require.NoError(t, err)
	require.NotNil(t, captured)

	q := captured.URL.Query()
	assert.Equal(t, "executive_order", q.Get("conditions[presidential_document_type]"))
	assert.Equal(t, "2025-01-20", q.Get("conditions[signing_date][gte]"))
	assert.Equal(t, "2025-06-01", q.Get("conditions[signing_date][lte]"))
	assert.Equal(t, "2", q.Get("per_page"))
	assert.Contains(t, q["fields[]"], "raw_text_url")
}

func TestFetchOrdersAbortsOnPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count":4,"total_pages":2,"results":[
			{"document_number":"2025-001","title":"First","president":{"name":"P"},"publication_date":"2025-01-21","signing_date":"2025-01-20","raw_text_url":"u","pdf_url":"u","type":"Executive Order"}]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	orders, err := c.FetchOrders(context.Background(),
		time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Nil(t, orders, "a failed page must not yield a partial listing")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestFetchRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xhtml+xml")
		fmt.Fprint(w, "<html><body>order text</body></html>")
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	body, contentType, err := c.FetchRawText(context.Background(), srv.URL+"/raw")
	require.NoError(t, err)
	assert.Contains(t, body, "order text")
	assert.Equal(t, "application/xhtml+xml", contentType)
}

func TestFetchRawTextStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, _, err := c.FetchRawText(context.Background(), srv.URL+"/raw")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
