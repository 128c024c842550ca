// Package postgrest implements the record store against the hosted
// database's REST query API. The generic client speaks the PostgREST wire
// dialect (eq. filters, Prefer headers, on_conflict upserts); the typed
// adapter in store.go decodes rows into model structs at the boundary so no
// untyped maps leak out of this package.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin PostgREST HTTP client authenticated with a service key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Client for the given project URL and service key.
func NewClient(baseURL, apiKey string) *Client {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Filters maps column names to values, rendered as ?col=eq.value equality
// filters. Equality is the only operator the admin's queries need.
type Filters map[string]string

func (f Filters) encode(q url.Values) {
	for col, val := range f {
		q.Set(col, "eq."+val)
	}
}

// APIError is a non-2xx response from the query API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	preferValue := "return=representation"
	if prefer != "" {
		preferValue += "," + prefer
	}
	req.Header.Set("Prefer", preferValue)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// Select reads rows from table. columns is a PostgREST select expression
// ("*" or a column list, possibly with embedded resources); order is an
// optional "col.dir" ordering.
func (c *Client) Select(ctx context.Context, table, columns string, filters Filters, order string) ([]byte, error) {
	q := url.Values{}
	q.Set("select", columns)
	filters.encode(q)
	if order != "" {
		q.Set("order", order)
	}
	return c.do(ctx, http.MethodGet, table, q, nil, "")
}

// Insert creates rows and returns their representation.
func (c *Client) Insert(ctx context.Context, table string, rows any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, table, nil, rows, "")
}

// Update patches the rows matching filters and returns the affected rows;
// an empty array means nothing matched.
func (c *Client) Update(ctx context.Context, table string, filters Filters, patch any) ([]byte, error) {
	q := url.Values{}
	filters.encode(q)
	return c.do(ctx, http.MethodPatch, table, q, patch, "")
}

// Delete removes the rows matching filters.
func (c *Client) Delete(ctx context.Context, table string, filters Filters) error {
	q := url.Values{}
	filters.encode(q)
	_, err := c.do(ctx, http.MethodDelete, table, q, nil, "")
	return err
}

// Upsert inserts rows, merging into existing rows on the conflict columns.
func (c *Client) Upsert(ctx context.Context, table string, rows any, conflictKeys ...string) ([]byte, error) {
	q := url.Values{}
	q.Set("on_conflict", strings.Join(conflictKeys, ","))
	return c.do(ctx, http.MethodPost, table, q, rows, "resolution=merge-duplicates")
}
