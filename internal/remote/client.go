// Package remote implements the HTTP client for the key-document store
// backing the synchronization engine.
//
// The remote service exposes a single endpoint taking a type selector:
//
//	GET  /api/data?type=users      -> JSON array of records ([] when empty)
//	POST /api/data?type=users      -> {"success": true, "count": N}
//	GET  /api/data?type=health     -> {"status": "ok"}
//
// Collections are always fetched and replaced wholesale; there is no partial
// or merge write.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/taskpilot/taskpilot/internal/model"
)

// healthTimeout bounds the reachability probe. The probe reports, it never
// fails: any error within the bound reads as "unreachable".
const healthTimeout = 5 * time.Second

// requestTimeout bounds individual fetch/save calls.
const requestTimeout = 15 * time.Second

// SaveResult is the remote store's acknowledgement of a collection write.
type SaveResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// Client talks to one remote store service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// New creates a Client for the given base URL (scheme://host[:port], no
// trailing path). If logger is nil, the default logger is used.
func New(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// Health reports whether the remote store is reachable. It never returns an
// error; timeouts, transport failures, and non-2xx responses all read as
// false.
func (c *Client) Health() bool {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("health"), nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("health probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Fetch retrieves the full collection. An empty collection is a valid success
// result, distinct from failure.
func (c *Client) Fetch(ctx context.Context, collection string) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(collection), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: server returned %s", collection, resp.Status)
	}

	var records []model.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("fetch %s: invalid response body: %w", collection, err)
	}
	return records, nil
}

// Save replaces the full collection on the remote store.
func (c *Client) Save(ctx context.Context, collection string, records []model.Record) (SaveResult, error) {
	if records == nil {
		records = []model.Record{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to encode %s: %w", collection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(collection), bytes.NewReader(body))
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to save %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SaveResult{}, fmt.Errorf("save %s: server returned %s", collection, resp.Status)
	}

	var result SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SaveResult{}, fmt.Errorf("save %s: invalid acknowledgement: %w", collection, err)
	}
	return result, nil
}

func (c *Client) endpoint(docType string) string {
	return fmt.Sprintf("%s/api/data?type=%s", c.baseURL, url.QueryEscape(docType))
}
