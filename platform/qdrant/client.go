// Package qdrant provides a REST client for Qdrant vector database.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for Qdrant vector database.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// Config configures the Qdrant client.
type Config struct {
	BaseURL    string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewClient creates a new Qdrant client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FieldMatch is a single equality condition on a payload field.
type FieldMatch struct {
	Key   string
	Value string
}

// Filter restricts a search to points whose payload matches all conditions.
type Filter struct {
	Must []FieldMatch
}

type matchCondition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type filterBody struct {
	Must []matchCondition `json:"must,omitempty"`
}

// SearchRequest is the request body for a vector search.
type SearchRequest struct {
	Vector      []float32   `json:"vector"`
	Limit       int         `json:"limit"`
	WithPayload bool        `json:"with_payload"`
	Filter      *filterBody `json:"filter,omitempty"`
}

// SearchResult is a single search result from Qdrant.
type SearchResult struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// SearchResponse is the response from a search query.
type SearchResponse struct {
	Result []SearchResult `json:"result"`
	Status interface{}    `json:"status"`
	Time   float64        `json:"time"`
}

// Search performs a vector similarity search in the configured collection.
// A nil filter searches the whole collection.
func (c *Client) Search(ctx context.Context, vector []float32, limit int, filter *Filter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	reqBody := SearchRequest{
		Vector:      vector,
		Limit:       limit,
		WithPayload: true,
	}
	if filter != nil && len(filter.Must) > 0 {
		fb := &filterBody{}
		for _, m := range filter.Must {
			var cond matchCondition
			cond.Key = m.Key
			cond.Match.Value = m.Value
			fb.Must = append(fb.Must, cond)
		}
		reqBody.Filter = fb
	}

	var searchResp SearchResponse
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.post(ctx, url, reqBody, &searchResp); err != nil {
		return nil, err
	}

	return searchResp.Result, nil
}

// Point is a vector plus payload to store in the collection.
type Point struct {
	ID      interface{}            `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type upsertRequest struct {
	Points []Point `json:"points"`
}

// Upsert inserts or replaces points in the configured collection.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.put(ctx, url, upsertRequest{Points: points}, nil)
}

func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, url, body, out)
}

func (c *Client) put(ctx context.Context, url string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, url, body, out)
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal qdrant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create qdrant request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %w", err)
		}
	}

	return nil
}
