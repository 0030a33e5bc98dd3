// Package apiclient talks to a running wedding backend over HTTP.
//
// Client satisfies session.Scorer, so a session can score against a remote
// backend exactly as it does against the in-process SQLite store.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nicorema/wedding/internal/messages"
	"github.com/nicorema/wedding/internal/scores"
)

// APIError is a non-success answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client is a thin JSON client for /api/scores and /api/messages.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL (e.g. http://localhost:5001).
// A nil httpClient gets a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// bestRes mirrors GET /api/scores/best, where bestTime may be null.
type bestRes struct {
	BestTime *int   `json:"bestTime"`
	Name     string `json:"name"`
}

// BestTime returns the current record, or nil when no score exists.
func (c *Client) BestTime(ctx context.Context) (*scores.Best, error) {
	var res bestRes
	if err := c.do(ctx, http.MethodGet, "/api/scores/best", nil, http.StatusOK, &res); err != nil {
		return nil, err
	}
	if res.BestTime == nil {
		return nil, nil
	}
	return &scores.Best{Time: *res.BestTime, Name: res.Name}, nil
}

// Submit records a finished game.
func (c *Client) Submit(ctx context.Context, name string, seconds int) (scores.Score, error) {
	var sc scores.Score
	body := map[string]any{"name": name, "time": seconds}
	err := c.do(ctx, http.MethodPost, "/api/scores", body, http.StatusCreated, &sc)
	return sc, err
}

// Messages returns the approved guestbook, newest first.
func (c *Client) Messages(ctx context.Context) ([]messages.Message, error) {
	var list []messages.Message
	err := c.do(ctx, http.MethodGet, "/api/messages", nil, http.StatusOK, &list)
	return list, err
}

// SubmitMessage leaves a guestbook message; it starts out Pending.
func (c *Client) SubmitMessage(ctx context.Context, name, message string) (messages.Message, error) {
	var m messages.Message
	body := map[string]string{"name": name, "message": message}
	err := c.do(ctx, http.MethodPost, "/api/messages", body, http.StatusCreated, &m)
	return m, err
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
