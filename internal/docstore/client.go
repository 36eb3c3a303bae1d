package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the fleet server's document API over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a document backend client. Timeouts are left to the
// underlying calls; the one self-imposed deadline in the system is the
// profile fetch, and its context carries it.
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type patchRequest struct {
	Field string         `json:"field"`
	URL   string         `json:"url"`
	Extra map[string]any `json:"extra,omitempty"`
}

// ApplyPatch applies an attachment URL plus extra fields to the target
// document via PATCH /api/documents/{collection}/{id}.
func (c *Client) ApplyPatch(ctx context.Context, p Patch) error {
	reqBody := patchRequest{Field: p.Field, URL: p.URL}
	if p.Extra != nil {
		reqBody.Extra = p.Extra.Fields()
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encoding patch: %w", err)
	}

	url := fmt.Sprintf("%s/api/documents/%s/%s", c.baseURL, p.Domain.Collection(), p.DocumentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("patch %s/%s: %w", p.Domain.Collection(), p.DocumentID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("patch %s/%s: %w", p.Domain.Collection(), p.DocumentID, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("patch %s/%s: status %d: %s", p.Domain.Collection(), p.DocumentID, resp.StatusCode, msg)
	}
	return nil
}

// GetProfile fetches a user profile from GET /api/users/{id}.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	url := fmt.Sprintf("%s/api/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile %s: status %d", userID, resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}
