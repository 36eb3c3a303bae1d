// Package mailer proxies outgoing mail to a transactional email
// provider over HTTPS. The provider is fire-and-forget from the rest of
// the system's point of view; failures surface as plain errors.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleetlog-backend/config"
)

// Attachment references an already-stored file by URL.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Message is one outgoing email.
type Message struct {
	To          []string     `json:"to"`
	CC          []string     `json:"cc,omitempty"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Sender sends email. The HTTP handler depends on this interface so
// tests can swap the provider out.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ProviderMailer is the real Sender.
type ProviderMailer struct {
	providerURL string
	apiKey      string
	from        string
	client      *http.Client
}

// New creates a provider-backed mailer. A nil client gets a sane
// default timeout.
func New(cfg *config.MailerConfig, client *http.Client) *ProviderMailer {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ProviderMailer{
		providerURL: cfg.ProviderURL,
		apiKey:      cfg.APIKey,
		from:        cfg.From,
		client:      client,
	}
}

type providerPayload struct {
	From string `json:"from"`
	Message
}

// Send posts the message to the provider.
func (m *ProviderMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(providerPayload{From: m.from, Message: msg})
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.providerURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
