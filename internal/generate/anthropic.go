package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultAnthropicURL is the messages endpoint.
	DefaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	// DefaultModel is used when no model is configured.
	DefaultModel     = "claude-3-5-sonnet-20241022"
	anthropicVersion = "2023-06-01"
	maxTokens        = 2048
)

// Anthropic is a Generator backed by the Anthropic messages API.
type Anthropic struct {
	url    string
	model  string
	apiKey string // unexported; never serialized by encoding/json
	http   *http.Client
}

var _ Generator = (*Anthropic)(nil)

// AnthropicOptions configure NewAnthropic. Zero values pick defaults.
type AnthropicOptions struct {
	APIKey  string
	Model   string
	URL     string
	Timeout time.Duration
}

// NewAnthropic validates the credential and returns a client.
func NewAnthropic(opts AnthropicOptions) (*Anthropic, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.URL == "" {
		opts.URL = DefaultAnthropicURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &Anthropic{
		url:    opts.URL,
		model:  opts.Model,
		apiKey: opts.APIKey,
		http:   &http.Client{Timeout: opts.Timeout},
	}, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends one prompt and extracts the card list from the reply.
func (a *Anthropic) Generate(ctx context.Context, req Request) ([]Card, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: BuildPrompt(req)}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(string(respBytes), 200)}
	}

	var ar anthropicResponse
	if err := json.Unmarshal(respBytes, &ar); err != nil {
		return nil, fmt.Errorf("%w: decoding response envelope: %v", ErrMalformedResponse, err)
	}
	var text string
	for _, block := range ar.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text content in response (got %d content blocks)", ErrMalformedResponse, len(ar.Content))
	}
	return ExtractCards(text)
}
