// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pdiddy/curator/internal/errs"
	"github.com/pdiddy/curator/internal/httputil"
	"github.com/pdiddy/curator/internal/secrets"
)

// Request is one prompt sent to a model provider.
type Request struct {
	Model     string
	Prompt    string
	MaxTokens int
}

// Provider abstracts the model API so tests can supply a mock.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// anthropicAPIURL is the Messages API endpoint. Package-level var for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// xaiAPIURL is the xAI chat completions endpoint. Package-level var for test substitution.
var xaiAPIURL = "https://api.x.ai/v1/chat/completions"

// AnthropicProvider calls the Claude Messages API.
type AnthropicProvider struct {
	APIKey string
	Client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name implements Provider.
func (c *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends one user message and returns the concatenated text blocks.
func (c *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	op := "anthropic " + req.Model
	if c.APIKey == "" {
		return "", errs.MissingCredential(op, secrets.AnthropicKey, secrets.EnvVars[secrets.AnthropicKey])
	}

	body := claudeRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var resp claudeResponse
	if err := httputil.PostJSON(ctx, c.Client, anthropicAPIURL, headers, body, &resp, op); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", emptyResponse(op, "no text content in response")
	}
	return sb.String(), nil
}

// XAIProvider calls the OpenAI-compatible xAI chat completions API.
type XAIProvider struct {
	APIKey string
	Client *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Name implements Provider.
func (x *XAIProvider) Name() string { return "xai" }

// Complete sends one user message at temperature zero.
func (x *XAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	op := "xai " + req.Model
	if x.APIKey == "" {
		return "", errs.MissingCredential(op, secrets.XAIKey, secrets.EnvVars[secrets.XAIKey])
	}

	body := chatRequest{
		Model:     req.Model,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + x.APIKey}

	var resp chatResponse
	if err := httputil.PostJSON(ctx, x.Client, xaiAPIURL, headers, body, &resp, op); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", emptyResponse(op, "empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// emptyResponse reports a 200 reply that carried nothing usable. It is
// transient so that --fallback can rescore the batch mechanically.
func emptyResponse(op, reason string) error {
	return &errs.TransientProviderError{Op: op, StatusCode: http.StatusOK, Err: errors.New(reason)}
}
