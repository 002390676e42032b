// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the provider clients.
// Calls are single-shot: a failed request is classified into the error
// taxonomy and returned, never retried.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/curator/internal/errs"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 2048

// PostJSON marshals in, POSTs it to url with the given headers, and decodes
// a 200 response into out. Non-200 responses and transport failures are
// returned as taxonomy errors from errs.Classify, labelled with op; an
// undecodable 200 body is a TransientProviderError.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any, op string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return errs.Classify(op, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.Classify(op, resp.StatusCode, string(b),
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(b)))
	}

	// A 200 with an unreadable body is a provider fault, so fallback applies.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errs.TransientProviderError{Op: op, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// Pacer spaces consecutive requests by a fixed delay. The first Wait
// returns immediately. A Pacer is not safe for concurrent use.
type Pacer struct {
	Delay time.Duration
	last  time.Time
}

// Wait blocks until Delay has elapsed since the previous Wait returned.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if !p.last.IsZero() && p.Delay > 0 {
		remaining := p.Delay - time.Since(p.last)
		if remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(remaining):
			}
		}
	}
	p.last = time.Now()
	return nil
}
