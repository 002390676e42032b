// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errs defines the curator's failure taxonomy. Every fatal error
// carries a remediation hint that the CLI prints before exiting.
package errs

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ConfigurationError reports missing or rejected credentials and other
// setup problems. It is fatal unless the caller opted into fallback.
type ConfigurationError struct {
	Op     string
	Reason string
	Hint   string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s: configuration error: %s", e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Remedy returns the remediation hint.
func (e *ConfigurationError) Remedy() string {
	if e.Hint != "" {
		return e.Hint
	}
	return "Store a provider key in .secrets/anthropic-api-key or set ANTHROPIC_API_KEY, " +
		"or run with --mode=mechanical, or add --fallback for unattended runs."
}

// TransientProviderError covers timeouts, rate limits and connection
// failures. There is no automatic retry.
type TransientProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransientProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider unavailable (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: provider unavailable: %v", e.Op, e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// RateLimited reports whether the provider rejected the call for rate.
func (e *TransientProviderError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Remedy returns the remediation hint.
func (e *TransientProviderError) Remedy() string {
	if e.RateLimited() {
		return "Rate limit exceeded: wait a few minutes and run again, " +
			"or add --fallback to degrade to mechanical scoring."
	}
	return "Check the network connection and run again, or add --fallback to degrade to mechanical scoring."
}

// BillingError reports exhausted credits or quota. It is always fatal and
// is kept distinct from authentication failures.
type BillingError struct {
	Op  string
	Err error
}

func (e *BillingError) Error() string {
	return fmt.Sprintf("%s: provider billing error: %v", e.Op, e.Err)
}

func (e *BillingError) Unwrap() error { return e.Err }

// Remedy returns the remediation hint.
func (e *BillingError) Remedy() string {
	return "Add credits at https://console.anthropic.com/settings/billing " +
		"(usage: https://console.anthropic.com/settings/usage), or run with --mode=mechanical."
}

// RowParseError reports one malformed line of model output. It is
// recovered locally: only that article falls back.
type RowParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

// PersistenceCorruption reports an unreadable store document. It is fatal
// at load time with no partial recovery.
type PersistenceCorruption struct {
	Path string
	Err  error
}

func (e *PersistenceCorruption) Error() string {
	return fmt.Sprintf("corrupt document %s: %v", e.Path, e.Err)
}

func (e *PersistenceCorruption) Unwrap() error { return e.Err }

// Remedy returns the remediation hint.
func (e *PersistenceCorruption) Remedy() string {
	return fmt.Sprintf("Repair or restore %s from a backup, or move it aside to start fresh.", e.Path)
}

// remedier is implemented by every fatal taxonomy error.
type remedier interface {
	Remedy() string
}

// Remediation returns the remediation hint for the first taxonomy error in
// err's chain, or an empty string.
func Remediation(err error) string {
	var r remedier
	if errors.As(err, &r) {
		return r.Remedy()
	}
	return ""
}

// Recoverable reports whether err may be absorbed by a whole-batch fallback
// to mechanical scoring. Billing and corruption errors never are.
func Recoverable(err error) bool {
	var cfg *ConfigurationError
	var tr *TransientProviderError
	return errors.As(err, &cfg) || errors.As(err, &tr)
}

// Classify maps a failed provider call to the taxonomy. status is zero when
// no HTTP response was received; body is the response text or message.
func Classify(op string, status int, body string, cause error) error {
	if cause == nil {
		cause = errors.New(strings.TrimSpace(body))
	}
	msg := strings.ToLower(body + " " + cause.Error())

	switch {
	case status == http.StatusPaymentRequired ||
		strings.Contains(msg, "insufficient") ||
		strings.Contains(msg, "credit") ||
		strings.Contains(msg, "balance"):
		return &BillingError{Op: op, Err: cause}
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "api key"):
		return &ConfigurationError{
			Op:     op,
			Reason: "provider rejected credentials",
			Hint:   "Invalid or expired API key: update .secrets/anthropic-api-key (or ANTHROPIC_API_KEY) and run again.",
			Err:    cause,
		}
	}

	var netErr net.Error
	switch {
	case status == http.StatusTooManyRequests || strings.Contains(msg, "rate limit"):
		return &TransientProviderError{Op: op, StatusCode: http.StatusTooManyRequests, Err: cause}
	case status >= 500,
		errors.As(cause, &netErr),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection"):
		return &TransientProviderError{Op: op, StatusCode: status, Err: cause}
	}
	return &TransientProviderError{Op: op, StatusCode: status, Err: cause}
}

// MissingCredential builds the ConfigurationError for an absent key.
func MissingCredential(op, secretFile, envVar string) error {
	return &ConfigurationError{
		Op:     op,
		Reason: "API key not found",
		Hint: fmt.Sprintf("Store the key in .secrets/%s or export %s, "+
			"or run with --mode=mechanical, or add --fallback for unattended runs.", secretFile, envVar),
	}
}
