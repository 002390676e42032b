// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		cause  error
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 is a configuration error",
			status: http.StatusUnauthorized,
			body:   `{"error":{"type":"authentication_error"}}`,
			check: func(t *testing.T, err error) {
				var target *ConfigurationError
				require.ErrorAs(t, err, &target)
				assert.Contains(t, target.Remedy(), "API key")
			},
		},
		{
			name:   "credit balance message is billing even with 400",
			status: http.StatusBadRequest,
			body:   "Your credit balance is too low to access the API",
			check: func(t *testing.T, err error) {
				var target *BillingError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:   "429 is transient and rate limited",
			status: http.StatusTooManyRequests,
			body:   "slow down",
			check: func(t *testing.T, err error) {
				var target *TransientProviderError
				require.ErrorAs(t, err, &target)
				assert.True(t, target.RateLimited())
				assert.Contains(t, target.Remedy(), "Rate limit")
			},
		},
		{
			name:  "connection failure is transient",
			cause: errors.New("dial tcp: connection refused"),
			check: func(t *testing.T, err error) {
				var target *TransientProviderError
				require.ErrorAs(t, err, &target)
				assert.False(t, target.RateLimited())
			},
		},
		{
			name:   "500 is transient",
			status: http.StatusInternalServerError,
			body:   "overloaded",
			check: func(t *testing.T, err error) {
				var target *TransientProviderError
				require.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Classify("score", tt.status, tt.body, tt.cause))
		})
	}
}

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(MissingCredential("score", "anthropic-api-key", "ANTHROPIC_API_KEY")))
	assert.True(t, Recoverable(fmt.Errorf("wrapped: %w", &TransientProviderError{Op: "score"})))
	assert.False(t, Recoverable(&BillingError{Op: "score", Err: errors.New("no credits")}))
	assert.False(t, Recoverable(&PersistenceCorruption{Path: "prefs.json", Err: errors.New("bad json")}))
	assert.False(t, Recoverable(errors.New("plain")))
}

func TestRemediation(t *testing.T) {
	err := fmt.Errorf("loading: %w", &PersistenceCorruption{Path: "/tmp/prefs.json", Err: errors.New("eof")})
	assert.Contains(t, Remediation(err), "/tmp/prefs.json")
	assert.Contains(t, Remediation(MissingCredential("score", "xai-api-key", "XAI_API_KEY")), "XAI_API_KEY")
	assert.Empty(t, Remediation(errors.New("plain")))
}
