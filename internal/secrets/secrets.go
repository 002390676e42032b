// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed contents are the value. Environment variables act as a fallback.
//
// Recognized key files: anthropic-api-key, xai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key files and their environment fallbacks.
const (
	AnthropicKey = "anthropic-api-key"
	XAIKey       = "xai-api-key"
)

// EnvVars maps each key file to the environment variable consulted when
// the file is absent.
var EnvVars = map[string]string{
	AnthropicKey: "ANTHROPIC_API_KEY",
	XAIKey:       "XAI_API_KEY",
}

// Store is a loaded set of secrets.
type Store map[string]string

// Load reads all files in dir and returns a Store of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty
// Store. Unreadable files are reported through warn and skipped.
func Load(dir string, warn func(name string, err error)) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if warn != nil {
				warn(name, err)
			}
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s[name] = value
		}
	}

	return s, nil
}

// Lookup returns the secret for key, falling back to its environment
// variable. The second result is false when neither is set.
func (s Store) Lookup(key string) (string, bool) {
	if v, ok := s[key]; ok && v != "" {
		return v, true
	}
	if env, ok := EnvVars[key]; ok {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, true
		}
	}
	return "", false
}

// Names returns the loaded key names, for startup diagnostics. Values are
// never returned.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	return names
}
