// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/pdiddy/curator/internal/feedback"
	"github.com/pdiddy/curator/internal/history"
	"github.com/pdiddy/curator/internal/preferences"
	"github.com/pdiddy/curator/internal/priority"
	"github.com/pdiddy/curator/internal/scoring"
	"github.com/pdiddy/curator/internal/secrets"
	"github.com/pdiddy/curator/internal/signalstore"
	"github.com/pdiddy/curator/pkg/types"
)

// loadConfig decodes the global viper settings; see decodeConfig.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

// decodeConfig decodes v over the built-in defaults and fills in document
// paths under the data directory. A table or list set in the config
// replaces the default one whole; keys left unset keep their defaults.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	replace := func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }
	if err := v.Unmarshal(&cfg, replace); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	p := &cfg.Paths
	if p.DataDir == "" {
		p.DataDir = filepath.Join(xdg.DataHome, "curator")
	}
	def := func(path *string, name string) {
		if *path == "" {
			*path = filepath.Join(p.DataDir, name)
		}
	}
	def(&p.Preferences, "preferences.json")
	def(&p.Priorities, "priorities.json")
	def(&p.Interests, "interests.yaml")
	def(&p.HistoryDB, "history.db")
	def(&p.EventLog, "signals.jsonl")
	return cfg, nil
}

// stores bundles the durable documents a command may touch.
type stores struct {
	prefs      *preferences.Store
	priorities *priority.Store
	interests  *priority.Interests
	signals    *signalstore.Log
	history    *history.Store
}

// openStores opens every document. History is opened only when withHistory
// is set since it holds a database connection.
func openStores(cfg types.Config, withHistory bool) (*stores, error) {
	s := &stores{
		prefs:      preferences.NewStore(cfg.Paths.Preferences),
		priorities: priority.NewStore(cfg.Paths.Priorities),
		interests:  priority.NewInterests(cfg.Paths.Interests),
		signals:    signalstore.Open(cfg.Paths.EventLog, ""),
	}
	if withHistory {
		h, err := history.NewStore(cfg.Paths.HistoryDB)
		if err != nil {
			return nil, err
		}
		s.history = h
	}
	return s, nil
}

func (s *stores) Close() error {
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

// newExtractor returns a model-backed extractor when an Anthropic key is
// available, and the manual placeholder extractor otherwise.
func newExtractor(cfg types.Config) feedback.Extractor {
	key, ok := loadedSecrets.Lookup(secrets.AnthropicKey)
	if !ok {
		return feedback.ManualExtractor{}
	}
	return &feedback.LLMExtractor{
		Provider:  &scoring.AnthropicProvider{APIKey: key, Client: &http.Client{Timeout: cfg.Scoring.Timeout}},
		Model:     cfg.Scoring.Prefilter.Model,
		MaxTokens: 500,
	}
}

// modelFor names the model that scores articles in mode.
func modelFor(cfg types.ScoringConfig) string {
	switch cfg.Mode {
	case types.ModeAI:
		return cfg.Single.Model
	case types.ModeTwoStage:
		return cfg.Ranking.Model
	case types.ModeXAI:
		return cfg.XAI.Model
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
