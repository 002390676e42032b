package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/curator/pkg/types"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"never", 0, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"48h", 48 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"0d", 0, true},
		{"xd", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTTL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTTL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseTTL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" tariff, trade war ,,fomc ")
	want := []string{"tariff", "trade war", "fomc"}
	if len(got) != len(want) {
		t.Fatalf("splitList = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestModelFor(t *testing.T) {
	cfg := types.DefaultConfig().Scoring
	cfg.Mode = types.ModeTwoStage
	if got := modelFor(cfg); got != cfg.Ranking.Model {
		t.Errorf("modelFor(two-stage) = %q, want ranking model %q", got, cfg.Ranking.Model)
	}
	cfg.Mode = types.ModeMechanical
	if got := modelFor(cfg); got != "" {
		t.Errorf("modelFor(mechanical) = %q, want empty", got)
	}
}

func TestDecodeConfigReplacesTables(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
scoring:
  keywords: [chips]
  category_terms:
    technology: [chips, fabs]
enrich:
  known_folders:
    "42": Tech and AI
selection:
  top_n: 5
`))
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Scoring.Keywords; len(got) != 1 || got[0] != "chips" {
		t.Errorf("keywords = %q, want [chips]", got)
	}
	if len(cfg.Scoring.CategoryTerms) != 1 {
		t.Errorf("category_terms has %d categories, want only technology", len(cfg.Scoring.CategoryTerms))
	}
	if len(cfg.Enrich.KnownFolders) != 1 || cfg.Enrich.KnownFolders["42"] != "Tech and AI" {
		t.Errorf("known_folders = %v, want only 42", cfg.Enrich.KnownFolders)
	}
	if cfg.Selection.TopN != 5 {
		t.Errorf("top_n = %d, want 5", cfg.Selection.TopN)
	}
	// Unset keys keep their defaults.
	if cfg.Selection.DiversityWeight != 0.3 {
		t.Errorf("diversity_weight = %v, want default 0.3", cfg.Selection.DiversityWeight)
	}
	if len(cfg.Feeds.Sources) != len(types.DefaultFeeds) {
		t.Errorf("feeds = %d, want the %d defaults", len(cfg.Feeds.Sources), len(types.DefaultFeeds))
	}

	if got := types.DefaultCategoryTerms[types.CategoryTechnology]; len(got) == 0 || got[0] == "chips" {
		t.Errorf("package defaults were modified: %q", got)
	}
	if _, ok := types.DefaultCategoryTerms[types.CategoryGeoMajor]; !ok {
		t.Error("package defaults lost geo_major")
	}
	if cfg.Paths.Preferences == "" {
		t.Error("preferences path not resolved")
	}
}
