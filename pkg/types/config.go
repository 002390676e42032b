package types

import (
	"maps"
	"slices"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with feed requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ScoringMode selects the scoring backend.
type ScoringMode string

const (
	ModeMechanical ScoringMode = "mechanical"
	ModeAI         ScoringMode = "ai"
	ModeTwoStage   ScoringMode = "ai-two-stage"
	ModeXAI        ScoringMode = "xai"
)

// AIConfig holds settings for a model-backed stage.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-haiku-4-5").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// MaxTokens bounds the response length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ScoringConfig holds settings for the scoring stage.
type ScoringConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Mode ScoringMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Fallback downgrades the whole batch to mechanical scoring on
	// provider or credential failure instead of aborting the run.
	Fallback bool `json:"fallback" yaml:"fallback" mapstructure:"fallback"`

	Single    AIConfig `json:"single" yaml:"single" mapstructure:"single"`
	Prefilter AIConfig `json:"prefilter" yaml:"prefilter" mapstructure:"prefilter"`
	Ranking   AIConfig `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	XAI       AIConfig `json:"xai" yaml:"xai" mapstructure:"xai"`

	// PrefilterTopK is how many candidates survive stage 1 (default 50).
	PrefilterTopK int `json:"prefilter_top_k" yaml:"prefilter_top_k" mapstructure:"prefilter_top_k"`

	Keywords      []string              `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	CategoryTerms map[Category][]string `json:"category_terms" yaml:"category_terms" mapstructure:"category_terms"`
}

// SelectionConfig holds settings for the selector.
type SelectionConfig struct {
	TopN               int     `json:"top_n" yaml:"top_n" mapstructure:"top_n"`
	DiversityWeight    float64 `json:"diversity_weight" yaml:"diversity_weight" mapstructure:"diversity_weight"`
	SerendipityReserve float64 `json:"serendipity_reserve" yaml:"serendipity_reserve" mapstructure:"serendipity_reserve"`
}

// ProfileConfig holds settings for the personalization profile.
type ProfileConfig struct {
	// MinWeight is the inclusion threshold before the decay gate (default 2).
	MinWeight int `json:"min_weight" yaml:"min_weight" mapstructure:"min_weight"`

	// ActiveDomain is the knowledge-domain bucket whose domain signals are used.
	ActiveDomain string `json:"active_domain" yaml:"active_domain" mapstructure:"active_domain"`
}

// FeedSource is one feed to fetch.
type FeedSource struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	URL  string `json:"url" yaml:"url" mapstructure:"url"`

	// Weight multiplies the mechanical score; zero means 1.0.
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty" mapstructure:"weight"`
}

// FeedConfig holds settings for the feed collaborator.
type FeedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Sources []FeedSource `json:"sources" yaml:"sources" mapstructure:"sources"`

	// MaxItems caps entries taken from one feed (default 50).
	MaxItems int `json:"max_items" yaml:"max_items" mapstructure:"max_items"`

	// FetchDelay is the pause between consecutive feeds (default 500ms).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay" mapstructure:"fetch_delay"`
}

// EnrichConfig holds settings for domain signal enrichment.
type EnrichConfig struct {
	// KnownFolders maps bookmark folder IDs to knowledge-domain labels.
	KnownFolders map[string]string `json:"known_folders" yaml:"known_folders" mapstructure:"known_folders"`

	// DefaultDomain receives items from unknown folders.
	DefaultDomain string `json:"default_domain" yaml:"default_domain" mapstructure:"default_domain"`

	MaxDomainsPerCurator int `json:"max_domains_per_curator" yaml:"max_domains_per_curator" mapstructure:"max_domains_per_curator"`
	MinDomainScore       int `json:"min_domain_score" yaml:"min_domain_score" mapstructure:"min_domain_score"`
}

// PathsConfig locates the durable documents.
type PathsConfig struct {
	DataDir     string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Preferences string `json:"preferences" yaml:"preferences" mapstructure:"preferences"`
	Priorities  string `json:"priorities" yaml:"priorities" mapstructure:"priorities"`
	Interests   string `json:"interests" yaml:"interests" mapstructure:"interests"`
	HistoryDB   string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`
	EventLog    string `json:"event_log" yaml:"event_log" mapstructure:"event_log"`
}

// Config groups every stage configuration for the curator.
type Config struct {
	Scoring   ScoringConfig   `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Selection SelectionConfig `json:"selection" yaml:"selection" mapstructure:"selection"`
	Profile   ProfileConfig   `json:"profile" yaml:"profile" mapstructure:"profile"`
	Feeds     FeedConfig      `json:"feeds" yaml:"feeds" mapstructure:"feeds"`
	Enrich    EnrichConfig    `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	Paths     PathsConfig     `json:"paths" yaml:"paths" mapstructure:"paths"`
}

// ActiveDomain is the knowledge domain the daily briefing serves.
const ActiveDomain = "Finance and Geopolitics"

// Domains lists the canonical knowledge-domain labels.
var Domains = []string{
	"Finance and Geopolitics",
	"Health and Science",
	"Tech and AI",
	"Language and Culture",
	"Career and Commercial",
	"Other",
}

// DefaultKeywords are the terms that earn mechanical keyword hits.
var DefaultKeywords = []string{
	"gold", "sanctions", "debt", "fiscal", "geopolitical", "trade war",
	"central bank", "inflation", "russia", "ukraine", "china", "treasury",
	"fed", "powell", "rates", "recession", "currency", "dollar", "euro",
	"oil", "energy", "conflict", "policy", "tariff", "deficit", "bonds",
}

// DefaultCategoryTerms is the keyword table for mechanical categorization.
var DefaultCategoryTerms = map[Category][]string{
	CategoryGeoMajor: {
		"china", "beijing", "xi jinping", "russia", "putin", "moscow", "europe", "eu", "european union",
		"japan", "tokyo", "korea", "seoul", "united states", "washington", "us policy",
		"ukraine", "war", "conflict", "military operation", "invasion", "strike", "attack",
	},
	CategoryGeoOther: {
		"middle east", "iran", "israel", "saudi", "africa", "latin america", "brazil", "mexico",
		"india", "pakistan", "southeast asia", "vietnam", "indonesia", "turkey",
		"terrorism", "insurgency", "civil war",
	},
	CategoryMonetary: {
		"gold", "silver", "bitcoin", "crypto", "currency", "dollar", "euro", "yuan", "yen",
		"precious metal", "commodity", "bullion", "forex", "exchange rate", "devaluation",
	},
	CategoryFiscal: {
		"debt", "deficit", "treasury", "bonds", "fiscal", "spending", "budget", "government spending",
		"national debt", "sovereign debt", "fiscal policy", "austerity",
	},
	CategoryTechnology: {
		"ai development", "ai research", "artificial intelligence", "machine learning", "robotics",
		"autonomous systems", "defense industry", "weapons development", "military tech",
		"anduril", "palantir", "manufacturing capacity", "dual-use technology",
		"hypersonic", "quantum computing", "semiconductor", "5g", "6g",
	},
}

// DefaultFeeds is the built-in source list with mechanical source weights.
var DefaultFeeds = []FeedSource{
	{Name: "Geopolitical Futures", URL: "https://geopoliticalfutures.com/feed/", Weight: 1.4},
	{Name: "ZeroHedge", URL: "https://cms.zerohedge.com/fullrss2.xml", Weight: 1.1},
	{Name: "The Big Picture", URL: "https://ritholtz.com/feed/", Weight: 1.2},
	{Name: "Fed On The Economy", URL: "https://www.stlouisfed.org/rss/page%20resources/publications/blog-entries", Weight: 1.2},
	{Name: "Treasury MSPD", URL: "https://www.treasurydirect.gov/rss/mspd.xml", Weight: 1.3},
	{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
	{Name: "ProPublica", URL: "https://www.propublica.org/feeds/propublica/main"},
	{Name: "Antiwar.com", URL: "https://news.antiwar.com/feed/"},
	{Name: "Investing.com", URL: "https://www.investing.com/rss/news.rss"},
	{Name: "The Duran", URL: "https://theduran.com/feed/"},
	{Name: "O Globo", URL: "https://oglobo.globo.com/rss.xml"},
	{Name: "Deutsche Welle", URL: "https://rss.dw.com/xml/rss-en-all"},
	{Name: "Spiegel International", URL: "https://www.spiegel.de/international/index.rss"},
	{Name: "FAZ", URL: "https://www.faz.net/rss/aktuell/"},
	{Name: "Die Welt", URL: "https://www.welt.de/feeds/latest.rss"},
}

// DefaultKnownFolders maps bookmark folder IDs to domain labels.
var DefaultKnownFolders = map[string]string{
	"1926124453714387081": "Finance and Geopolitics",
	"1881118951536538102": "Language and Culture",
	"1926123095779078526": "Health and Science",
	"1967313159158640645": "Tech and AI",
	"1992980059464876233": "Career and Commercial",
}

// DefaultConfig returns the built-in configuration. Paths are left empty;
// the CLI resolves them against the data directory. Tables and lists are
// copies, so decoding a config file over the result never touches the
// package defaults.
func DefaultConfig() Config {
	return Config{
		Scoring: ScoringConfig{
			HTTPConfig:    HTTPConfig{Timeout: 120 * time.Second},
			Mode:          ModeMechanical,
			Single:        AIConfig{Model: "claude-haiku-4-5", MaxTokens: 4096},
			Prefilter:     AIConfig{Model: "claude-haiku-4-5", MaxTokens: 2048},
			Ranking:       AIConfig{Model: "claude-sonnet-4-5", MaxTokens: 2048},
			XAI:           AIConfig{Model: "grok-2-vision-1212", MaxTokens: 4096},
			PrefilterTopK: 50,
			Keywords:      slices.Clone(DefaultKeywords),
			CategoryTerms: cloneCategoryTerms(DefaultCategoryTerms),
		},
		Selection: SelectionConfig{
			TopN:               20,
			DiversityWeight:    0.3,
			SerendipityReserve: DefaultSerendipityReserve,
		},
		Profile: ProfileConfig{
			MinWeight:    2,
			ActiveDomain: ActiveDomain,
		},
		Feeds: FeedConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "Mozilla/5.0 (compatible; RSS Reader Bot)",
			},
			Sources:    slices.Clone(DefaultFeeds),
			MaxItems:   50,
			FetchDelay: 500 * time.Millisecond,
		},
		Enrich: EnrichConfig{
			KnownFolders:         maps.Clone(DefaultKnownFolders),
			DefaultDomain:        ActiveDomain,
			MaxDomainsPerCurator: 3,
			MinDomainScore:       2,
		},
	}
}

func cloneCategoryTerms(m map[Category][]string) map[Category][]string {
	out := make(map[Category][]string, len(m))
	for c, terms := range m {
		out[c] = slices.Clone(terms)
	}
	return out
}

// SourceWeights returns the per-source mechanical weights from the feed list.
func (c FeedConfig) SourceWeights() map[string]float64 {
	w := make(map[string]float64, len(c.Sources))
	for _, s := range c.Sources {
		if s.Weight > 0 {
			w[s.Name] = s.Weight
		}
	}
	return w
}
