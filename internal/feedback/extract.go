// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedback records reader reactions and folds them into the
// learned patterns.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/curator/internal/scoring"
	"github.com/pdiddy/curator/pkg/types"
)

// Placeholder content types recorded when extraction is unavailable.
const (
	ContentManualEntry = "manual_entry"
	ContentUnknown     = "unknown"
)

// Extractor turns a free-text reason into structured metadata. The
// returned metadata is always usable; a non-nil error explains why it is a
// placeholder.
type Extractor interface {
	Extract(ctx context.Context, a types.Article, reason string, action types.Action) (types.ExtractedMetadata, error)
}

// ManualExtractor is used when no model provider is configured.
type ManualExtractor struct{}

// Extract implements Extractor.
func (ManualExtractor) Extract(context.Context, types.Article, string, types.Action) (types.ExtractedMetadata, error) {
	return types.PlaceholderMetadata(ContentManualEntry), nil
}

// LLMExtractor asks a model for JSON-only metadata.
type LLMExtractor struct {
	Provider  scoring.Provider
	Model     string
	MaxTokens int
}

var extractTmpl = template.Must(template.New("extract").Parse(
	`Analyze this reader feedback about an article and extract structured metadata.

Article:
- Title: {{.Title}}
- Source: {{.Source}}
- Category: {{.Category}}

Reader feedback ({{.Action}}):
"{{.Reason}}"

Extract and return ONLY a JSON object with these fields:
{
  "content_type": ["list of content types: argumentative, analytical, descriptive, statistical, narrative, investigative"],
  "appeal": ["what appealed or didn't: evidence_based, institutional_tension, contrarian, depth, clarity, originality"],
  "style": ["writing style: challenge_not_summary, data_driven, opinion_based, technical, accessible"],
  "themes": ["themes: fiscal_policy, monetary_policy, geopolitics, institutional_debates, market_analysis"],
  "depth": "one of: surface_summary, moderate_analysis, deep_dive, original_research",
  "signals": ["positive signals if liked, negative if disliked"]
}

Return ONLY valid JSON, no explanation.`))

// Extract implements Extractor. Provider failures and unparseable replies
// yield the "unknown" placeholder together with the cause.
func (e *LLMExtractor) Extract(ctx context.Context, a types.Article, reason string, action types.Action) (types.ExtractedMetadata, error) {
	var buf bytes.Buffer
	err := extractTmpl.Execute(&buf, map[string]string{
		"Title":    a.Title,
		"Source":   a.Source,
		"Category": string(a.Category),
		"Action":   action.Bucket(),
		"Reason":   reason,
	})
	if err != nil {
		return types.PlaceholderMetadata(ContentUnknown), fmt.Errorf("rendering extraction prompt: %w", err)
	}

	text, err := e.Provider.Complete(ctx, scoring.Request{Model: e.Model, Prompt: buf.String(), MaxTokens: e.MaxTokens})
	if err != nil {
		return types.PlaceholderMetadata(ContentUnknown), fmt.Errorf("metadata extraction: %w", err)
	}
	return ParseMetadata(text)
}

// ParseMetadata decodes a model reply, tolerating a surrounding code fence.
func ParseMetadata(text string) (types.ExtractedMetadata, error) {
	var m types.ExtractedMetadata
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &m); err != nil {
		return types.PlaceholderMetadata(ContentUnknown), fmt.Errorf("parsing extracted metadata: %w", err)
	}
	m.ContentType = clean(m.ContentType)
	m.Appeal = clean(m.Appeal)
	m.Style = clean(m.Style)
	m.Themes = clean(m.Themes)
	m.Signals = clean(m.Signals)
	m.Depth = strings.TrimSpace(m.Depth)
	if m.Depth == "" {
		m.Depth = ContentUnknown
	}
	m.Source = ""
	return m, nil
}

// StripCodeFence removes a leading ``` or ```json fence and its closing
// fence. Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func clean(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
