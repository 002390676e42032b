// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Action is the user's explicit reaction to an article.
type Action string

const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionSave    Action = "save"
)

// ParseAction accepts both verb and past-tense forms (like, liked).
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "liked":
		return ActionLike, nil
	case "dislike", "disliked":
		return ActionDislike, nil
	case "save", "saved":
		return ActionSave, nil
	}
	return "", fmt.Errorf("unknown feedback action %q: use like, dislike or save", s)
}

// Weight is the amount each learned dimension moves for this action. Save
// is weaker than like: it marks something to revisit rather than endorse.
func (a Action) Weight() int {
	switch a {
	case ActionLike:
		return 2
	case ActionSave:
		return 1
	case ActionDislike:
		return -1
	}
	return 0
}

// Bucket is the per-day feedback history list the action is filed under.
func (a Action) Bucket() string {
	switch a {
	case ActionLike:
		return "liked"
	case ActionDislike:
		return "disliked"
	case ActionSave:
		return "saved"
	}
	return string(a)
}

// Channel values for where feedback originated.
const (
	ChannelCLI      = "cli"
	ChannelWebUI    = "web_ui"
	ChannelTelegram = "telegram"
)

// ExtractedMetadata is the structured reading of a free-text feedback reason.
type ExtractedMetadata struct {
	ContentType []string `json:"content_type"`
	Appeal      []string `json:"appeal"`
	Style       []string `json:"style"`
	Themes      []string `json:"themes"`
	Depth       string   `json:"depth"`
	Signals     []string `json:"signals"`

	// Source is filled from the article, not by extraction.
	Source string `json:"source,omitempty"`
}

// PlaceholderMetadata is used when extraction cannot produce metadata. The
// content type records why.
func PlaceholderMetadata(contentType string) ExtractedMetadata {
	return ExtractedMetadata{
		ContentType: []string{contentType},
		Appeal:      []string{},
		Style:       []string{},
		Themes:      []string{},
		Depth:       "unknown",
		Signals:     []string{},
	}
}

// FeedbackEvent is one recorded reaction. Events are appended and never
// rewritten.
type FeedbackEvent struct {
	ArticleID  string            `json:"article_id"`
	Action     Action            `json:"action"`
	Channel    string            `json:"channel"`
	ReasonText string            `json:"your_words"`
	Metadata   ExtractedMetadata `json:"extracted_signals"`
	Timestamp  time.Time         `json:"timestamp"`

	Rank     int      `json:"rank,omitempty"`
	URL      string   `json:"url,omitempty"`
	Title    string   `json:"title,omitempty"`
	Source   string   `json:"source,omitempty"`
	Category Category `json:"category,omitempty"`
}
