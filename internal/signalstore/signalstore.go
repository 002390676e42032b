// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signalstore is the append-only JSONL event log shared by the
// pipeline, feedback and priority commands. Every event carries the run's
// session ID and, where there is one, the article ID, so scoring and later
// feedback on the same article correlate without foreign keys.
package signalstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/curator/pkg/types"
)

const maxLine = 1 << 20

// NewSessionID returns a fresh run-scoped ID.
func NewSessionID() string {
	return uuid.NewString()
}

// Log appends to and reads from one JSONL file.
type Log struct {
	path      string
	sessionID string
	now       func() time.Time
}

// Open returns a Log for path. An empty sessionID gets a new one.
func Open(path, sessionID string) *Log {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return &Log{path: path, sessionID: sessionID, now: time.Now}
}

// SessionID returns the ID stamped on events appended through l.
func (l *Log) SessionID() string { return l.sessionID }

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Append stamps ev with the session and the current time and writes it as
// one line. Events are never rewritten.
func (l *Log) Append(ev types.SignalEvent) error {
	ev.SessionID = l.sessionID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now()
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Event, err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("appending to event log: %w", err)
	}
	return f.Close()
}

// ArticleScored logs a scored and selected article.
func (l *Log) ArticleScored(a types.Article, rank int, model string) error {
	data := map[string]any{
		"title":       a.Title,
		"source":      a.Source,
		"category":    string(a.Category),
		"score":       a.RawScore,
		"final_score": a.FinalScore,
		"method":      string(a.Method()),
		"model":       model,
		"rank":        rank,
	}
	if a.Link != "" {
		data["url"] = a.Link
	}
	if a.SerendipityPick {
		data["serendipity_pick"] = true
	}
	return l.Append(types.SignalEvent{Event: types.EventArticleScored, ArticleID: a.ID, Data: data})
}

// Feedback logs one feedback action.
func (l *Log) Feedback(ev types.FeedbackEvent) error {
	data := map[string]any{
		"action":  string(ev.Action),
		"channel": ev.Channel,
	}
	optional(data, "title", ev.Title)
	optional(data, "source", ev.Source)
	optional(data, "category", string(ev.Category))
	optional(data, "reason", ev.ReasonText)
	if ev.Rank > 0 {
		data["rank"] = ev.Rank
	}
	if len(ev.Metadata.ContentType) > 0 {
		data["metadata"] = ev.Metadata
	}
	return l.Append(types.SignalEvent{Event: types.EventFeedback, ArticleID: ev.ArticleID, Timestamp: ev.Timestamp, Data: data})
}

// SourceChange logs a feed source moving between statuses.
func (l *Log) SourceChange(sourceID, oldStatus, newStatus, reason string) error {
	data := map[string]any{
		"source_id":  sourceID,
		"old_status": oldStatus,
		"new_status": newStatus,
	}
	optional(data, "reason", reason)
	return l.Append(types.SignalEvent{Event: types.EventSourceChange, Data: data})
}

// PriorityAdded logs a new priority.
func (l *Log) PriorityAdded(p types.Priority) error {
	data := map[string]any{
		"priority_id": p.ID,
		"label":       p.Label,
		"keywords":    p.Keywords,
		"boost":       p.Boost,
	}
	if p.ExpiresAt != nil {
		data["expires_at"] = p.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return l.Append(types.SignalEvent{Event: types.EventPriorityAdded, Data: data})
}

// PriorityExpired logs a priority deactivated by expiry.
func (l *Log) PriorityExpired(p types.Priority) error {
	data := map[string]any{
		"priority_id": p.ID,
		"label":       p.Label,
	}
	if p.ExpiresAt != nil {
		data["expired_date"] = p.ExpiresAt.UTC().Format("2006-01-02")
	}
	return l.Append(types.SignalEvent{Event: types.EventPriorityExpired, Data: data})
}

// PriorityMatch logs a priority boosting a selected article.
func (l *Log) PriorityMatch(p types.Priority, a types.Article) error {
	return l.Append(types.SignalEvent{
		Event:     types.EventPriorityMatch,
		ArticleID: a.ID,
		Data: map[string]any{
			"priority_id":    p.ID,
			"priority_label": p.Label,
			"article_title":  a.Title,
			"boost":          p.Boost,
		},
	})
}

func optional(data map[string]any, key, value string) {
	if value != "" {
		data[key] = value
	}
}

// Filter selects events for Read. Zero fields match everything.
type Filter struct {
	Event     types.SignalEventType
	ArticleID string
	Since     time.Time

	// Limit keeps only the most recent Limit matches.
	Limit int
}

func (f Filter) match(ev types.SignalEvent) bool {
	if f.Event != "" && ev.Event != f.Event {
		return false
	}
	if f.ArticleID != "" && ev.ArticleID != f.ArticleID {
		return false
	}
	if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// ReadResult is the outcome of a Read.
type ReadResult struct {
	Events []types.SignalEvent

	// Skipped counts malformed lines.
	Skipped int
}

// Read returns matching events oldest first. A missing log reads as empty.
func (l *Log) Read(ctx context.Context, f Filter) (ReadResult, error) {
	var res ReadResult

	file, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("opening event log: %w", err)
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	n := 0
	for sc.Scan() {
		n++
		if n%1000 == 0 && ctx.Err() != nil {
			return res, ctx.Err()
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev types.SignalEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			res.Skipped++
			continue
		}
		if f.match(ev) {
			res.Events = append(res.Events, ev)
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("reading event log: %w", err)
	}

	if f.Limit > 0 && len(res.Events) > f.Limit {
		res.Events = res.Events[len(res.Events)-f.Limit:]
	}
	return res, nil
}

// ArticleHistory returns every event for one article in log order.
func (l *Log) ArticleHistory(ctx context.Context, articleID string) ([]types.SignalEvent, error) {
	res, err := l.Read(ctx, Filter{ArticleID: articleID})
	return res.Events, err
}
