// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// SignalEventType names an entry kind in the event log.
type SignalEventType string

const (
	EventArticleScored   SignalEventType = "article_scored"
	EventFeedback        SignalEventType = "feedback"
	EventSourceChange    SignalEventType = "source_change"
	EventPriorityAdded   SignalEventType = "priority_added"
	EventPriorityExpired SignalEventType = "priority_expired"
	EventPriorityMatch   SignalEventType = "priority_match"
)

// SignalEvent is one immutable line in the event log. On disk the Data
// fields sit alongside the envelope fields in a flat JSON object.
type SignalEvent struct {
	Event     SignalEventType
	SessionID string
	Timestamp time.Time
	ArticleID string
	Data      map[string]any
}

var envelopeKeys = map[string]bool{
	"event":      true,
	"session_id": true,
	"timestamp":  true,
	"article_id": true,
}

// MarshalJSON flattens Data into the envelope.
func (e SignalEvent) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Data)+4)
	for k, v := range e.Data {
		if envelopeKeys[k] {
			continue
		}
		m[k] = v
	}
	m["event"] = e.Event
	m["session_id"] = e.SessionID
	m["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	if e.ArticleID != "" {
		m["article_id"] = e.ArticleID
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits a flat object back into envelope and Data.
func (e *SignalEvent) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	ev, ok := m["event"].(string)
	if !ok || ev == "" {
		return fmt.Errorf("signal event missing \"event\" field")
	}
	e.Event = SignalEventType(ev)
	e.SessionID, _ = m["session_id"].(string)
	e.ArticleID, _ = m["article_id"].(string)
	if ts, ok := m["timestamp"].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("signal event timestamp %q: %w", ts, err)
		}
		e.Timestamp = t
	}
	e.Data = map[string]any{}
	for k, v := range m {
		if !envelopeKeys[k] {
			e.Data[k] = v
		}
	}
	return nil
}
