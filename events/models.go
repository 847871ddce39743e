// Package events implements the habit event log and the statistics derived
// from it: the ranking, the hall of fame, and per-user daily averages.
// This file defines the Event entity and its categorical consistency
// attribute.
package events

import (
	"fmt"
	"time"
)

// Consistency is the categorical attribute of an event. The set of values is
// fixed; anything else is rejected at the API boundary.
type Consistency string

const (
	ConsistencyNormal     Consistency = "Normal"
	ConsistencyJurasica   Consistency = "Jurásica"
	ConsistencyEspurruteo Consistency = "Espurruteo"
)

// ParseConsistency validates a raw string against the enumerated set.
func ParseConsistency(s string) (Consistency, error) {
	switch Consistency(s) {
	case ConsistencyNormal, ConsistencyJurasica, ConsistencyEspurruteo:
		return Consistency(s), nil
	default:
		return "", fmt.Errorf("invalid consistency %q: must be one of %q, %q, %q",
			s, ConsistencyNormal, ConsistencyJurasica, ConsistencyEspurruteo)
	}
}

// Event represents a single logged habit event. Events are immutable once
// created; the only write operations are insert and delete.
type Event struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	GroupID     *int        `json:"group_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Duration    *int        `json:"duration,omitempty"` // seconds
	Consistency Consistency `json:"consistency"`
	Notes       *string     `json:"notes,omitempty"`
}

// timestampLayouts are the accepted input formats, most specific first.
// Layouts without a zone designator are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a client-supplied timestamp and normalizes it to
// UTC. Naive timestamps are treated as already being in UTC; zone-aware
// timestamps are converted.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
