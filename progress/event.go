// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package progress publishes the milestones of a research run to external sinks.
package progress

import (
	"context"
	"errors"
	"time"
)

// EventType names a research milestone.
type EventType string

const (
	ResearchStarted       EventType = "research.started"
	ExploreCompleted      EventType = "explore.completed"
	IterationStarted      EventType = "iteration.started"
	SubTopicCompleted     EventType = "subtopic.completed"
	SearchFailed          EventType = "search.failed"
	IterationCompleted    EventType = "iteration.completed"
	ReportWritten         EventType = "report.written"
	VerificationCompleted EventType = "verification.completed"
	ResearchCompleted     EventType = "research.completed"
	ResearchFailed        EventType = "research.failed"
)

// Event describes an update emitted during a research run.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an event without a timestamp. The host stamps it when
// emitting, since workflow code must not read the wall clock.
func NewEvent(t EventType, payload map[string]any) Event {
	return Event{Type: t, Payload: payload}
}

// Stamped returns a copy of the event with the given timestamp, unless one
// was already set.
func (e Event) Stamped(now time.Time) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = now.UTC()
	}
	return e
}

// Int reads an integer payload field, tolerating the float64 produced by a
// JSON round trip.
func (e Event) Int(key string) int {
	switch v := e.Payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Publisher publishes events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(context.Context, Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Multi publishes every event to all publishers, joining their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// WithMetadata returns a publisher that merges md into the metadata of every
// event before handing it to p. Keys already set on the event win.
func WithMetadata(p Publisher, md map[string]any) Publisher {
	return PublisherFunc(func(ctx context.Context, event Event) error {
		event.Metadata = mergeMetadata(event.Metadata, md)
		return p.Publish(ctx, event)
	})
}

func mergeMetadata(dst, src map[string]any) map[string]any {
	merged := make(map[string]any, len(dst)+len(src))
	for k, v := range src {
		merged[k] = v
	}
	for k, v := range dst {
		merged[k] = v
	}
	return merged
}
