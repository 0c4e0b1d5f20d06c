// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify publishes domain events (sign-ups, profiles, posts) to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types. The NATS subject is SubjectPrefix + type.
const (
	EventUserSignedUp   = "user.signed_up"
	EventProfileCreated = "profile.created"
	EventProfileUpdated = "profile.updated"
	EventPostCreated    = "post.created"
	EventCommentCreated = "comment.created"
)

// SubjectPrefix namespaces every published subject.
const SubjectPrefix = "paralympics."

// Event is the envelope published for every domain event.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// UserEventData describes a new account.
type UserEventData struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ProfileEventData describes a created or updated profile.
type ProfileEventData struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	RegionID *int64 `json:"region_id,omitempty"`
}

// PostEventData describes a new blog post.
type PostEventData struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
}

// CommentEventData describes a new comment.
type CommentEventData struct {
	ID          int64 `json:"id"`
	PostID      int64 `json:"post_id"`
	CommenterID int64 `json:"commenter_id"`
}

// Publisher sends events somewhere. Implementations are safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close()
}

// New connects to the NATS server at url. An empty url returns a publisher
// that drops every event.
func New(url string, logger *slog.Logger) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	return NewNATSPublisher(url, logger)
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, *Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() {}

// NATSPublisher publishes events as JSON on core NATS subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to url and keeps reconnecting in the background
// if the server goes away.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("paralympics"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	logger.Info("nats connected", "url", conn.ConnectedUrl())
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	if err := p.conn.Publish(SubjectPrefix+event.Type, payload); err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}
	return nil
}

// Close flushes buffered messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("nats drain failed", "error", err)
		p.conn.Close()
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() {}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Event(nil), r.events...)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Emit publishes an event and logs, rather than returns, any failure. Domain
// events never fail the request that produced them.
func Emit(ctx context.Context, p Publisher, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, NewEvent(eventType, data)); err != nil {
		slog.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
