// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the events table.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/paralympics-go/internal/model"
	"github.com/olegiv/paralympics-go/internal/store"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// records at or above its level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr // accumulated by WithAttrs
}

// NewEventLogHandler wraps inner and records WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel wraps inner and records level and above.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// writeToEventLog uses a background context so the row is written even when
// the request that logged it has been cancelled.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	ctx := context.Background()
	params := store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		UserID:    userID(attrs),
		Metadata:  metadata(attrs),
		CreatedAt: r.Time,
	}
	_, err := h.queries.CreateEvent(ctx, params)
	if err != nil && params.UserID.Valid && isForeignKeyViolation(err) {
		// The user is gone; keep the event without the link.
		params.UserID = sql.NullInt64{}
		_, err = h.queries.CreateEvent(ctx, params)
	}
	if err != nil {
		// Reported through the wrapped handler only, never back into the events table.
		rec := slog.NewRecord(time.Now(), slog.LevelError, "failed to write event log entry", 0)
		rec.AddAttrs(slog.String("message", r.Message), slog.String("error", err.Error()))
		_ = h.inner.Handle(ctx, rec)
	}
}

// isForeignKeyViolation matches the constraint error text shared by the
// SQLite drivers.
func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// category prefers an explicit "category" attribute and otherwise infers one
// from the message.
func category(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "signup") || strings.Contains(msg, "password"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "profile") || strings.Contains(msg, "photo"):
		return model.EventCategoryProfile
	case strings.Contains(msg, "post") || strings.Contains(msg, "comment"):
		return model.EventCategoryBlog
	case strings.Contains(msg, "seed") || strings.Contains(msg, "region") || strings.Contains(msg, "countr"):
		return model.EventCategorySeed
	case strings.Contains(msg, "dashboard") || strings.Contains(msg, "figure"):
		return model.EventCategoryDashboard
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	case strings.Contains(msg, "config"):
		return model.EventCategoryConfig
	default:
		return model.EventCategorySystem
	}
}

func userID(attrs []slog.Attr) sql.NullInt64 {
	for _, a := range attrs {
		if a.Key != "user_id" {
			continue
		}
		v := a.Value.Resolve()
		switch v.Kind() {
		case slog.KindInt64:
			return sql.NullInt64{Int64: v.Int64(), Valid: true}
		case slog.KindUint64:
			return sql.NullInt64{Int64: int64(v.Uint64()), Valid: true}
		}
	}
	return sql.NullInt64{}
}

// metadata renders every attribute except category as a flat JSON object of
// strings.
func metadata(attrs []slog.Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		m[a.Key] = a.Value.Resolve().String()
	}
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
