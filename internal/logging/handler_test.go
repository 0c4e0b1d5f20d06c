// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/olegiv/paralympics-go/internal/model"
	"github.com/olegiv/paralympics-go/internal/store"
	"github.com/olegiv/paralympics-go/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Debug("processing request", "request_id", "abc123")
	logger.Info("server started", "port", 8080)
	logger.Warn("slow query detected", "duration_ms", 5000)
	logger.Error("database connection failed", "path", "/tmp/x.db")

	events := listEvents(t, db)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	levels := map[string]string{}
	for _, e := range events {
		levels[e.Message] = e.Level
	}
	if levels["slow query detected"] != model.EventLevelWarning {
		t.Errorf("warn level = %q, want %q", levels["slow query detected"], model.EventLevelWarning)
	}
	if levels["database connection failed"] != model.EventLevelError {
		t.Errorf("error level = %q, want %q", levels["database connection failed"], model.EventLevelError)
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("server started", "port", 8080)

	if n := len(listEvents(t, db)); n != 1 {
		t.Errorf("expected 1 event with custom INFO level, got %d", n)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"login attempt blocked", model.EventCategoryAuth},
		{"signup failed", model.EventCategoryAuth},
		{"logout completed", model.EventCategoryAuth},
		{"profile photo rejected", model.EventCategoryProfile},
		{"failed to create comment", model.EventCategoryBlog},
		{"seeding regions failed", model.EventCategorySeed},
		{"dashboard callback failed", model.EventCategoryDashboard},
		{"cache unavailable", model.EventCategoryCache},
		{"config value ignored", model.EventCategoryConfig},
		{"unknown error occurred", model.EventCategorySystem},
	}

	for _, tt := range tests {
		if got := category(tt.message, nil); got != tt.want {
			t.Errorf("category(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestEventLogHandler_ExplicitCategoryAndUser(t *testing.T) {
	db := testutil.TestDB(t)
	user := testutil.CreateUser(t, db, "Ada", "Lovelace", "ada@example.com", "correct-horse")
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("something happened", "category", model.EventCategoryBlog, "user_id", user.ID)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != model.EventCategoryBlog {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryBlog)
	}
	if !events[0].UserID.Valid || events[0].UserID.Int64 != user.ID {
		t.Errorf("UserID = %+v, want %d", events[0].UserID, user.ID)
	}
	if want := fmt.Sprintf(`{"user_id":"%d"}`, user.ID); events[0].Metadata != want {
		t.Errorf("Metadata = %q, want %q", events[0].Metadata, want)
	}
}

func TestEventLogHandler_UnknownUser(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("login attempt for deleted account", "user_id", int64(42))

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].UserID.Valid {
		t.Errorf("UserID = %+v, want NULL", events[0].UserID)
	}
	if events[0].Metadata != `{"user_id":"42"}` {
		t.Errorf("Metadata = %q", events[0].Metadata)
	}
}

// recordingHandler keeps the messages of the records it handles.
type recordingHandler struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler            { return h }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}

func TestEventLogHandler_WriteFailureGoesToInner(t *testing.T) {
	db := testutil.TestDB(t)
	inner := &recordingHandler{}
	logger := slog.New(NewEventLogHandler(inner, db))

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	logger.Error("upstream unavailable")

	want := []string{"upstream unavailable", "failed to write event log entry"}
	if len(inner.messages) != len(want) {
		t.Fatalf("inner messages = %q, want %q", inner.messages, want)
	}
	for i := range want {
		if inner.messages[i] != want[i] {
			t.Errorf("inner message %d = %q, want %q", i, inner.messages[i], want[i])
		}
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db).WithAttrs([]slog.Attr{
		slog.String("component", "upload"),
	}))

	logger.Error("request failed",
		"status_code", 500,
		"input", `{"key": "value with \"quotes\""}`,
		"message", "line1\nline2\ttabbed",
	)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v (%s)", err, events[0].Metadata)
	}
	want := map[string]string{
		"component":   "upload",
		"status_code": "500",
		"input":       `{"key": "value with \"quotes\""}`,
		"message":     "line1\nline2\ttabbed",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, meta[k], v)
		}
	}
}

func TestEventLogHandler_EmptyMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db).WithGroup("request"))

	logger.Error("request error")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Metadata != "{}" {
		t.Errorf("Metadata = %q, want {}", events[0].Metadata)
	}
}

func TestEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}

	for _, tt := range tests {
		if got := eventLevel(tt.level); got != tt.want {
			t.Errorf("eventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
