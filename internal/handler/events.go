// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/store"
)

// eventLog writes request-scoped entries to the events table.
type eventLog struct {
	queries *store.Queries
}

// record stores one event. Client IP, country, path and a parsed user agent
// are added to metadata. Failures are logged and otherwise ignored.
func (e eventLog) record(r *http.Request, level, category, message string, userID *int64, metadata map[string]any) {
	meta := requestMetadata(r)
	for k, v := range metadata {
		meta[k] = v
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		raw = []byte("{}")
	}

	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: *userID, Valid: true}
	}

	if _, err := e.queries.CreateEvent(r.Context(), store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    uid,
		Metadata:  string(raw),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		slog.Error("failed to record event", "message", message, "error", err)
	}
}

// requestMetadata describes where a request came from.
func requestMetadata(r *http.Request) map[string]any {
	meta := map[string]any{
		"ip":   middleware.GetClientIP(r),
		"path": r.URL.Path,
	}
	if country := middleware.GetCountry(r); country != "" {
		meta["country"] = country
	}
	raw := r.UserAgent()
	if raw == "" {
		return meta
	}

	ua := useragent.Parse(raw)
	meta["browser"] = ua.Name
	meta["os"] = ua.OS
	meta["device"] = deviceType(ua)
	if ua.Bot {
		meta["bot"] = true
	}
	return meta
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}
