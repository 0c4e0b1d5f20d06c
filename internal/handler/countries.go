// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/olegiv/paralympics-go/internal/store"
)

// CountryHandler lists the seeded reference data.
type CountryHandler struct {
	queries *store.Queries
}

// NewCountryHandler creates a new CountryHandler.
func NewCountryHandler(db *sql.DB) *CountryHandler {
	return &CountryHandler{queries: store.New(db)}
}

// List returns every country as JSON, ordered by name.
func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	countries, err := h.queries.ListCountries(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list countries", "error", err)
		return
	}
	if countries == nil {
		countries = []store.Country{}
	}
	writeJSONSuccess(w, map[string]any{
		"countries": countries,
		"count":     len(countries),
	})
}
