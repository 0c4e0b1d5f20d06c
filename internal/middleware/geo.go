// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/paralympics-go/internal/geoip"
)

// ContextKeyCountry holds the client's ISO country code.
const ContextKeyCountry ContextKey = "country"

// GeoCountry resolves the client IP to a country code and stores it in the
// request context. A nil lookup still tags private addresses.
func GeoCountry(lookup *geoip.Lookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if country := lookup.Country(GetClientIP(r)); country != "" {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyCountry, country))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetCountry returns the country code set by GeoCountry, or "".
func GetCountry(r *http.Request) string {
	country, _ := r.Context().Value(ContextKeyCountry).(string)
	return country
}
