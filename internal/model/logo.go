// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"path"
	"slices"
	"strings"
)

// LogoExtensions are the file types listed on the home page.
var LogoExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// Logo is one Games logo file, named YYYY-<event>.<ext>.
type Logo struct {
	File  string
	Year  string
	Event string
}

// ParseLogo splits a logo file name into year and event. The year is the
// first four characters and the event runs from index 5 to the extension.
// It reports false for names that do not fit the pattern.
func ParseLogo(name string) (Logo, bool) {
	ext := strings.ToLower(path.Ext(name))
	if !slices.Contains(LogoExtensions, ext) {
		return Logo{}, false
	}
	stem := strings.TrimSuffix(name, path.Ext(name))
	if len(stem) < 6 || stem[4] != '-' {
		return Logo{}, false
	}
	return Logo{File: name, Year: stem[:4], Event: stem[5:]}, true
}

// SortLogos orders logos by year, then by event name.
func SortLogos(logos []Logo) {
	slices.SortStableFunc(logos, func(a, b Logo) int {
		if c := strings.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return strings.Compare(a.Event, b.Event)
	})
}
