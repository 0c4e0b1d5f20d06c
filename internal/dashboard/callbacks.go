// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dashboard

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Style is the CSS style applied to a chart container.
type Style struct {
	Display string `json:"display"`
}

var (
	shown  = Style{Display: "block"}
	hidden = Style{Display: "none"}
)

// UpdateLineChart returns the line chart for the dropdown value.
func (d *Dataset) UpdateLineChart(value string) (Figure, error) {
	return d.LineChartOverTime(value)
}

// ShowHideRatioCharts returns the winter and summer chart styles, in that
// order, for the checklist selection.
func ShowHideRatioCharts(selected []string) [2]Style {
	out := [2]Style{hidden, hidden}
	if slices.Contains(selected, TypeWinter) {
		out[0] = shown
	}
	if slices.Contains(selected, TypeSummer) {
		out[1] = shown
	}
	return out
}

// HoverData is the payload Plotly sends when a map marker is hovered.
type HoverData struct {
	Points []HoverPoint `json:"points"`
}

// HoverPoint is one hovered marker.
type HoverPoint struct {
	CustomData []json.RawMessage `json:"customdata"`
}

// ParseHover extracts the location and year from the first hovered point.
// The year may arrive as a JSON number or a string.
func ParseHover(h HoverData) (string, int, error) {
	if len(h.Points) == 0 {
		return "", 0, fmt.Errorf("%w: no points", ErrMalformedHover)
	}
	cd := h.Points[0].CustomData
	if len(cd) < 4 {
		return "", 0, fmt.Errorf("%w: customdata has %d items", ErrMalformedHover, len(cd))
	}

	var location string
	if err := json.Unmarshal(cd[2], &location); err != nil || location == "" {
		return "", 0, fmt.Errorf("%w: location", ErrMalformedHover)
	}

	year, err := parseYear(cd[3])
	if err != nil {
		return "", 0, fmt.Errorf("%w: year: %v", ErrMalformedHover, err)
	}
	return location, year, nil
}

func parseYear(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Atoi(n.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// DisplayHoverData returns the highlight for the hovered Games.
func (d *Dataset) DisplayHoverData(h HoverData) (string, error) {
	location, year, err := ParseHover(h)
	if err != nil {
		return "", err
	}
	return d.Highlight(location, year)
}
