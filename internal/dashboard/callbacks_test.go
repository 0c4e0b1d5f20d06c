// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/paralympics-go/internal/cache"
)

func TestShowHideRatioCharts(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		winter   string
		summer   string
	}{
		{"none", nil, "none", "none"},
		{"empty", []string{}, "none", "none"},
		{"winter", []string{"Winter"}, "block", "none"},
		{"summer", []string{"Summer"}, "none", "block"},
		{"both", []string{"Summer", "Winter"}, "block", "block"},
		{"lowercase ignored", []string{"winter"}, "none", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShowHideRatioCharts(tt.selected)
			assert.Equal(t, tt.winter, got[0].Display)
			assert.Equal(t, tt.summer, got[1].Display)
		})
	}
}

func hover(t *testing.T, raw string) HoverData {
	t.Helper()
	var h HoverData
	require.NoError(t, json.Unmarshal([]byte(raw), &h))
	return h
}

func TestParseHover(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		location string
		year     int
	}{
		{"numeric year", `{"points":[{"customdata":["Summer",4237,"London",2012]}]}`, "London", 2012},
		{"string year", `{"points":[{"customdata":["Winter",564,"Beijing","2022"]}]}`, "Beijing", 2022},
		{"extra points", `{"points":[{"customdata":["Summer",209,"Rome",1960]},{"customdata":[]}]}`, "Rome", 1960},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location, year, err := ParseHover(hover(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.location, location)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestParseHover_Malformed(t *testing.T) {
	tests := []string{
		`{}`,
		`{"points":[]}`,
		`{"points":[{}]}`,
		`{"points":[{"customdata":["Summer",209,"Rome"]}]}`,
		`{"points":[{"customdata":["Summer",209,42,1960]}]}`,
		`{"points":[{"customdata":["Summer",209,"",1960]}]}`,
		`{"points":[{"customdata":["Summer",209,"Rome","sixty"]}]}`,
		`{"points":[{"customdata":["Summer",209,"Rome",null]}]}`,
	}

	for _, raw := range tests {
		_, _, err := ParseHover(hover(t, raw))
		assert.True(t, errors.Is(err, ErrMalformedHover), "payload %s: %v", raw, err)
	}
}

func TestDisplayHoverData(t *testing.T) {
	d := testDataset(t)

	text, err := d.DisplayHoverData(hover(t, `{"points":[{"customdata":["Summer",4237,"London",2012]}]}`))
	require.NoError(t, err)
	want, _ := d.Highlight("London", 2012)
	assert.Equal(t, want, text)

	_, err = d.DisplayHoverData(hover(t, `{"points":[{"customdata":["Summer",1,"London",1999]}]}`))
	assert.True(t, errors.Is(err, ErrNoHighlight))
}

func TestService_CachesFigures(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })
	svc := NewService(testDataset(t), mem, time.Minute)
	ctx := context.Background()

	first, err := svc.LineChart(ctx, "SPORTS")
	require.NoError(t, err)
	ok, err := mem.Has(ctx, "dashboard:line:SPORTS")
	require.NoError(t, err)
	assert.True(t, ok)

	second, err := svc.LineChart(ctx, "SPORTS")
	require.NoError(t, err)
	assert.Equal(t, first.Layout.Title, second.Layout.Title)
	assert.Len(t, second.Data, 2)
	assert.Equal(t, int64(1), mem.Stats().Hits)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })
	svc := NewService(testDataset(t), mem, time.Minute)
	ctx := context.Background()

	_, err := svc.LineChart(ctx, "BOGUS")
	assert.True(t, errors.Is(err, ErrUnknownVariable))
	ok, err := mem.Has(ctx, "dashboard:line:BOGUS")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.MedalsTable(ctx, "London", 1999)
	assert.True(t, errors.Is(err, ErrNoMedals))
}
