// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/olegiv/paralympics-go/internal/cache"
)

// Service serves dashboard figures from a Dataset through a cache. The
// dataset never changes, so cached figures only expire by TTL.
type Service struct {
	data    *Dataset
	figures *cache.TypedCache[Figure]
}

// NewService wraps data with c. Entries live for ttl.
func NewService(data *Dataset, c cache.Cacher, ttl time.Duration) *Service {
	return &Service{
		data:    data,
		figures: cache.NewTypedCache[Figure](c, ttl),
	}
}

// Dataset returns the underlying dataset.
func (s *Service) Dataset() *Dataset {
	return s.data
}

func (s *Service) cached(ctx context.Context, key string, build func() (Figure, error)) (Figure, error) {
	fig, err := s.figures.GetOrSet(ctx, "dashboard:"+key, func() (*Figure, error) {
		f, err := build()
		if err != nil {
			return nil, err
		}
		return &f, nil
	})
	if err != nil {
		return Figure{}, err
	}
	return *fig, nil
}

// LineChart returns the line chart for variable.
func (s *Service) LineChart(ctx context.Context, variable string) (Figure, error) {
	return s.cached(ctx, "line:"+variable, func() (Figure, error) {
		return s.data.UpdateLineChart(variable)
	})
}

// GenderChart returns the stacked gender bar chart for one event type.
func (s *Service) GenderChart(ctx context.Context, eventType string) (Figure, error) {
	return s.cached(ctx, "gender:"+eventType, func() (Figure, error) {
		return s.data.StackedBarGender(eventType)
	})
}

// Map returns the Games location map drawn in style.
func (s *Service) Map(ctx context.Context, style string) (Figure, error) {
	return s.cached(ctx, "map:"+style, func() (Figure, error) {
		return s.data.ScatterMapLocations(style)
	})
}

// TopTenGold returns the gold medal table.
func (s *Service) TopTenGold(ctx context.Context) (Figure, error) {
	return s.cached(ctx, "topgold", func() (Figure, error) {
		return s.data.TopTenGold(), nil
	})
}

// MedalsTable returns the standings table for one Games.
func (s *Service) MedalsTable(ctx context.Context, location string, year int) (Figure, error) {
	return s.cached(ctx, "medals:"+location+":"+strconv.Itoa(year), func() (Figure, error) {
		return s.data.MedalsTable(location, year)
	})
}

// Highlight answers the hover callback.
func (s *Service) Highlight(h HoverData) (string, error) {
	return s.data.DisplayHoverData(h)
}
