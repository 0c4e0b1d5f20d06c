// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/paralympics-go/internal/dashboard"
	"github.com/olegiv/paralympics-go/internal/render"
)

// DashboardHandler serves the dashboard page and its JSON callbacks.
type DashboardHandler struct {
	service  *dashboard.Service
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *dashboard.Service, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{service: service, renderer: renderer}
}

// ChartVariable is one dropdown choice for the line chart.
type ChartVariable struct {
	Value string
	Label string
}

// GamesOption is one choice for the medal table.
type GamesOption struct {
	Location string
	Year     int
}

// DashboardData is passed to the dashboard template.
type DashboardData struct {
	Variables []ChartVariable
	Games     []GamesOption
	MapStyles []string
}

// Page renders the dashboard. Figures are fetched by the page's script.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	vars := make([]ChartVariable, 0, len(dashboard.ChartVariables))
	for v, label := range dashboard.ChartVariables {
		vars = append(vars, ChartVariable{Value: v, Label: label})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Value < vars[j].Value })

	games := h.service.Dataset().Games()
	opts := make([]GamesOption, 0, len(games))
	for _, g := range games {
		opts = append(opts, GamesOption{Location: g.Location, Year: g.Year})
	}

	renderPage(w, r, h.renderer, http.StatusOK, "dashboard", render.TemplateData{
		Title: "Paralympics Dashboard",
		Data: DashboardData{
			Variables: vars,
			Games:     opts,
			MapStyles: []string{"OSM", "USGS"},
		},
	})
}

// LineChart answers the dropdown callback: {"value":"EVENTS"}.
func (h *DashboardHandler) LineChart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	fig, err := h.service.LineChart(r.Context(), req.Value)
	if err != nil {
		h.figureError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"figure": fig})
}

// RatioCharts answers the checklist callback: {"value":["Winter"]}. The
// response holds the winter and summer chart styles, in that order.
func (h *DashboardHandler) RatioCharts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value []string `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	styles := dashboard.ShowHideRatioCharts(req.Value)
	writeJSONSuccess(w, map[string]any{"styles": styles})
}

// Highlight answers the map hover callback: {"hoverData":{"points":[...]}}.
func (h *DashboardHandler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HoverData *dashboard.HoverData `json:"hoverData"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.HoverData == nil {
		writeJSONError(w, http.StatusBadRequest, "hoverData is required")
		return
	}

	text, err := h.service.Highlight(*req.HoverData)
	if err != nil {
		h.figureError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"text": text})
}

// GenderFigure returns the gender ratio chart for one event type.
func (h *DashboardHandler) GenderFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := h.service.GenderChart(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		h.figureError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"figure": fig})
}

// MapFigure returns the Games location map in the requested style.
func (h *DashboardHandler) MapFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := h.service.Map(r.Context(), strings.ToUpper(chi.URLParam(r, "style")))
	if err != nil {
		h.figureError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"figure": fig})
}

// TopTenGold returns the gold medal table.
func (h *DashboardHandler) TopTenGold(w http.ResponseWriter, r *http.Request) {
	fig, err := h.service.TopTenGold(r.Context())
	if err != nil {
		h.figureError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"figure": fig})
}

// Medals returns the standings for ?location=&year=.
func (h *DashboardHandler) Medals(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if location == "" || err != nil {
		writeJSONError(w, http.StatusBadRequest, "location and year are required")
		return
	}

	fig, err := h.service.MedalsTable(r.Context(), location, year)
	if err != nil {
		h.figureError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"figure": fig})
}

// figureError maps dashboard errors to JSON responses: bad input is 400,
// missing data is 404.
func (h *DashboardHandler) figureError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownVariable),
		errors.Is(err, dashboard.ErrUnknownType),
		errors.Is(err, dashboard.ErrUnknownStyle),
		errors.Is(err, dashboard.ErrMalformedHover):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrNoHighlight),
		errors.Is(err, dashboard.ErrNoMedals):
		writeJSONError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("dashboard figure failed", "category", "dashboard", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
