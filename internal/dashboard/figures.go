// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrUnknownVariable is returned for a line chart variable that is not a dataset column.
	ErrUnknownVariable = errors.New("unknown chart variable")
	// ErrUnknownType is returned for an event type other than Summer or Winter.
	ErrUnknownType = errors.New("unknown event type")
	// ErrUnknownStyle is returned for a map style other than OSM or USGS.
	ErrUnknownStyle = errors.New("unknown map style")
	// ErrNoMedals is returned when no standings exist for a Games.
	ErrNoMedals = errors.New("no medal standings")
	// ErrNoHighlight is returned when no Games matches a location and year.
	ErrNoHighlight = errors.New("no highlight for location and year")
	// ErrMalformedHover is returned when hover data lacks the expected points.
	ErrMalformedHover = errors.New("malformed hover data")
)

// Figure is a Plotly figure: a list of traces and a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of Plotly trace attributes the dashboard uses.
type Trace struct {
	Type          string    `json:"type"`
	Name          string    `json:"name,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	X             []any     `json:"x,omitempty"`
	Y             []any     `json:"y,omitempty"`
	Lat           []float64 `json:"lat,omitempty"`
	Lon           []float64 `json:"lon,omitempty"`
	Text          []string  `json:"text,omitempty"`
	CustomData    [][]any   `json:"customdata,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
	Header        *Cells    `json:"header,omitempty"`
	Cells         *Cells    `json:"cells,omitempty"`
}

// Marker styles trace points or bars.
type Marker struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

// Cells holds table header or body values, one slice per column.
type Cells struct {
	Values [][]any `json:"values"`
	Align  string  `json:"align,omitempty"`
	Fill   *Fill   `json:"fill,omitempty"`
}

// Fill is a table cell background.
type Fill struct {
	Color string `json:"color"`
}

// Layout is the subset of Plotly layout attributes the dashboard uses.
type Layout struct {
	Title   Title   `json:"title"`
	XAxis   *Axis   `json:"xaxis,omitempty"`
	YAxis   *Axis   `json:"yaxis,omitempty"`
	BarMode string  `json:"barmode,omitempty"`
	Mapbox  *Mapbox `json:"mapbox,omitempty"`
	Margin  *Margin `json:"margin,omitempty"`
	Height  int     `json:"height,omitempty"`
}

// Title is a figure or axis title.
type Title struct {
	Text string `json:"text"`
}

// Axis configures a cartesian axis.
type Axis struct {
	Title Title  `json:"title"`
	Type  string `json:"type,omitempty"`
}

// Mapbox configures a map subplot.
type Mapbox struct {
	Style  string        `json:"style"`
	Center LatLon        `json:"center"`
	Zoom   float64       `json:"zoom"`
	Layers []MapboxLayer `json:"layers,omitempty"`
}

// LatLon is a map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapboxLayer is a raster tile layer drawn under the traces.
type MapboxLayer struct {
	Below             string   `json:"below"`
	SourceType        string   `json:"sourcetype"`
	SourceAttribution string   `json:"sourceattribution"`
	Source            []string `json:"source"`
}

// Margin sets figure margins in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// ChartVariables maps each line chart variable to its axis label.
var ChartVariables = map[string]string{
	"EVENTS":       "events",
	"SPORTS":       "sports",
	"COUNTRIES":    "countries",
	"PARTICIPANTS": "athletes",
}

const usgsTiles = "https://basemap.nationalmap.gov/arcgis/rest/services/USGSImageryOnly/MapServer/tile/{z}/{y}/{x}"

func (g Games) value(variable string) int {
	switch variable {
	case "EVENTS":
		return g.Events
	case "SPORTS":
		return g.Sports
	case "COUNTRIES":
		return g.Countries
	default:
		return g.Participants
	}
}

// LineChartOverTime plots variable by year with one line per event type.
func (d *Dataset) LineChartOverTime(variable string) (Figure, error) {
	label, ok := ChartVariables[variable]
	if !ok {
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}

	fig := Figure{
		Layout: Layout{
			Title: Title{Text: "How has the number of " + label + " changed over time?"},
			XAxis: &Axis{Title: Title{Text: "Year"}},
			YAxis: &Axis{Title: Title{Text: "Number of " + label}},
		},
	}
	for _, t := range []string{TypeSummer, TypeWinter} {
		trace := Trace{Type: "scatter", Mode: "lines", Name: t}
		for _, g := range d.GamesOfType(t) {
			trace.X = append(trace.X, g.Year)
			trace.Y = append(trace.Y, g.value(variable))
		}
		fig.Data = append(fig.Data, trace)
	}
	return fig, nil
}

// StackedBarGender plots the male and female share of athletes at each Games
// of one type.
func (d *Dataset) StackedBarGender(eventType string) (Figure, error) {
	games := d.GamesOfType(eventType)
	if eventType != TypeSummer && eventType != TypeWinter {
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownType, eventType)
	}

	male := Trace{Type: "bar", Name: "Male", Marker: &Marker{Color: "#1f77b4"}}
	female := Trace{Type: "bar", Name: "Female", Marker: &Marker{Color: "#e377c2"}}
	for _, g := range games {
		x := g.Location + " " + strconv.Itoa(g.Year)
		m, f := genderShare(g)
		male.X = append(male.X, x)
		male.Y = append(male.Y, m)
		female.X = append(female.X, x)
		female.Y = append(female.Y, f)
	}

	return Figure{
		Data: []Trace{male, female},
		Layout: Layout{
			Title:   Title{Text: "Ratio of male and female athletes at " + eventType + " Paralympics"},
			BarMode: "stack",
			XAxis:   &Axis{Title: Title{Text: "Games"}, Type: "category"},
			YAxis:   &Axis{Title: Title{Text: "Percentage of athletes"}},
		},
	}, nil
}

// genderShare returns the male and female percentage rounded to one decimal.
func genderShare(g Games) (float64, float64) {
	total := g.ParticipantsM + g.ParticipantsF
	if total == 0 {
		return 0, 0
	}
	round := func(v float64) float64 { return math.Round(v*10) / 10 }
	m := float64(g.ParticipantsM) / float64(total) * 100
	return round(m), round(100 - m)
}

// ScatterMapLocations places every Games on a map. Each point's customdata is
// [TYPE, PARTICIPANTS, LOCATION, YEAR], which the hover callback relies on.
func (d *Dataset) ScatterMapLocations(style string) (Figure, error) {
	mb := &Mapbox{Center: LatLon{Lat: 30, Lon: 0}, Zoom: 0.6}
	switch style {
	case "OSM":
		mb.Style = "open-street-map"
	case "USGS":
		mb.Style = "white-bg"
		mb.Layers = []MapboxLayer{{
			Below:             "traces",
			SourceType:        "raster",
			SourceAttribution: "United States Geological Survey",
			Source:            []string{usgsTiles},
		}}
	default:
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	trace := Trace{
		Type:          "scattermapbox",
		Mode:          "markers",
		Marker:        &Marker{Size: 10, Color: "#0b3d91"},
		HoverTemplate: "%{customdata[2]} %{customdata[3]}<br>%{customdata[0]} Games, %{customdata[1]} athletes<extra></extra>",
	}
	for _, g := range d.games {
		trace.Lat = append(trace.Lat, g.Lat)
		trace.Lon = append(trace.Lon, g.Lon)
		trace.Text = append(trace.Text, g.Location)
		trace.CustomData = append(trace.CustomData, []any{g.Type, g.Participants, g.Location, g.Year})
	}

	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title:  Title{Text: "Where have the Paralympics been held?"},
			Mapbox: mb,
			Margin: &Margin{L: 0, R: 0, T: 40, B: 0},
			Height: 500,
		},
	}, nil
}

// TopTenGold tabulates the ten NPCs with the most gold medals since 1960.
func (d *Dataset) TopTenGold() Figure {
	top := d.TopGold(1960, 10)
	npcs := make([]any, len(top))
	gold := make([]any, len(top))
	for i, t := range top {
		npcs[i] = t.NPC
		gold[i] = t.Gold
	}
	return tableFigure("Top ten NPCs by gold medals since 1960",
		[]any{"NPC", "Gold"}, [][]any{npcs, gold})
}

// MedalsTable tabulates the standings for the Games at location in year.
func (d *Dataset) MedalsTable(location string, year int) (Figure, error) {
	standings := d.Standings(location, year)
	if len(standings) == 0 {
		return Figure{}, fmt.Errorf("%w: %s %d", ErrNoMedals, location, year)
	}

	cols := make([][]any, 5)
	for _, m := range standings {
		cols[0] = append(cols[0], m.NPC)
		cols[1] = append(cols[1], m.Gold)
		cols[2] = append(cols[2], m.Silver)
		cols[3] = append(cols[3], m.Bronze)
		cols[4] = append(cols[4], m.Total())
	}
	return tableFigure(fmt.Sprintf("Medal table: %s %d", location, year),
		[]any{"NPC", "Gold", "Silver", "Bronze", "Total"}, cols), nil
}

func tableFigure(title string, header []any, cols [][]any) Figure {
	hv := make([][]any, len(header))
	for i, h := range header {
		hv[i] = []any{h}
	}
	return Figure{
		Data: []Trace{{
			Type:   "table",
			Header: &Cells{Values: hv, Align: "left", Fill: &Fill{Color: "lightskyblue"}},
			Cells:  &Cells{Values: cols, Align: "left", Fill: &Fill{Color: "white"}},
		}},
		Layout: Layout{Title: Title{Text: title}},
	}
}
