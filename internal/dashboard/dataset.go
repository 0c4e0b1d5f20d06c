// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dashboard builds the Paralympics analytics figures and answers the
// dashboard's interactive callbacks.
package dashboard

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Data file names, read from the data dir when present.
const (
	EventsFile = "paralympic_events.csv"
	MedalsFile = "medal_standings.csv"
)

// Event types.
const (
	TypeSummer = "Summer"
	TypeWinter = "Winter"
)

//go:embed data/*.csv
var embedded embed.FS

// Games is one edition of the Paralympic Games.
type Games struct {
	Type          string  `json:"type"`
	Year          int     `json:"year"`
	Location      string  `json:"location"`
	Countries     int     `json:"countries"`
	Events        int     `json:"events"`
	Sports        int     `json:"sports"`
	ParticipantsM int     `json:"participants_m"`
	ParticipantsF int     `json:"participants_f"`
	Participants  int     `json:"participants"`
	Highlights    string  `json:"highlights"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

// Medals is one NPC's standing at one Games.
type Medals struct {
	Event  string `json:"event"`
	Year   int    `json:"year"`
	NPC    string `json:"npc"`
	Gold   int    `json:"gold"`
	Silver int    `json:"silver"`
	Bronze int    `json:"bronze"`
}

// Total returns the medal count.
func (m Medals) Total() int {
	return m.Gold + m.Silver + m.Bronze
}

// Dataset is the immutable data behind every figure. It is safe to share
// between goroutines.
type Dataset struct {
	games  []Games
	medals []Medals
}

// NewDataset copies games and medals and orders games by year then type.
func NewDataset(games []Games, medals []Medals) *Dataset {
	g := append([]Games(nil), games...)
	sort.SliceStable(g, func(i, j int) bool {
		if g[i].Year != g[j].Year {
			return g[i].Year < g[j].Year
		}
		return g[i].Type < g[j].Type
	})
	return &Dataset{games: g, medals: append([]Medals(nil), medals...)}
}

// LoadDataset reads both CSV files from dataDir, falling back to the copies
// built into the binary for any file that is missing.
func LoadDataset(dataDir string) (*Dataset, error) {
	ef, err := openData(dataDir, EventsFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ef.Close() }()
	games, err := ParseGames(ef)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", EventsFile, err)
	}

	mf, err := openData(dataDir, MedalsFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = mf.Close() }()
	medals, err := ParseMedals(mf)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MedalsFile, err)
	}

	return NewDataset(games, medals), nil
}

func openData(dataDir, name string) (io.ReadCloser, error) {
	if dataDir != "" {
		f, err := os.Open(filepath.Join(dataDir, name))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
	}
	return embedded.Open("data/" + name)
}

// Games returns a copy of the games ordered by year.
func (d *Dataset) Games() []Games {
	return append([]Games(nil), d.games...)
}

// GamesOfType returns the games of one type ordered by year.
func (d *Dataset) GamesOfType(eventType string) []Games {
	var out []Games
	for _, g := range d.games {
		if g.Type == eventType {
			out = append(out, g)
		}
	}
	return out
}

// Highlight returns the highlight text for the Games held at location in year.
func (d *Dataset) Highlight(location string, year int) (string, error) {
	for _, g := range d.games {
		if g.Location == location && g.Year == year {
			return g.Highlights, nil
		}
	}
	return "", fmt.Errorf("%w: %s %d", ErrNoHighlight, location, year)
}

// Standings returns the medal table for one Games, best first.
func (d *Dataset) Standings(location string, year int) []Medals {
	var out []Medals
	for _, m := range d.medals {
		if m.Event == location && m.Year == year {
			out = append(out, m)
		}
	}
	sortStandings(out)
	return out
}

// GoldTally is one NPC's gold medal total.
type GoldTally struct {
	NPC  string `json:"NPC"`
	Gold int    `json:"Gold"`
}

// TopGold returns the n NPCs with the most gold medals since year.
// Ties are broken by name.
func (d *Dataset) TopGold(since, n int) []GoldTally {
	totals := make(map[string]int)
	for _, m := range d.medals {
		if m.Year >= since {
			totals[m.NPC] += m.Gold
		}
	}

	out := make([]GoldTally, 0, len(totals))
	for npc, gold := range totals {
		out = append(out, GoldTally{NPC: npc, Gold: gold})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gold != out[j].Gold {
			return out[i].Gold > out[j].Gold
		}
		return out[i].NPC < out[j].NPC
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortStandings(m []Medals) {
	sort.SliceStable(m, func(i, j int) bool {
		a, b := m[i], m[j]
		switch {
		case a.Gold != b.Gold:
			return a.Gold > b.Gold
		case a.Silver != b.Silver:
			return a.Silver > b.Silver
		default:
			return a.Bronze > b.Bronze
		}
	})
}

// ParseGames reads the events CSV. Columns are located by header name.
func ParseGames(r io.Reader) ([]Games, error) {
	rows, err := readCSV(r, "TYPE", "YEAR", "LOCATION", "COUNTRIES", "EVENTS", "SPORTS",
		"PARTICIPANTS_M", "PARTICIPANTS_F", "PARTICIPANTS", "HIGHLIGHTS", "LAT", "LON")
	if err != nil {
		return nil, err
	}

	games := make([]Games, 0, len(rows))
	for i, row := range rows {
		p := fieldParser{row: row}
		g := Games{
			Type:          row["TYPE"],
			Year:          p.int("YEAR"),
			Location:      row["LOCATION"],
			Countries:     p.int("COUNTRIES"),
			Events:        p.int("EVENTS"),
			Sports:        p.int("SPORTS"),
			ParticipantsM: p.int("PARTICIPANTS_M"),
			ParticipantsF: p.int("PARTICIPANTS_F"),
			Participants:  p.int("PARTICIPANTS"),
			Highlights:    row["HIGHLIGHTS"],
			Lat:           p.float("LAT"),
			Lon:           p.float("LON"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, p.err)
		}
		games = append(games, g)
	}
	return games, nil
}

// ParseMedals reads the medal standings CSV.
func ParseMedals(r io.Reader) ([]Medals, error) {
	rows, err := readCSV(r, "EVENT", "YEAR", "NPC", "GOLD", "SILVER", "BRONZE")
	if err != nil {
		return nil, err
	}

	medals := make([]Medals, 0, len(rows))
	for i, row := range rows {
		p := fieldParser{row: row}
		m := Medals{
			Event:  row["EVENT"],
			Year:   p.int("YEAR"),
			NPC:    row["NPC"],
			Gold:   p.int("GOLD"),
			Silver: p.int("SILVER"),
			Bronze: p.int("BRONZE"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, p.err)
		}
		medals = append(medals, m)
	}
	return medals, nil
}

// readCSV returns each record keyed by header name, after checking that every
// required column is present.
func readCSV(r io.Reader, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToUpper(strings.TrimSpace(header[i]))
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, fmt.Errorf("missing column %s", col)
		}
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
}

// fieldParser converts numeric columns and keeps the first error.
type fieldParser struct {
	row map[string]string
	err error
}

func (p *fieldParser) int(col string) int {
	v := p.row[col]
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return n
}

func (p *fieldParser) float(col string) float64 {
	v := p.row[col]
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return f
}
