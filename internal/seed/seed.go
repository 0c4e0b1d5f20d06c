// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seed loads the region and country reference tables from their
// source files.
package seed

import (
	"bufio"
	"context"
	"database/sql"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegiv/paralympics-go/internal/store"
)

// Source file names, looked up in the data dir before falling back to the
// embedded copies.
const (
	RegionsFile   = "noc_regions.csv"
	CountriesFile = "countries.txt"
)

// Seed modes.
const (
	ModeReset = "reset"
	ModeOnce  = "once"
)

//go:embed data/*
var embedded embed.FS

// Result reports what a seed run did.
type Result struct {
	Rows    int
	Skipped bool
}

// ParseRegions reads a NOC regions CSV (NOC,region,notes) and returns the
// region names with empties and duplicates removed, in first-occurrence order.
func ParseRegions(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "region") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.New("region column not found")
	}

	seen := make(map[string]bool)
	var regions []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		name := strings.TrimSpace(rec[col])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		regions = append(regions, name)
	}
	return regions, nil
}

// ParseCountries reads "<index>|<name>" lines and returns the names.
// Lines without a separator and blank names are skipped.
func ParseCountries(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		_, name, ok := strings.Cut(sc.Text(), "|")
		if !ok {
			continue
		}
		name = strings.TrimRight(name, "\r\n")
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading countries: %w", err)
	}
	return names, nil
}

// Regions loads src into the region table. Ids are assigned 1..n in file
// order. In ModeReset the table is rewritten on every call; in ModeOnce it is
// left alone when it already has rows.
func Regions(ctx context.Context, db *sql.DB, src io.Reader, mode string) (Result, error) {
	names, err := ParseRegions(src)
	if err != nil {
		return Result{}, fmt.Errorf("parsing regions: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := store.New(db).WithTx(tx)

	if mode == ModeOnce {
		n, err := q.CountRegions(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("counting regions: %w", err)
		}
		if n > 0 {
			return Result{Rows: int(n), Skipped: true}, nil
		}
	}

	for i, name := range names {
		if err := q.UpsertRegion(ctx, store.UpsertRegionParams{ID: int64(i + 1), Region: name}); err != nil {
			return Result{}, fmt.Errorf("inserting region %q: %w", name, err)
		}
	}
	if _, err := q.DeleteRegionsAbove(ctx, int64(len(names))); err != nil {
		return Result{}, fmt.Errorf("trimming regions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("committing regions: %w", err)
	}
	return Result{Rows: len(names)}, nil
}

// Countries loads src into the country table. Names already present are
// ignored, so loading the same file twice never duplicates rows.
func Countries(ctx context.Context, db *sql.DB, src io.Reader, mode string) (Result, error) {
	names, err := ParseCountries(src)
	if err != nil {
		return Result{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := store.New(db).WithTx(tx)

	switch mode {
	case ModeOnce:
		n, err := q.CountCountries(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("counting countries: %w", err)
		}
		if n > 0 {
			return Result{Rows: int(n), Skipped: true}, nil
		}
	default:
		if err := q.DeleteAllCountries(ctx); err != nil {
			return Result{}, fmt.Errorf("clearing countries: %w", err)
		}
	}

	inserted := 0
	for _, name := range names {
		n, err := q.InsertCountry(ctx, name)
		if err != nil {
			return Result{}, fmt.Errorf("inserting country %q: %w", name, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("committing countries: %w", err)
	}
	return Result{Rows: inserted}, nil
}

// Run seeds both reference tables, reading files from dataDir when present
// and from the embedded copies otherwise.
func Run(ctx context.Context, db *sql.DB, dataDir, mode string) error {
	steps := []struct {
		file string
		load func(context.Context, *sql.DB, io.Reader, string) (Result, error)
	}{
		{RegionsFile, Regions},
		{CountriesFile, Countries},
	}

	for _, step := range steps {
		f, err := open(dataDir, step.file)
		if err != nil {
			return err
		}
		res, err := step.load(ctx, db, f, mode)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("seeding %s: %w", step.file, err)
		}
		if res.Skipped {
			slog.Info("reference table already populated, skipping seed", "file", step.file, "rows", res.Rows)
			continue
		}
		slog.Info("seeded reference table", "file", step.file, "rows", res.Rows, "mode", mode)
	}
	return nil
}

func open(dataDir, name string) (io.ReadCloser, error) {
	if dataDir != "" {
		f, err := os.Open(filepath.Join(dataDir, name))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
	}
	f, err := embedded.Open("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s: %w", name, err)
	}
	return f, nil
}
