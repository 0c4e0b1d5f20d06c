// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seed

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/paralympics-go/internal/store"
)

const regionsCSV = `NOC,region,notes
AUS,Australia,
ANZ,Australia,Australasia
ROT,,Refugee Olympic Team
BRA,Brazil,
GBR,UK,
TUV,,Tuvalu
`

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParseRegions(t *testing.T) {
	got, err := ParseRegions(strings.NewReader(regionsCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"Australia", "Brazil", "UK"}, got)
}

func TestParseRegions_MissingColumn(t *testing.T) {
	_, err := ParseRegions(strings.NewReader("NOC,notes\nAUS,\n"))
	assert.Error(t, err)
}

func TestParseCountries(t *testing.T) {
	in := "1|Brazil\n2|Japan\r\nbogus line\n3|\n4|Cote d'Ivoire"
	got, err := ParseCountries(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Brazil", "Japan", "Cote d'Ivoire"}, got)
}

func TestRegions_ResetReplacesRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := store.New(db)

	res, err := Regions(ctx, db, strings.NewReader(regionsCSV), ModeReset)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)

	regions, err := q.ListRegionsByID(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Equal(t, store.Region{ID: 1, Region: "Australia"}, regions[0])
	assert.Equal(t, store.Region{ID: 3, Region: "UK"}, regions[2])

	// Re-initialising with a shorter file leaves exactly the new set.
	_, err = Regions(ctx, db, strings.NewReader("NOC,region,notes\nKEN,Kenya,\n"), ModeReset)
	require.NoError(t, err)

	regions, err = q.ListRegionsByID(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Region{{ID: 1, Region: "Kenya"}}, regions)
}

func TestRegions_OnceSkipsPopulatedTable(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := Regions(ctx, db, strings.NewReader(regionsCSV), ModeOnce)
	require.NoError(t, err)

	res, err := Regions(ctx, db, strings.NewReader("NOC,region,notes\nKEN,Kenya,\n"), ModeOnce)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	n, err := store.New(db).CountRegions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestCountries_LoadTwiceDoesNotDuplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	src := "1|Brazil\n2|Japan\n3|Brazil\n"

	for _, mode := range []string{ModeReset, ModeReset, ModeOnce} {
		_, err := Countries(ctx, db, strings.NewReader(src), mode)
		require.NoError(t, err)
	}

	countries, err := store.New(db).ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "Brazil", countries[0].CountryName)
	assert.Equal(t, "Japan", countries[1].CountryName)
}

func TestRun_EmbeddedAndOverride(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := store.New(db)

	require.NoError(t, Run(ctx, db, "", ModeReset))

	regions, err := q.CountRegions(ctx)
	require.NoError(t, err)
	assert.Greater(t, regions, int64(50))
	countries, err := q.CountCountries(ctx)
	require.NoError(t, err)
	assert.Greater(t, countries, int64(50))

	// A data dir with only one file falls back to the embedded copy for the other.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RegionsFile), []byte(regionsCSV), 0o600))
	require.NoError(t, Run(ctx, db, dir, ModeReset))

	regions, err = q.CountRegions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, regions)
}
