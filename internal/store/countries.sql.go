// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const insertCountry = `-- name: InsertCountry :execrows
INSERT INTO country (country_name) VALUES (?)
ON CONFLICT(country_name) DO NOTHING
`

// InsertCountry adds a country and returns 0 when the name already exists.
func (q *Queries) InsertCountry(ctx context.Context, countryName string) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertCountry, countryName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllCountries = `-- name: DeleteAllCountries :exec
DELETE FROM country
`

func (q *Queries) DeleteAllCountries(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllCountries)
	return err
}

const countCountries = `-- name: CountCountries :one
SELECT COUNT(*) FROM country
`

func (q *Queries) CountCountries(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCountries)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listCountries = `-- name: ListCountries :many
SELECT id, country_name FROM country ORDER BY country_name
`

func (q *Queries) ListCountries(ctx context.Context) ([]Country, error) {
	rows, err := q.db.QueryContext(ctx, listCountries)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Country{}
	for rows.Next() {
		var i Country
		if err := rows.Scan(&i.ID, &i.CountryName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
