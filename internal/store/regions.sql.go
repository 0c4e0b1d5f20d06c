// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const upsertRegion = `-- name: UpsertRegion :exec
INSERT INTO region (id, region) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET region = excluded.region
`

type UpsertRegionParams struct {
	ID     int64  `json:"id"`
	Region string `json:"region"`
}

func (q *Queries) UpsertRegion(ctx context.Context, arg UpsertRegionParams) error {
	_, err := q.db.ExecContext(ctx, upsertRegion, arg.ID, arg.Region)
	return err
}

const deleteRegionsAbove = `-- name: DeleteRegionsAbove :execrows
DELETE FROM region WHERE id > ?
`

// DeleteRegionsAbove removes regions with an id greater than maxID.
// Profiles pointing at a removed region have region_id set to NULL.
func (q *Queries) DeleteRegionsAbove(ctx context.Context, maxID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRegionsAbove, maxID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getRegion = `-- name: GetRegion :one
SELECT id, region FROM region WHERE id = ?
`

func (q *Queries) GetRegion(ctx context.Context, id int64) (Region, error) {
	row := q.db.QueryRowContext(ctx, getRegion, id)
	var i Region
	err := row.Scan(&i.ID, &i.Region)
	return i, err
}

const countRegions = `-- name: CountRegions :one
SELECT COUNT(*) FROM region
`

func (q *Queries) CountRegions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRegions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listRegionsByName = `-- name: ListRegionsByName :many
SELECT id, region FROM region ORDER BY region, id
`

func (q *Queries) ListRegionsByName(ctx context.Context) ([]Region, error) {
	return q.listRegions(ctx, listRegionsByName)
}

const listRegionsByID = `-- name: ListRegionsByID :many
SELECT id, region FROM region ORDER BY id
`

func (q *Queries) ListRegionsByID(ctx context.Context) ([]Region, error) {
	return q.listRegions(ctx, listRegionsByID)
}

func (q *Queries) listRegions(ctx context.Context, query string) ([]Region, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Region{}
	for rows.Next() {
		var i Region
		if err := rows.Scan(&i.ID, &i.Region); err != nil {
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
