// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createProfile = `-- name: CreateProfile :one
INSERT INTO profile (username, photo, bio, region_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, username, photo, bio, region_id, user_id, created_at, updated_at
`

type CreateProfileParams struct {
	Username  string         `json:"username"`
	Photo     sql.NullString `json:"photo"`
	Bio       sql.NullString `json:"bio"`
	RegionID  sql.NullInt64  `json:"region_id"`
	UserID    int64          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, createProfile,
		arg.Username,
		arg.Photo,
		arg.Bio,
		arg.RegionID,
		arg.UserID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Photo,
		&i.Bio,
		&i.RegionID,
		&i.UserID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProfileByUserID = `-- name: GetProfileByUserID :one
SELECT id, username, photo, bio, region_id, user_id, created_at, updated_at FROM profile
WHERE user_id = ?
ORDER BY id
LIMIT 1
`

func (q *Queries) GetProfileByUserID(ctx context.Context, userID int64) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfileByUserID, userID)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Photo,
		&i.Bio,
		&i.RegionID,
		&i.UserID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const countProfilesByUsername = `-- name: CountProfilesByUsername :one
SELECT COUNT(*) FROM profile WHERE username = ?
`

func (q *Queries) CountProfilesByUsername(ctx context.Context, username string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProfilesByUsername, username)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateProfile = `-- name: UpdateProfile :one
UPDATE profile
SET username = ?, photo = ?, bio = ?, region_id = ?, updated_at = ?
WHERE id = ?
RETURNING id, username, photo, bio, region_id, user_id, created_at, updated_at
`

type UpdateProfileParams struct {
	Username  string         `json:"username"`
	Photo     sql.NullString `json:"photo"`
	Bio       sql.NullString `json:"bio"`
	RegionID  sql.NullInt64  `json:"region_id"`
	UpdatedAt time.Time      `json:"updated_at"`
	ID        int64          `json:"id"`
}

func (q *Queries) UpdateProfile(ctx context.Context, arg UpdateProfileParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, updateProfile,
		arg.Username,
		arg.Photo,
		arg.Bio,
		arg.RegionID,
		arg.UpdatedAt,
		arg.ID,
	)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Photo,
		&i.Bio,
		&i.RegionID,
		&i.UserID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// ProfileDetail is a profile joined with its region name and owner.
type ProfileDetail struct {
	ID         int64          `json:"id"`
	Username   string         `json:"username"`
	Photo      sql.NullString `json:"photo"`
	Bio        sql.NullString `json:"bio"`
	RegionID   sql.NullInt64  `json:"region_id"`
	UserID     int64          `json:"user_id"`
	RegionName sql.NullString `json:"region_name"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
}

const profileDetailColumns = `p.id, p.username, p.photo, p.bio, p.region_id, p.user_id, r.region, u.first_name, u.last_name
FROM profile p
JOIN "user" u ON u.id = p.user_id
LEFT JOIN region r ON r.id = p.region_id
`

const getProfileDetailByUsername = `-- name: GetProfileDetailByUsername :many
SELECT ` + profileDetailColumns + `WHERE p.username = ?
ORDER BY p.id
`

// GetProfileDetailByUsername returns the profiles whose username is exactly username.
func (q *Queries) GetProfileDetailByUsername(ctx context.Context, username string) ([]ProfileDetail, error) {
	return q.listProfileDetails(ctx, getProfileDetailByUsername, username)
}

const searchProfiles = `-- name: SearchProfiles :many
SELECT ` + profileDetailColumns + `WHERE instr(p.username, ?) > 0
ORDER BY p.username
`

// SearchProfiles returns the profiles whose username contains term.
// instr is case-sensitive, unlike LIKE.
func (q *Queries) SearchProfiles(ctx context.Context, term string) ([]ProfileDetail, error) {
	return q.listProfileDetails(ctx, searchProfiles, term)
}

func (q *Queries) listProfileDetails(ctx context.Context, query string, args ...interface{}) ([]ProfileDetail, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ProfileDetail{}
	for rows.Next() {
		var i ProfileDetail
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.Photo,
			&i.Bio,
			&i.RegionID,
			&i.UserID,
			&i.RegionName,
			&i.FirstName,
			&i.LastName,
		); err != nil {
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
