// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Profile struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Photo     sql.NullString `json:"photo"`
	Bio       sql.NullString `json:"bio"`
	RegionID  sql.NullInt64  `json:"region_id"`
	UserID    int64          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Region struct {
	ID     int64  `json:"id"`
	Region string `json:"region"`
}

type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID          int64     `json:"id"`
	CommenterID int64     `json:"commenter_id"`
	PostID      int64     `json:"post_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

type Country struct {
	ID          int64  `json:"id"`
	CountryName string `json:"country_name"`
}

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}
