// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createPost = `-- name: CreatePost :one
INSERT INTO post (author_id, title, text, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, author_id, title, text, created_at
`

type CreatePostParams struct {
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.AuthorID,
		arg.Title,
		arg.Text,
		arg.CreatedAt,
	)
	var i Post
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Title,
		&i.Text,
		&i.CreatedAt,
	)
	return i, err
}

// PostDetail is a post with its author's name and comment count.
type PostDetail struct {
	ID              int64     `json:"id"`
	AuthorID        int64     `json:"author_id"`
	Title           string    `json:"title"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"created_at"`
	AuthorFirstName string    `json:"author_first_name"`
	AuthorLastName  string    `json:"author_last_name"`
	CommentCount    int64     `json:"comment_count"`
}

const getPostDetail = `-- name: GetPostDetail :one
SELECT p.id, p.author_id, p.title, p.text, p.created_at, u.first_name, u.last_name,
       (SELECT COUNT(*) FROM comment c WHERE c.post_id = p.id) AS comment_count
FROM post p
JOIN "user" u ON u.id = p.author_id
WHERE p.id = ?
`

func (q *Queries) GetPostDetail(ctx context.Context, id int64) (PostDetail, error) {
	row := q.db.QueryRowContext(ctx, getPostDetail, id)
	var i PostDetail
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Title,
		&i.Text,
		&i.CreatedAt,
		&i.AuthorFirstName,
		&i.AuthorLastName,
		&i.CommentCount,
	)
	return i, err
}

const listPostDetails = `-- name: ListPostDetails :many
SELECT p.id, p.author_id, p.title, p.text, p.created_at, u.first_name, u.last_name,
       (SELECT COUNT(*) FROM comment c WHERE c.post_id = p.id) AS comment_count
FROM post p
JOIN "user" u ON u.id = p.author_id
ORDER BY p.created_at DESC, p.id DESC
LIMIT ? OFFSET ?
`

type ListPostDetailsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListPostDetails(ctx context.Context, arg ListPostDetailsParams) ([]PostDetail, error) {
	rows, err := q.db.QueryContext(ctx, listPostDetails, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []PostDetail{}
	for rows.Next() {
		var i PostDetail
		if err := rows.Scan(
			&i.ID,
			&i.AuthorID,
			&i.Title,
			&i.Text,
			&i.CreatedAt,
			&i.AuthorFirstName,
			&i.AuthorLastName,
			&i.CommentCount,
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

const countPosts = `-- name: CountPosts :one
SELECT COUNT(*) FROM post
`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPosts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createComment = `-- name: CreateComment :one
INSERT INTO comment (commenter_id, post_id, text, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, commenter_id, post_id, text, created_at
`

type CreateCommentParams struct {
	CommenterID int64     `json:"commenter_id"`
	PostID      int64     `json:"post_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment,
		arg.CommenterID,
		arg.PostID,
		arg.Text,
		arg.CreatedAt,
	)
	var i Comment
	err := row.Scan(
		&i.ID,
		&i.CommenterID,
		&i.PostID,
		&i.Text,
		&i.CreatedAt,
	)
	return i, err
}

// CommentDetail is a comment with its author's name.
type CommentDetail struct {
	ID                 int64     `json:"id"`
	CommenterID        int64     `json:"commenter_id"`
	PostID             int64     `json:"post_id"`
	Text               string    `json:"text"`
	CreatedAt          time.Time `json:"created_at"`
	CommenterFirstName string    `json:"commenter_first_name"`
	CommenterLastName  string    `json:"commenter_last_name"`
}

const listCommentsByPost = `-- name: ListCommentsByPost :many
SELECT c.id, c.commenter_id, c.post_id, c.text, c.created_at, u.first_name, u.last_name
FROM comment c
JOIN "user" u ON u.id = c.commenter_id
WHERE c.post_id = ?
ORDER BY c.created_at, c.id
`

func (q *Queries) ListCommentsByPost(ctx context.Context, postID int64) ([]CommentDetail, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByPost, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []CommentDetail{}
	for rows.Next() {
		var i CommentDetail
		if err := rows.Scan(
			&i.ID,
			&i.CommenterID,
			&i.PostID,
			&i.Text,
			&i.CreatedAt,
			&i.CommenterFirstName,
			&i.CommenterLastName,
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
