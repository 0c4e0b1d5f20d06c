// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/model"
	"github.com/olegiv/paralympics-go/internal/notify"
	"github.com/olegiv/paralympics-go/internal/pagination"
	"github.com/olegiv/paralympics-go/internal/render"
	"github.com/olegiv/paralympics-go/internal/store"
)

// PostsPerPage is the number of posts on one page of the blog.
const PostsPerPage = 10

// Blog form limits.
const (
	maxTitleLength = 200
	maxTextLength  = 10000
)

// PostHandler handles the blog.
type PostHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	notifier notify.Publisher
	events   eventLog
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(db *sql.DB, renderer *render.Renderer, notifier notify.Publisher) *PostHandler {
	q := store.New(db)
	return &PostHandler{
		queries:  q,
		renderer: renderer,
		notifier: notifier,
		events:   eventLog{queries: q},
	}
}

// PostsData is passed to the post list template.
type PostsData struct {
	Posts      []store.PostDetail
	Pagination pagination.Pagination
}

// PostData is passed to the single post template.
type PostData struct {
	Post     store.PostDetail
	Comments []store.CommentDetail
}

// List shows the posts newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, nil, nil)
}

func (h *PostHandler) renderList(w http.ResponseWriter, r *http.Request, status int, errs, values map[string]string) {
	total, err := h.queries.CountPosts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count posts", "error", err)
		return
	}

	p := pagination.Build(pagination.ParsePage(r), total, PostsPerPage, RoutePosts)
	posts, err := h.queries.ListPostDetails(r.Context(), store.ListPostDetailsParams{
		Limit:  PostsPerPage,
		Offset: p.Offset(),
	})
	if err != nil {
		logAndInternalError(w, "failed to list posts", "error", err)
		return
	}

	renderPage(w, r, h.renderer, status, "posts", render.TemplateData{
		Title:      "Blog",
		Data:       PostsData{Posts: posts, Pagination: p},
		Errors:     errs,
		FormValues: values,
	})
}

// Create adds a post by the signed-in user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectPosts) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	text := strings.TrimSpace(r.FormValue("text"))

	errs := make(map[string]string)
	if title == "" {
		errs["title"] = "Title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("Title must be at most %d characters", maxTitleLength)
	}
	if text == "" {
		errs["text"] = "Text is required"
	} else if len(text) > maxTextLength {
		errs["text"] = fmt.Sprintf("Text must be at most %d characters", maxTextLength)
	}
	if len(errs) > 0 {
		h.renderList(w, r, http.StatusUnprocessableEntity, errs, map[string]string{
			"title": title,
			"text":  text,
		})
		return
	}

	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		AuthorID:  user.ID,
		Title:     title,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logAndInternalError(w, "failed to create post", "user_id", user.ID, "error", err)
		return
	}

	slog.Info("post created", "post_id", post.ID, "author_id", user.ID)
	h.events.record(r, model.EventLevelInfo, model.EventCategoryBlog, "Post created", &user.ID,
		map[string]any{"post_id": post.ID, "title": post.Title})
	notify.Emit(r.Context(), h.notifier, notify.EventPostCreated, notify.PostEventData{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Title:    post.Title,
	})

	flashSuccess(w, r, h.renderer, postURL(post.ID), "Post published.")
}

// Show displays a post with its comments, oldest first.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	h.renderPost(w, r, http.StatusOK, post, nil, nil)
}

func (h *PostHandler) renderPost(w http.ResponseWriter, r *http.Request, status int, post store.PostDetail, errs, values map[string]string) {
	comments, err := h.queries.ListCommentsByPost(r.Context(), post.ID)
	if err != nil {
		logAndInternalError(w, "failed to list comments", "post_id", post.ID, "error", err)
		return
	}

	renderPage(w, r, h.renderer, status, "post", render.TemplateData{
		Title:      post.Title,
		Data:       PostData{Post: post, Comments: comments},
		Errors:     errs,
		FormValues: values,
	})
}

// Comment adds a comment by the signed-in user to a post.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, postURL(post.ID)) {
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" || len(text) > maxTextLength {
		msg := "Comment is required"
		if text != "" {
			msg = fmt.Sprintf("Comment must be at most %d characters", maxTextLength)
		}
		h.renderPost(w, r, http.StatusUnprocessableEntity, post,
			map[string]string{"text": msg}, map[string]string{"text": text})
		return
	}

	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		CommenterID: user.ID,
		PostID:      post.ID,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		logAndInternalError(w, "failed to create comment", "post_id", post.ID, "error", err)
		return
	}

	slog.Info("comment created", "comment_id", comment.ID, "post_id", post.ID, "commenter_id", user.ID)
	h.events.record(r, model.EventLevelInfo, model.EventCategoryBlog, "Comment created", &user.ID,
		map[string]any{"comment_id": comment.ID, "post_id": post.ID})
	notify.Emit(r.Context(), h.notifier, notify.EventCommentCreated, notify.CommentEventData{
		ID:          comment.ID,
		PostID:      comment.PostID,
		CommenterID: comment.CommenterID,
	})

	flashSuccess(w, r, h.renderer, postURL(post.ID), "Comment added.")
}

// loadPost fetches the post named by the {id} URL parameter, answering 404
// when there is none.
func (h *PostHandler) loadPost(w http.ResponseWriter, r *http.Request) (store.PostDetail, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return store.PostDetail{}, false
	}

	post, err := h.queries.GetPostDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return store.PostDetail{}, false
		}
		logAndInternalError(w, "failed to get post", "post_id", id, "error", err)
		return store.PostDetail{}, false
	}
	return post, true
}

func postURL(id int64) string {
	return RoutePosts + "/" + strconv.FormatInt(id, 10)
}
