// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/olegiv/paralympics-go/internal/render"
)

// Cookie demo settings.
const (
	demoCookieName   = "foo"
	demoCookieValue  = "bar"
	demoCookieMaxAge = 2 * 365 * 24 * time.Hour

	fontCookieName   = "font"
	fontCookieMaxAge = 15 * 24 * time.Hour
)

// ArticleFonts are the fonts offered on the article page.
var ArticleFonts = []string{"arial", "consolas", "courier", "georgia", "verdana"}

// CookieHandler serves the cookie demo pages.
type CookieHandler struct {
	renderer *render.Renderer
	secure   bool
}

// NewCookieHandler creates a new CookieHandler. secure marks the cookies it
// sets as HTTPS-only.
func NewCookieHandler(renderer *render.Renderer, secure bool) *CookieHandler {
	return &CookieHandler{renderer: renderer, secure: secure}
}

// ArticleData is passed to the article template.
type ArticleData struct {
	Font  string
	Fonts []string
}

// Cookie sets the demo cookie, or reports its value when already set.
func (h *CookieHandler) Cookie(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if c, err := r.Cookie(demoCookieName); err == nil && c.Value != "" {
		_, _ = fmt.Fprintf(w, "Value of cookie %s is %s", demoCookieName, c.Value)
		return
	}

	http.SetCookie(w, h.cookie(demoCookieName, demoCookieValue, demoCookieMaxAge))
	_, _ = fmt.Fprint(w, "Setting a cookie")
}

// DeleteCookie expires the demo cookie.
func (h *CookieHandler) DeleteCookie(w http.ResponseWriter, r *http.Request) {
	c := h.cookie(demoCookieName, "", 0)
	c.MaxAge = -1
	http.SetCookie(w, c)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, "Cookie Removed")
}

// ArticleForm renders the article in the font chosen earlier, if any.
func (h *CookieHandler) ArticleForm(w http.ResponseWriter, r *http.Request) {
	data := ArticleData{Fonts: ArticleFonts}
	if c, err := r.Cookie(fontCookieName); err == nil && slices.Contains(ArticleFonts, c.Value) {
		data.Font = c.Value
	}
	renderPage(w, r, h.renderer, http.StatusOK, "article", render.TemplateData{
		Title: "Article",
		Data:  data,
	})
}

// Article stores the chosen font and redirects back to the article.
func (h *CookieHandler) Article(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	font := r.FormValue("font")
	if slices.Contains(ArticleFonts, font) {
		http.SetCookie(w, h.cookie(fontCookieName, font, fontCookieMaxAge))
	}
	http.Redirect(w, r, RouteArticle, http.StatusFound)
}

func (h *CookieHandler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
