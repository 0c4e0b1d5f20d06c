// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/model"
	"github.com/olegiv/paralympics-go/internal/render"
)

// LogoURLPrefix is where logo images are served.
const LogoURLPrefix = "/logos/"

// HomeHandler serves the home page.
type HomeHandler struct {
	renderer *render.Renderer
	logos    fs.FS
}

// NewHomeHandler lists logos from logosDir. A missing dir is reported here
// once rather than on every request.
func NewHomeHandler(renderer *render.Renderer, logosDir string) *HomeHandler {
	if _, err := os.Stat(logosDir); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("logos directory not found", "path", logosDir)
	}
	return &HomeHandler{renderer: renderer, logos: os.DirFS(logosDir)}
}

// HomeData is passed to the index template.
type HomeData struct {
	Logos   []model.Logo
	LogoURL string
}

// Home lists the Games logos ordered by year.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{
		Title: "Paralympics",
		Data: HomeData{
			Logos:   h.listLogos(),
			LogoURL: LogoURLPrefix,
		},
	}
	// A pending session flash, such as the login message, takes precedence.
	if user := middleware.GetUser(r); user != nil {
		data.Flash = "Hello " + user.FirstName + "."
		data.FlashType = flashTypeInfo
	}
	renderPage(w, r, h.renderer, http.StatusOK, "index", data)
}

// listLogos returns the well-named image files in the logos dir. A missing
// dir yields an empty list.
func (h *HomeHandler) listLogos() []model.Logo {
	entries, err := fs.ReadDir(h.logos, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("logos directory not found")
		} else {
			slog.Error("failed to read logos directory", "error", err)
		}
		return nil
	}

	logos := make([]model.Logo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if logo, ok := model.ParseLogo(e.Name()); ok {
			logos = append(logos, logo)
		}
	}
	model.SortLogos(logos)
	return logos
}
