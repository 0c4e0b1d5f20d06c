// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/paralympics-go/internal/imaging"
	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/model"
	"github.com/olegiv/paralympics-go/internal/notify"
	"github.com/olegiv/paralympics-go/internal/render"
	"github.com/olegiv/paralympics-go/internal/store"
	"github.com/olegiv/paralympics-go/internal/util"
)

// Profile form messages.
const (
	msgUsernameRequired = "Username is required"
	msgUsernameTaken    = "Username already exists, please choose another username"
	msgInvalidRegion    = "Select a valid region"
	msgImagesOnly       = "Images only!"
	msgSearchEmpty      = "Enter a name to search for"
	msgUsernameNotFound = "Username not found."
)

// multipartOverhead is allowed on top of the photo limit for the other fields.
const multipartOverhead = 1 << 20

// ProfileHandler handles profile creation, editing and search.
type ProfileHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	photos   *imaging.Processor
	notifier notify.Publisher
	events   eventLog
	maxBytes int64
}

// NewProfileHandler creates a new ProfileHandler. Photos larger than maxBytes
// are rejected.
func NewProfileHandler(db *sql.DB, renderer *render.Renderer, photos *imaging.Processor, maxBytes int64, notifier notify.Publisher) *ProfileHandler {
	q := store.New(db)
	return &ProfileHandler{
		queries:  q,
		renderer: renderer,
		photos:   photos,
		notifier: notifier,
		events:   eventLog{queries: q},
		maxBytes: maxBytes,
	}
}

// ProfileFormData is passed to the profile form template.
type ProfileFormData struct {
	Heading string
	Action  string
	Regions []store.Region
	Photo   string
}

// ProfilesData is passed to the profile listing template.
type ProfilesData struct {
	Profiles   []store.ProfileDetail
	SearchTerm string
}

// Profile sends the user to the edit form when they have a profile, and to
// the create form otherwise.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	_, err := h.queries.GetProfileByUserID(r.Context(), user.ID)
	switch {
	case err == nil:
		http.Redirect(w, r, redirectUpdateProfile, http.StatusSeeOther)
	case errors.Is(err, sql.ErrNoRows):
		http.Redirect(w, r, redirectCreateProfile, http.StatusSeeOther)
	default:
		logAndInternalError(w, "failed to get profile", "user_id", user.ID, "error", err)
	}
}

// CreateProfileForm renders an empty profile form.
func (h *ProfileHandler) CreateProfileForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if _, err := h.queries.GetProfileByUserID(r.Context(), user.ID); err == nil {
		http.Redirect(w, r, redirectUpdateProfile, http.StatusSeeOther)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to get profile", "user_id", user.ID, "error", err)
		return
	}

	h.renderForm(w, r, http.StatusOK, createFormData(), nil, nil)
}

// CreateProfile handles the create form submission.
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if _, err := h.queries.GetProfileByUserID(r.Context(), user.ID); err == nil {
		http.Redirect(w, r, redirectUpdateProfile, http.StatusSeeOther)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to get profile", "user_id", user.ID, "error", err)
		return
	}

	in, errs, ok := h.parseForm(w, r, redirectCreateProfile, "")
	if !ok {
		return
	}
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, createFormData(), errs, in.formValues())
		return
	}

	photo, errs := h.savePhoto(r)
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, createFormData(), errs, in.formValues())
		return
	}

	now := time.Now().UTC()
	profile, err := h.queries.CreateProfile(r.Context(), store.CreateProfileParams{
		Username:  in.Username,
		Photo:     util.NullStringFromValue(photo),
		Bio:       util.NullStringFromValue(in.Bio),
		RegionID:  in.RegionID,
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		h.discardPhoto(photo)
		if store.IsUniqueViolation(err) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, createFormData(),
				map[string]string{"username": msgUsernameTaken}, in.formValues())
			return
		}
		logAndInternalError(w, "failed to create profile", "user_id", user.ID, "error", err)
		return
	}

	slog.Info("profile created", "profile_id", profile.ID, "user_id", user.ID, "username", profile.Username)
	h.events.record(r, model.EventLevelInfo, model.EventCategoryProfile, "Profile created", &user.ID,
		map[string]any{"profile_id": profile.ID, "username": profile.Username})
	notify.Emit(r.Context(), h.notifier, notify.EventProfileCreated, profileEvent(profile))

	http.Redirect(w, r, profileURL(profile.Username), http.StatusSeeOther)
}

// UpdateProfileForm renders the form filled in from the user's profile.
func (h *ProfileHandler) UpdateProfileForm(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.currentProfile(w, r)
	if !ok {
		return
	}

	in := profileInput{
		Username: profile.Username,
		Bio:      profile.Bio.String,
		RegionID: profile.RegionID,
	}
	h.renderForm(w, r, http.StatusOK, updateFormData(profile), nil, in.formValues())
}

// UpdateProfile handles the edit form submission. The photo is replaced only
// when a new one is uploaded.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.currentProfile(w, r)
	if !ok {
		return
	}

	in, errs, ok := h.parseForm(w, r, redirectUpdateProfile, profile.Username)
	if !ok {
		return
	}
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, updateFormData(profile), errs, in.formValues())
		return
	}

	newPhoto, errs := h.savePhoto(r)
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, updateFormData(profile), errs, in.formValues())
		return
	}

	photo := profile.Photo
	if newPhoto != "" {
		photo = util.NullStringFromValue(newPhoto)
	}

	updated, err := h.queries.UpdateProfile(r.Context(), store.UpdateProfileParams{
		Username:  in.Username,
		Photo:     photo,
		Bio:       util.NullStringFromValue(in.Bio),
		RegionID:  in.RegionID,
		UpdatedAt: time.Now().UTC(),
		ID:        profile.ID,
	})
	if err != nil {
		h.discardPhoto(newPhoto)
		if store.IsUniqueViolation(err) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, updateFormData(profile),
				map[string]string{"username": msgUsernameTaken}, in.formValues())
			return
		}
		logAndInternalError(w, "failed to update profile", "profile_id", profile.ID, "error", err)
		return
	}

	if newPhoto != "" && profile.Photo.Valid {
		h.discardPhoto(profile.Photo.String)
	}

	slog.Info("profile updated", "profile_id", updated.ID, "user_id", updated.UserID, "username", updated.Username)
	h.events.record(r, model.EventLevelInfo, model.EventCategoryProfile, "Profile updated", &updated.UserID,
		map[string]any{"profile_id": updated.ID, "username": updated.Username})
	notify.Emit(r.Context(), h.notifier, notify.EventProfileUpdated, profileEvent(updated))

	http.Redirect(w, r, profileURL(updated.Username), http.StatusSeeOther)
}

// DisplayProfiles handles the search form. Every profile whose username
// contains the term is listed; matching is case-sensitive.
func (h *ProfileHandler) DisplayProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		flashError(w, r, h.renderer, redirectHome, msgUsernameNotFound)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectHome) {
		return
	}

	term := util.NormalizeUsername(r.FormValue("search_term"))
	if term == "" {
		flashError(w, r, h.renderer, redirectHome, msgSearchEmpty)
		return
	}

	profiles, err := h.queries.SearchProfiles(r.Context(), term)
	if err != nil {
		logAndInternalError(w, "failed to search profiles", "term", term, "error", err)
		return
	}
	h.renderProfiles(w, r, profiles, term)
}

// ProfileByName shows the profile with exactly the given username.
func (h *ProfileHandler) ProfileByName(w http.ResponseWriter, r *http.Request) {
	username := util.NormalizeUsername(chi.URLParam(r, "username"))

	profiles, err := h.queries.GetProfileDetailByUsername(r.Context(), username)
	if err != nil {
		logAndInternalError(w, "failed to get profile", "username", username, "error", err)
		return
	}
	h.renderProfiles(w, r, profiles, "")
}

func (h *ProfileHandler) renderProfiles(w http.ResponseWriter, r *http.Request, profiles []store.ProfileDetail, term string) {
	if len(profiles) == 0 {
		flashError(w, r, h.renderer, redirectHome, msgUsernameNotFound)
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "profiles", render.TemplateData{
		Title: "Profiles",
		Data:  ProfilesData{Profiles: profiles, SearchTerm: term},
	})
}

// currentProfile loads the signed-in user's profile, redirecting to the create
// form when there is none.
func (h *ProfileHandler) currentProfile(w http.ResponseWriter, r *http.Request) (store.Profile, bool) {
	user := middleware.GetUser(r)

	profile, err := h.queries.GetProfileByUserID(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Redirect(w, r, redirectCreateProfile, http.StatusSeeOther)
			return store.Profile{}, false
		}
		logAndInternalError(w, "failed to get profile", "user_id", user.ID, "error", err)
		return store.Profile{}, false
	}
	return profile, true
}

// profileInput is the submitted profile form, photo excepted.
type profileInput struct {
	Username  string
	Bio       string
	RegionID  sql.NullInt64
	RegionRaw string
}

func (in profileInput) formValues() map[string]string {
	region := in.RegionRaw
	if region == "" && in.RegionID.Valid {
		region = strconv.FormatInt(in.RegionID.Int64, 10)
	}
	return map[string]string{
		"username": in.Username,
		"bio":      in.Bio,
		"region":   region,
	}
}

// parseForm reads and validates the text fields. currentUsername is the
// username being edited, and is exempt from the uniqueness check. It reports
// false when a response has already been written.
func (h *ProfileHandler) parseForm(w http.ResponseWriter, r *http.Request, redirectURL, currentUsername string) (profileInput, map[string]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			flashError(w, r, h.renderer, redirectURL, h.tooLargeMessage())
			return profileInput{}, nil, false
		}
		flashError(w, r, h.renderer, redirectURL, "Invalid form data")
		return profileInput{}, nil, false
	}

	in := profileInput{
		Username:  util.NormalizeUsername(r.FormValue("username")),
		Bio:       strings.TrimSpace(r.FormValue("bio")),
		RegionRaw: strings.TrimSpace(r.FormValue("region")),
	}
	errs := make(map[string]string)

	if in.Username == "" {
		errs["username"] = msgUsernameRequired
	} else if in.Username != currentUsername {
		n, err := h.queries.CountProfilesByUsername(r.Context(), in.Username)
		if err != nil {
			logAndInternalError(w, "failed to check username", "error", err)
			return profileInput{}, nil, false
		}
		if n > 0 {
			errs["username"] = msgUsernameTaken
		}
	}

	if in.RegionRaw != "" {
		in.RegionID = util.ParseNullInt64Positive(in.RegionRaw)
		if !in.RegionID.Valid {
			errs["region"] = msgInvalidRegion
		} else if _, err := h.queries.GetRegion(r.Context(), in.RegionID.Int64); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				logAndInternalError(w, "failed to check region", "error", err)
				return profileInput{}, nil, false
			}
			errs["region"] = msgInvalidRegion
			in.RegionID = sql.NullInt64{}
		}
	}

	return in, errs, true
}

// savePhoto stores the uploaded photo, if any, and returns its file name.
func (h *ProfileHandler) savePhoto(r *http.Request) (string, map[string]string) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			slog.Warn("failed to read photo upload", "error", err)
		}
		return "", nil
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" || header.Size == 0 {
		return "", nil
	}

	name, err := h.photos.SavePhoto(file, header.Filename)
	switch {
	case err == nil:
		slog.Info("photo stored", "file", name, "size", header.Size)
		return name, nil
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "", map[string]string{"photo": msgImagesOnly}
	case errors.Is(err, imaging.ErrTooLarge):
		return "", map[string]string{"photo": h.tooLargeMessage()}
	default:
		slog.Error("failed to store photo", "error", err)
		return "", map[string]string{"photo": "The photo could not be saved"}
	}
}

func (h *ProfileHandler) discardPhoto(name string) {
	if err := h.photos.Delete(name); err != nil {
		slog.Warn("failed to remove photo", "file", name, "error", err)
	}
}

func (h *ProfileHandler) tooLargeMessage() string {
	return fmt.Sprintf("Images must be smaller than %d MB", h.maxBytes>>20)
}

func (h *ProfileHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data ProfileFormData, errs, values map[string]string) {
	regions, err := h.queries.ListRegionsByName(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list regions", "error", err)
		return
	}
	data.Regions = regions

	renderPage(w, r, h.renderer, status, "profile_form", render.TemplateData{
		Title:      data.Heading,
		Data:       data,
		Errors:     errs,
		FormValues: values,
	})
}

func createFormData() ProfileFormData {
	return ProfileFormData{Heading: "Create Profile", Action: RouteCreateProfile}
}

func updateFormData(p store.Profile) ProfileFormData {
	return ProfileFormData{Heading: "Update Profile", Action: RouteUpdateProfile, Photo: p.Photo.String}
}

func profileURL(username string) string {
	return RouteDisplayProfiles + "/" + url.PathEscape(username)
}

func profileEvent(p store.Profile) notify.ProfileEventData {
	return notify.ProfileEventData{
		ID:       p.ID,
		UserID:   p.UserID,
		Username: p.Username,
		RegionID: util.Int64Ptr(p.RegionID),
	}
}
