// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/paralympics-go/internal/auth"
	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/model"
	"github.com/olegiv/paralympics-go/internal/notify"
	"github.com/olegiv/paralympics-go/internal/render"
	"github.com/olegiv/paralympics-go/internal/store"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

// AuthHandler handles sign-up, login and logout.
type AuthHandler struct {
	db              *sql.DB
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	notifier        notify.Publisher
	events          eventLog
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, notifier notify.Publisher) *AuthHandler {
	q := store.New(db)
	return &AuthHandler{
		db:              db,
		queries:         q,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
		notifier:        notifier,
		events:          eventLog{queries: q},
	}
}

// SignupForm renders the sign-up page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusOK, "signup", render.TemplateData{Title: "Sign Up"})
}

// signupInput is the submitted sign-up form.
type signupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
}

func (in signupInput) validate() map[string]string {
	errs := make(map[string]string)
	if in.FirstName == "" {
		errs["first_name"] = "First name is required"
	}
	if in.LastName == "" {
		errs["last_name"] = "Last name is required"
	}
	if in.Email == "" {
		errs["email"] = "Email is required"
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		errs["email"] = "Invalid email address"
	}
	if in.Password == "" {
		errs["password"] = "Password is required"
	} else if len(in.Password) < MinPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	if in.PasswordConfirm != in.Password {
		errs["password_confirm"] = "Passwords must match"
	}
	return errs
}

// Signup handles the sign-up form submission. Email uniqueness is left to the
// database constraint.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectSignup) {
		return
	}

	in := signupInput{
		FirstName:       strings.TrimSpace(r.FormValue("first_name")),
		LastName:        strings.TrimSpace(r.FormValue("last_name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}

	if errs := in.validate(); len(errs) > 0 {
		renderPage(w, r, h.renderer, http.StatusUnprocessableEntity, "signup", render.TemplateData{
			Title:  "Sign Up",
			Errors: errs,
			FormValues: map[string]string{
				"first_name": in.FirstName,
				"last_name":  in.LastName,
				"email":      in.Email,
			},
		})
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	user, err := h.createUser(r, store.CreateUserParams{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			slog.Info("sign-up rejected, email already registered", "email", in.Email)
			flashError(w, r, h.renderer, redirectSignup, fmt.Sprintf("Error, unable to register %s.", in.Email))
			return
		}
		logAndInternalError(w, "failed to create user", "error", err)
		return
	}

	slog.Info("user signed up", "user_id", user.ID, "email", user.Email)
	h.events.record(r, model.EventLevelInfo, model.EventCategoryAuth, "User signed up", &user.ID, map[string]any{"email": user.Email})
	notify.Emit(r.Context(), h.notifier, notify.EventUserSignedUp, notify.UserEventData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.FirstName + " " + user.LastName,
	})

	flashSuccess(w, r, h.renderer, redirectHome,
		fmt.Sprintf("Hello, %s %s. You are signed up.", user.FirstName, user.LastName))
}

// createUser inserts the user in its own transaction, which is rolled back on
// any failure.
func (h *AuthHandler) createUser(r *http.Request, arg store.CreateUserParams) (store.User, error) {
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		return store.User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	user, err := h.queries.WithTx(tx).CreateUser(r.Context(), arg)
	if err != nil {
		return store.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.User{}, fmt.Errorf("committing user: %w", err)
	}
	return user, nil
}

// LoginForm renders the login page. Signed-in users go straight home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "login", render.TemplateData{Title: "Login"})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.events.record(r, model.EventLevelWarning, model.EventCategoryAuth, "Login attempt on locked account", nil, map[string]any{"email": email})
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Account is temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logAndInternalError(w, "database error during login", "error", err)
			return
		}
		slog.Debug("login attempt for unknown email", "email", email)
		h.events.record(r, model.EventLevelWarning, model.EventCategoryAuth, "Login failed: user not found", nil, map[string]any{"email": email})
		h.loginFailed(w, r, email, nil)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "user_id", user.ID, "error", err)
	}
	if !valid {
		h.events.record(r, model.EventLevelWarning, model.EventCategoryAuth, "Login failed: invalid password", &user.ID, map[string]any{"email": email})
		h.loginFailed(w, r, email, &user.ID)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "user_id", user.ID, "error", err)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	// New token on privilege change prevents session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	h.events.record(r, model.EventLevelInfo, model.EventCategoryAuth, "User logged in", &user.ID, map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, redirectHome, fmt.Sprintf("You are logged in as %s.", user.Email))
}

// loginFailed counts a failure against email and redirects back to the form
// with the most useful message. Unknown emails are counted too, so responses
// do not reveal which accounts exist.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, email string, userID *int64) {
	if h.loginProtection != nil {
		if locked, d := h.loginProtection.RecordFailedAttempt(email); locked {
			h.events.record(r, model.EventLevelWarning, model.EventCategoryAuth, "Account locked due to failed attempts", userID,
				map[string]any{"email": email, "duration": d.String()})
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(d)))
			return
		}
		if remaining := h.loginProtection.GetRemainingAttempts(email); remaining > 0 && remaining <= 3 {
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining))
			return
		}
	}
	flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)
	if userID > 0 {
		h.events.record(r, model.EventLevelInfo, model.EventCategoryAuth, "User logged out", &userID, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	slog.Info("user logged out", "user_id", userID)

	// Destroy clears the flash too, so the message lives in a fresh session.
	flashAndRedirect(w, r, h.renderer, redirectHome, "You have been logged out.", flashTypeInfo)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
