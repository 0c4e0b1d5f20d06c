// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/paralympics-go/internal/render"
	"github.com/olegiv/paralympics-go/internal/session"
	"github.com/olegiv/paralympics-go/internal/store"
	"github.com/olegiv/paralympics-go/internal/testutil"
)

func TestGetUser(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user := GetUser(req); user != nil {
			t.Errorf("GetUser() = %v, want nil", user)
		}
		if id := GetUserID(req); id != 0 {
			t.Errorf("GetUserID() = %d, want 0", id)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), store.User{ID: 123, FirstName: "Ada", Email: "ada@example.com"}))

		user := GetUser(req)
		if user == nil {
			t.Fatal("GetUser() = nil, want user")
		}
		if user.Email != "ada@example.com" {
			t.Errorf("GetUser().Email = %q", user.Email)
		}
		if GetUserID(req) != 123 {
			t.Errorf("GetUserID() = %d, want 123", GetUserID(req))
		}

		cu := render.UserFromContext(req.Context())
		if cu == nil || cu.FirstName != "Ada" {
			t.Errorf("render user = %+v, want Ada", cu)
		}
	})
}

// withSession hits /put, which stores a user id in a fresh session, and
// returns the session cookie.
func withSession(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/put", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	return cookies[0]
}

func TestLoadUserAndRequireLogin(t *testing.T) {
	db := testutil.TestDB(t)
	sm := session.New(db, true)
	user := testutil.CreateUser(t, db, "Ada", "Lovelace", "ada@example.com", "secret-password")

	var seen *store.User
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
		w.WriteHeader(http.StatusOK)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionKeyUserID, user.ID)
	})
	mux.Handle("/private", LoadUser(sm, db)(RequireLogin(sm)(protected)))
	h := sm.LoadAndSave(mux)

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q, want /login", loc)
		}
	})

	t.Run("signed in user passes", func(t *testing.T) {
		cookie := withSession(t, h)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if seen == nil || seen.ID != user.ID {
			t.Errorf("user in context = %+v, want id %d", seen, user.ID)
		}
	})
}

func TestLoadUser_DeletedUser(t *testing.T) {
	db := testutil.TestDB(t)
	sm := session.New(db, true)

	var seen *store.User
	mux := http.NewServeMux()
	mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionKeyUserID, int64(9999))
	})
	mux.Handle("/page", LoadUser(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
	})))
	h := sm.LoadAndSave(mux)

	cookie := withSession(t, h)
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if seen != nil {
		t.Errorf("unknown user should not be loaded, got %+v", seen)
	}
}
