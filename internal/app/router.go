// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package app

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/paralympics-go/internal/config"
	"github.com/olegiv/paralympics-go/internal/dashboard"
	"github.com/olegiv/paralympics-go/internal/geoip"
	"github.com/olegiv/paralympics-go/internal/handler"
	"github.com/olegiv/paralympics-go/internal/imaging"
	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/notify"
	"github.com/olegiv/paralympics-go/internal/render"
)

// RequestTimeout bounds every request.
const RequestTimeout = 30 * time.Second

// Deps are the collaborators the router hands to the handlers.
type Deps struct {
	Config          *config.Config
	DB              *sql.DB
	Sessions        *scs.SessionManager
	Renderer        *render.Renderer
	Dashboard       *dashboard.Service
	Photos          *imaging.Processor
	Notifier        notify.Publisher
	LoginProtection *middleware.LoginProtection
	GeoIP           *geoip.Lookup // optional
	StaticFS        fs.FS
}

// NewRouter builds the middleware stack and registers every route.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	isDev := cfg.IsDevelopment()

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if !cfg.IsTesting() {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(RequestTimeout))
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev)))
	r.Use(d.Sessions.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey(), isDev, cfg.ServerPort)))
	r.Use(middleware.LoadUser(d.Sessions, d.DB))
	r.Use(middleware.GeoCountry(d.GeoIP))

	home := handler.NewHomeHandler(d.Renderer, cfg.LogosDir)
	auth := handler.NewAuthHandler(d.DB, d.Renderer, d.Sessions, d.LoginProtection, d.Notifier)
	profiles := handler.NewProfileHandler(d.DB, d.Renderer, d.Photos, cfg.MaxUploadBytes(), d.Notifier)
	posts := handler.NewPostHandler(d.DB, d.Renderer, d.Notifier)
	dash := handler.NewDashboardHandler(d.Dashboard, d.Renderer)
	cookies := handler.NewCookieHandler(d.Renderer, cfg.SecureCookies)
	countries := handler.NewCountryHandler(d.DB)
	health := handler.NewHealthHandler(d.DB, cfg.UploadsDir)

	r.Get(handler.RouteRoot, home.Home)
	r.Get(handler.RouteHealth, health.Health)

	// Auth
	r.Get(handler.RouteSignup, auth.SignupForm)
	r.Get(handler.RouteLogin, auth.LoginForm)
	r.Group(func(r chi.Router) {
		if d.LoginProtection != nil {
			r.Use(d.LoginProtection.Middleware())
		}
		r.Post(handler.RouteSignup, auth.Signup)
		r.Post(handler.RouteLogin, auth.Login)
	})
	r.Get(handler.RouteLogout, auth.Logout)
	r.Post(handler.RouteLogout, auth.Logout)

	// Signed-in users only
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(d.Sessions))

		r.Get(handler.RouteProfile, profiles.Profile)
		r.Get(handler.RouteCreateProfile, profiles.CreateProfileForm)
		r.Post(handler.RouteCreateProfile, profiles.CreateProfile)
		r.Get(handler.RouteUpdateProfile, profiles.UpdateProfileForm)
		r.Post(handler.RouteUpdateProfile, profiles.UpdateProfile)
		r.Get(handler.RouteDisplayProfiles, profiles.DisplayProfiles)
		r.Post(handler.RouteDisplayProfiles, profiles.DisplayProfiles)
		r.Get(handler.RouteProfileByName, profiles.ProfileByName)

		r.Post(handler.RoutePosts, posts.Create)
		r.Post(handler.RoutePostComments, posts.Comment)
	})

	// Blog
	r.Get(handler.RoutePosts, posts.List)
	r.Get(handler.RoutePostsID, posts.Show)

	// Reference data
	r.Get(handler.RouteCountries, countries.List)

	// Cookie demo
	r.Get(handler.RouteCookie, cookies.Cookie)
	r.Get(handler.RouteDeleteCookie, cookies.DeleteCookie)
	r.Get(handler.RouteArticle, cookies.ArticleForm)
	r.Post(handler.RouteArticle, cookies.Article)

	// Dashboard
	r.Get(handler.RouteDashboard, dash.Page)
	r.Post(handler.RouteCallbackLineChart, dash.LineChart)
	r.Post(handler.RouteCallbackRatioCharts, dash.RatioCharts)
	r.Post(handler.RouteCallbackHighlight, dash.Highlight)
	r.Get(handler.RouteFigureGender, dash.GenderFigure)
	r.Get(handler.RouteFigureMap, dash.MapFigure)
	r.Get(handler.RouteDataTopTenGold, dash.TopTenGold)
	r.Get(handler.RouteDataMedals, dash.Medals)

	// Files
	if d.StaticFS != nil {
		r.Handle("/static/*", fileServer("/static/", http.FS(d.StaticFS)))
	}
	r.Handle(render.PhotoURLPrefix+"*", fileServer(render.PhotoURLPrefix, http.Dir(d.Photos.Dir())))
	r.Handle(handler.LogoURLPrefix+"*", fileServer(handler.LogoURLPrefix, http.Dir(cfg.LogosDir)))

	slog.Info("router initialized",
		"csrf_trusted_dev_origins", isDev,
		"login_protection", d.LoginProtection != nil,
		"geoip", d.GeoIP.Enabled(),
	)
	return r
}

// fileServer serves files under prefix from root without directory listings.
func fileServer(prefix string, root http.FileSystem) http.Handler {
	fsrv := http.StripPrefix(prefix, http.FileServer(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fsrv.ServeHTTP(w, r)
	})
}
