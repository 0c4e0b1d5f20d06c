// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package app wires the database, session store, renderer, cache and
// background jobs together and builds the HTTP handler.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/paralympics-go/internal/cache"
	"github.com/olegiv/paralympics-go/internal/config"
	"github.com/olegiv/paralympics-go/internal/dashboard"
	"github.com/olegiv/paralympics-go/internal/geoip"
	"github.com/olegiv/paralympics-go/internal/imaging"
	"github.com/olegiv/paralympics-go/internal/logging"
	"github.com/olegiv/paralympics-go/internal/middleware"
	"github.com/olegiv/paralympics-go/internal/notify"
	"github.com/olegiv/paralympics-go/internal/render"
	"github.com/olegiv/paralympics-go/internal/scheduler"
	"github.com/olegiv/paralympics-go/internal/seed"
	"github.com/olegiv/paralympics-go/internal/session"
	"github.com/olegiv/paralympics-go/internal/store"
	"github.com/olegiv/paralympics-go/web"
)

// GeoIPReloadSchedule picks up a replaced GeoLite2 file once a day.
const GeoIPReloadSchedule = "30 3 * * *"

// App holds every long-lived collaborator. Close releases them.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Sessions *scs.SessionManager
	Cache    cache.Cacher
	Notifier notify.Publisher
	GeoIP    *geoip.Lookup
	Handler  http.Handler

	loginProtection *middleware.LoginProtection
	scheduler       *scheduler.Scheduler
}

// New opens and migrates the database, seeds the reference tables, and builds
// the router. The default slog logger is replaced by one that also writes
// warnings to the event log.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	a.DB, err = store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := store.Migrate(a.DB); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), a.DB))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	if err := seed.Run(ctx, a.DB, cfg.DataDir, cfg.SeedMode); err != nil {
		return nil, fmt.Errorf("seeding reference data: %w", err)
	}

	data, err := dashboard.LoadDataset(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading dashboard data: %w", err)
	}

	cacheResult, err := cache.NewCacheWithInfo(cache.CacheConfig{
		Type:             cfg.CacheBackend(),
		RedisURL:         cfg.RedisURL,
		MemcachedAddr:    cfg.MemcachedAddr,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing cache: %w", err)
	}
	a.Cache = cacheResult.Cache
	if cacheResult.IsFallback {
		slog.Warn("dashboard cache initialized", "category", "cache", "backend", cacheResult.BackendType, "fallback", true)
	} else {
		slog.Info("dashboard cache initialized", "backend", cacheResult.BackendType)
	}

	a.Notifier = newNotifier(cfg, logger)

	a.GeoIP, err = geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip lookups disabled", "category", "config", "error", err)
		a.GeoIP = nil
		err = nil
	} else if a.GeoIP.Enabled() {
		slog.Info("geoip database loaded", "path", cfg.GeoIPDBPath)
	}

	a.Sessions = session.New(a.DB, cfg.IsDevelopment())

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: a.Sessions,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}

	a.loginProtection = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	a.scheduler = scheduler.New(a.DB, logger, cfg.EventRetentionDays)
	if a.GeoIP.Enabled() {
		if err := a.scheduler.AddJob("geoip reload", GeoIPReloadSchedule, a.GeoIP.Reload); err != nil {
			return nil, fmt.Errorf("scheduling geoip reload: %w", err)
		}
	}
	if err := a.scheduler.Start(); err != nil {
		return nil, fmt.Errorf("starting scheduler: %w", err)
	}

	a.Handler = NewRouter(Deps{
		Config:          cfg,
		DB:              a.DB,
		Sessions:        a.Sessions,
		Renderer:        renderer,
		Dashboard:       dashboard.NewService(data, a.Cache, time.Duration(cfg.CacheTTL)*time.Second),
		Photos:          imaging.NewProcessor(cfg.UploadsDir, cfg.MaxUploadBytes()),
		Notifier:        a.Notifier,
		LoginProtection: a.loginProtection,
		GeoIP:           a.GeoIP,
		StaticFS:        web.StaticFS(),
	})
	return a, nil
}

// Close stops background work and closes connections in reverse order of
// creation. It is safe to call on a partially built App.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.loginProtection != nil {
		a.loginProtection.Close()
	}
	if a.Notifier != nil {
		a.Notifier.Close()
	}
	if err := a.GeoIP.Close(); err != nil {
		slog.Error("error closing geoip database", "error", err)
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			slog.Error("error closing database connection", "error", err)
		}
	}
}

// newNotifier fans events out to NATS and the webhook, whichever are
// configured. A broker that cannot be reached is skipped.
func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Publisher {
	var pubs notify.Multi

	if cfg.NATSURL != "" {
		p, err := notify.New(cfg.NATSURL, logger)
		if err != nil {
			slog.Warn("nats publishing disabled", "category", "config", "error", err)
		} else {
			pubs = append(pubs, p)
		}
	}
	if cfg.WebhookURL != "" {
		pubs = append(pubs, notify.NewWebhookPublisher(notify.WebhookConfig{
			URL:    cfg.WebhookURL,
			Secret: cfg.WebhookSecret,
		}, logger))
	}

	switch len(pubs) {
	case 0:
		return notify.Nop{}
	case 1:
		return pubs[0]
	default:
		return pubs
	}
}
