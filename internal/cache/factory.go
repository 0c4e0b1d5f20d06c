// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend names.
const (
	CacheBackendMemory    = "memory"
	CacheBackendRedis     = "redis"
	CacheBackendMemcached = "memcached"
)

// CacheConfig holds configuration for cache creation.
type CacheConfig struct {
	Type             string // memory, redis or memcached
	RedisURL         string
	MemcachedAddr    string
	Prefix           string
	DefaultTTL       time.Duration
	MaxSize          int // memory only, 0 = unlimited
	CleanupInterval  time.Duration
	FallbackToMemory bool
}

// Result describes the cache that was actually created.
type Result struct {
	Cache       Cacher
	BackendType string
	IsFallback  bool
}

// NewCacheWithInfo creates the configured backend. When a remote backend is
// unreachable and FallbackToMemory is set, a memory cache is returned instead.
func NewCacheWithInfo(cfg CacheConfig) (Result, error) {
	var (
		c   Cacher
		err error
	)

	switch cfg.Type {
	case CacheBackendRedis:
		c, err = NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			slog.Info("using redis cache", "url", SanitizeRedisURL(cfg.RedisURL))
		}
	case CacheBackendMemcached:
		c, err = NewMemcachedCache(cfg.MemcachedAddr, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			slog.Info("using memcached cache", "addr", cfg.MemcachedAddr)
		}
	case CacheBackendMemory, "":
		return Result{Cache: newMemory(cfg), BackendType: CacheBackendMemory}, nil
	default:
		return Result{}, fmt.Errorf("unknown cache type %q", cfg.Type)
	}

	if err == nil {
		return Result{Cache: c, BackendType: cfg.Type}, nil
	}
	if !cfg.FallbackToMemory {
		return Result{}, fmt.Errorf("connecting to %s cache: %w", cfg.Type, err)
	}

	slog.Warn("cache backend unavailable, falling back to memory", "backend", cfg.Type, "error", err)
	return Result{Cache: newMemory(cfg), BackendType: CacheBackendMemory, IsFallback: true}, nil
}

// NewCache is NewCacheWithInfo without the backend details.
func NewCache(cfg CacheConfig) (Cacher, error) {
	res, err := NewCacheWithInfo(cfg)
	if err != nil {
		return nil, err
	}
	return res.Cache, nil
}

func newMemory(cfg CacheConfig) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// SanitizeRedisURL masks the password in a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
