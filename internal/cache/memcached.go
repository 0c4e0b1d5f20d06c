// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// maxMemcachedKeyLen is the protocol limit on key length.
const maxMemcachedKeyLen = 250

// MemcachedCache stores entries in one or more memcached servers.
type MemcachedCache struct {
	client     *memcache.Client
	prefix     string
	defaultTTL time.Duration
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewMemcachedCache connects to the comma-separated server list in addrs.
// The connection is probed with a GET so a dead server fails fast.
func NewMemcachedCache(addrs, prefix string, defaultTTL time.Duration) (*MemcachedCache, error) {
	var servers []string
	for _, s := range strings.Split(addrs, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		return nil, errors.New("memcached address is required")
	}

	client := memcache.New(servers...)
	client.Timeout = 2 * time.Second

	c := &MemcachedCache{client: client, prefix: prefix, defaultTTL: defaultTTL}
	if _, err := client.Get(c.key("probe")); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return nil, err
	}
	return c, nil
}

// key prefixes k and hashes it when it would break the memcached key rules.
func (c *MemcachedCache) key(k string) string {
	full := c.prefix + k
	if len(full) <= maxMemcachedKeyLen && !strings.ContainsFunc(full, func(r rune) bool {
		return r <= ' ' || r == 0x7f
	}) {
		return full
	}
	sum := sha256.Sum256([]byte(k))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get retrieves a value from memcached.
func (c *MemcachedCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	item, err := c.client.Get(c.key(key))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			c.misses.Add(1)
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	c.hits.Add(1)
	return item.Value, nil
}

// Set stores a value in memcached. TTLs are rounded to whole seconds.
func (c *MemcachedCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	err := c.client.Set(&memcache.Item{
		Key:        c.key(key),
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
	if err != nil {
		return err
	}
	c.sets.Add(1)
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *MemcachedCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	err := c.client.Delete(c.key(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Clear flushes every server. Memcached has no prefix scan, so this also
// drops entries written by other applications sharing the servers.
func (c *MemcachedCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.client.DeleteAll()
}

// Has checks if a key exists in memcached.
func (c *MemcachedCache) Has(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrCacheMiss):
		return false, nil
	default:
		return false, err
	}
}

// Close marks the cache closed. Idle connections are dropped by the client.
func (c *MemcachedCache) Close() error {
	c.closed.Store(true)
	return nil
}

// Stats returns the local hit/miss counters.
func (c *MemcachedCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		HitRate: hitRate(hits, misses),
	}
}

// ResetStats resets the local counters.
func (c *MemcachedCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

var (
	_ Cacher        = (*MemcachedCache)(nil)
	_ StatsProvider = (*MemcachedCache)(nil)
)
