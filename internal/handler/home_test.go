// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// levelCounter counts the records it sees per level.
type levelCounter struct {
	mu     sync.Mutex
	counts map[slog.Level]int
}

func (c *levelCounter) Enabled(context.Context, slog.Level) bool { return true }
func (c *levelCounter) WithAttrs([]slog.Attr) slog.Handler       { return c }
func (c *levelCounter) WithGroup(string) slog.Handler            { return c }

func (c *levelCounter) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[r.Level]++
	return nil
}

func (c *levelCounter) count(level slog.Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[level]
}

func captureLogs(t *testing.T) *levelCounter {
	t.Helper()
	c := &levelCounter{counts: map[slog.Level]int{}}
	prev := slog.Default()
	slog.SetDefault(slog.New(c))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return c
}

func TestHomeHandler_MissingLogosDirWarnsOnce(t *testing.T) {
	logs := captureLogs(t)

	h := NewHomeHandler(nil, filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, logs.count(slog.LevelWarn))

	for range 3 {
		assert.Empty(t, h.listLogos())
	}
	assert.Equal(t, 1, logs.count(slog.LevelWarn))
	assert.Zero(t, logs.count(slog.LevelError))
}

func TestHomeHandler_ListLogos(t *testing.T) {
	logs := captureLogs(t)

	dir := t.TempDir()
	for _, name := range []string{"2012-London.png", "1988-Seoul.jpg", "notes.txt", "bad.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2000-Sydney.png"), 0o750))

	logos := NewHomeHandler(nil, dir).listLogos()
	require.Len(t, logos, 2)
	assert.Equal(t, "1988", logos[0].Year)
	assert.Equal(t, "Seoul", logos[0].Event)
	assert.Equal(t, "2012-London.png", logos[1].File)
	assert.Zero(t, logs.count(slog.LevelWarn))
}
