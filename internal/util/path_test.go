// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestWithinBase(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"base itself", base, false},
		{"child", filepath.Join(base, "photos", "a.png"), false},
		{"parent", filepath.Dir(base), true},
		{"sibling with shared prefix", base + "-other", true},
		{"unclean traversal", base + "/photos/../../x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WithinBase(base, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithinBase(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			}
		})
	}
}

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoin(base, "photos", "a.png")
	if err != nil {
		t.Fatalf("SafeJoin error: %v", err)
	}
	if want := filepath.Join(base, "photos", "a.png"); got != want {
		t.Errorf("SafeJoin = %q, want %q", got, want)
	}

	// Join treats a leading slash as relative, so this stays inside base.
	if _, err := SafeJoin(base, "/etc/passwd"); err != nil {
		t.Errorf("SafeJoin(/etc/passwd) error = %v", err)
	}

	for _, elems := range [][]string{{"..", "secret"}, {"photos", "..", "..", "etc"}} {
		if _, err := SafeJoin(base, elems...); !errors.Is(err, ErrPathEscapesBase) {
			t.Errorf("SafeJoin(%v) error = %v, want ErrPathEscapesBase", elems, err)
		}
	}
}
