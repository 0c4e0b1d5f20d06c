// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscapesBase is returned when a joined path leaves its base directory.
var ErrPathEscapesBase = errors.New("path escapes base directory")

// WithinBase reports an error unless target resolves to base or a path below it.
func WithinBase(base, target string) error {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}

	// The separator suffix stops /uploads-other matching /uploads.
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return ErrPathEscapesBase
	}
	return nil
}

// SafeJoin joins elems onto base and rejects the result if it escapes base.
func SafeJoin(base string, elems ...string) (string, error) {
	full := filepath.Join(append([]string{base}, elems...)...)
	if err := WithinBase(base, full); err != nil {
		return "", err
	}
	return full, nil
}
