// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by the handlers: name
// normalisation, safe file names and paths, and sql.Null conversions.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// NormalizeUsername trims surrounding space and converts to Unicode NFC so
// that visually identical usernames compare equal. Case is preserved.
func NormalizeUsername(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SecureFilename turns an uploaded file name into a safe ASCII name: accents
// are transliterated, whitespace becomes underscores and everything outside
// [A-Za-z0-9_.-] is dropped. Directory parts and leading dots are removed.
// It returns "" when nothing usable is left.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	s := unidecode.Unidecode(norm.NFC.String(name))
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	s = strings.TrimLeft(s, "._")
	return s
}
