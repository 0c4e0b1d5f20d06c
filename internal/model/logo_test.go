// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestParseLogo(t *testing.T) {
	tests := []struct {
		name      string
		wantOK    bool
		wantYear  string
		wantEvent string
	}{
		{"2012-London.png", true, "2012", "London"},
		{"1960-Rome.JPG", true, "1960", "Rome"},
		{"2010-Vancouver-Whistler.svg", true, "2010", "Vancouver-Whistler"},
		{"2022-Beijing.webp", true, "2022", "Beijing"},
		{"readme.txt", false, "", ""},
		{"2012.png", false, "", ""},
		{"2012_London.png", false, "", ""},
		{".DS_Store", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLogo(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ParseLogo(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Year != tt.wantYear {
				t.Errorf("Year = %q, want %q", got.Year, tt.wantYear)
			}
			if got.Event != tt.wantEvent {
				t.Errorf("Event = %q, want %q", got.Event, tt.wantEvent)
			}
			if got.File != tt.name {
				t.Errorf("File = %q, want %q", got.File, tt.name)
			}
		})
	}
}

func TestSortLogos(t *testing.T) {
	logos := []Logo{
		{Year: "2012", Event: "London"},
		{Year: "1960", Event: "Rome"},
		{Year: "2010", Event: "Vancouver"},
		{Year: "2010", Event: "Athens"},
	}
	SortLogos(logos)

	want := []string{"1960Rome", "2010Athens", "2010Vancouver", "2012London"}
	for i, l := range logos {
		if got := l.Year + l.Event; got != want[i] {
			t.Errorf("logos[%d] = %q, want %q", i, got, want[i])
		}
	}
}
