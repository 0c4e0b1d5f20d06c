// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		items   int64
		perPage int
		want    int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.items, tt.perPage); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.items, tt.perPage, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0, 3); got != 1 {
		t.Errorf("Clamp(0, 3) = %d, want 1", got)
	}
	if got := Clamp(7, 3); got != 3 {
		t.Errorf("Clamp(7, 3) = %d, want 3", got)
	}
	if got := Clamp(2, 3); got != 2 {
		t.Errorf("Clamp(2, 3) = %d, want 2", got)
	}
}

func TestBuild(t *testing.T) {
	p := Build(2, 25, 10, "/posts")

	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if !p.HasPrev || !p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want true/true", p.HasPrev, p.HasNext)
	}
	if p.PrevURL != "/posts?page=1" {
		t.Errorf("PrevURL = %q", p.PrevURL)
	}
	if p.NextURL != "/posts?page=3" {
		t.Errorf("NextURL = %q", p.NextURL)
	}
	if p.Offset() != 10 {
		t.Errorf("Offset() = %d, want 10", p.Offset())
	}
	if len(p.Pages) != 3 || !p.Pages[1].IsCurrent {
		t.Errorf("Pages = %+v", p.Pages)
	}
	if !p.ShouldShow() {
		t.Error("ShouldShow() = false, want true")
	}
}

func TestBuild_ClampsPage(t *testing.T) {
	p := Build(9, 5, 10, "/posts")
	if p.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", p.CurrentPage)
	}
	if p.HasPrev || p.HasNext || p.ShouldShow() {
		t.Error("single page should have no navigation")
	}
}

func TestBuild_Ellipsis(t *testing.T) {
	p := Build(10, 200, 10, "/posts")

	// 1 ... 8 9 10 11 12 ... 20
	want := []int{1, 0, 8, 9, 10, 11, 12, 0, 20}
	if len(p.Pages) != len(want) {
		t.Fatalf("got %d pages, want %d: %+v", len(p.Pages), len(want), p.Pages)
	}
	for i, n := range want {
		if p.Pages[i].Number != n {
			t.Errorf("Pages[%d].Number = %d, want %d", i, p.Pages[i].Number, n)
		}
		if (n == 0) != p.Pages[i].IsEllipsis {
			t.Errorf("Pages[%d].IsEllipsis = %v", i, p.Pages[i].IsEllipsis)
		}
	}
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"/posts":          1,
		"/posts?page=3":   3,
		"/posts?page=0":   1,
		"/posts?page=-2":  1,
		"/posts?page=abc": 1,
	}
	for target, want := range tests {
		r := httptest.NewRequest("GET", target, nil)
		if got := ParsePage(r); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", target, got, want)
		}
	}
}
