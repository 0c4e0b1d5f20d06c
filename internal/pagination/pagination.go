// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pagination builds page links for listing templates.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Pagination holds pagination data for templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	Pages       []Page
}

// Page is a single page link. Ellipsis entries have no number or URL.
type Page struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// Build creates pagination data for baseURL. currentPage is clamped into range.
func Build(currentPage int, totalItems int64, perPage int, baseURL string) Pagination {
	totalPages := TotalPages(totalItems, perPage)
	currentPage = Clamp(currentPage, totalPages)

	buildURL := func(page int) string {
		return fmt.Sprintf("%s?page=%d", baseURL, page)
	}

	p := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		Pages:       pages(currentPage, totalPages, buildURL),
	}
	if p.HasPrev {
		p.PrevURL = buildURL(currentPage - 1)
	}
	if p.HasNext {
		p.NextURL = buildURL(currentPage + 1)
	}
	return p
}

// Offset returns the row offset of the current page.
func (p Pagination) Offset() int64 {
	return int64((p.CurrentPage - 1) * p.PerPage)
}

// ShouldShow returns true if there is more than one page.
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// pages shows up to 5 page numbers centred on the current page, always
// including the first and last pages, with ellipses for the gaps.
func pages(currentPage, totalPages int, buildURL func(int) string) []Page {
	var out []Page

	start := currentPage - 2
	end := currentPage + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		out = append(out, Page{Number: 1, URL: buildURL(1)})
		if start > 2 {
			out = append(out, Page{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		out = append(out, Page{Number: i, URL: buildURL(i), IsCurrent: i == currentPage})
	}
	if end < totalPages {
		if end < totalPages-1 {
			out = append(out, Page{IsEllipsis: true})
		}
		out = append(out, Page{Number: totalPages, URL: buildURL(totalPages)})
	}
	return out
}

// TotalPages returns the page count for totalItems, never less than 1.
func TotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	n := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if n < 1 {
		return 1
	}
	return n
}

// Clamp keeps page within [1, totalPages].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// ParsePage parses the "page" query parameter. It returns 1 if the parameter
// is missing or not a positive integer.
func ParsePage(r *http.Request) int {
	v, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || v < 1 {
		return 1
	}
	return v
}
