// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{.Title}}</title>{{with .User}}<nav>{{.FirstName}}</nav>{{end}}` +
				`{{if .Flash}}<p class="{{.FlashType}}">{{.Flash}}</p>{{end}}{{template "content" .}}{{end}}`)},
		"partials/error.html": {Data: []byte(`{{define "fieldError"}}<span class="err">{{.}}</span>{{end}}`)},
		"pages/hello.html": {Data: []byte(
			`{{define "content"}}<h1>{{.Data}}</h1>{{with index .Errors "name"}}{{template "fieldError" .}}{{end}}{{end}}`)},
		"pages/bio.html": {Data: []byte(`{{define "content"}}{{markdown .Data}}<img src="{{photoURL "a.png"}}">{{end}}`)},
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_ParsesPages(t *testing.T) {
	r := newTestRenderer(t)

	for _, name := range []string{"hello", "bio"} {
		if !r.Has(name) {
			t.Errorf("template %q not parsed", name)
		}
	}
	if r.Has("error") {
		t.Error("partials must not be registered as pages")
	}
}

func TestNew_NoPages(t *testing.T) {
	_, err := New(Config{TemplatesFS: fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)},
	}})
	if err == nil {
		t.Error("New should fail without page templates")
	}
}

func TestRender(t *testing.T) {
	r := newTestRenderer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &CurrentUser{ID: 1, FirstName: "Sam"}))
	rec := httptest.NewRecorder()

	err := r.Render(rec, req, http.StatusUnprocessableEntity, "hello", TemplateData{
		Title:  "Greeting",
		Data:   "<b>hi</b>",
		Errors: map[string]string{"name": "Name is required"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Greeting</title>",
		"<nav>Sam</nav>",
		"<h1>&lt;b&gt;hi&lt;/b&gt;</h1>",
		`<span class="err">Name is required</span>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", TemplateData{})
	if err == nil {
		t.Error("Render should fail for an unknown template")
	}
	if rec.Body.Len() != 0 {
		t.Error("nothing should be written on failure")
	}
}

func TestMarkdown_Sanitised(t *testing.T) {
	r := newTestRenderer(t)

	tests := []struct {
		src     string
		want    string
		notWant string
	}{
		{"**bold**", "<strong>bold</strong>", ""},
		{"[x](javascript:alert(1))", "x", "javascript:"},
		{"<script>alert(1)</script>\n\nhi", "<p>hi</p>", "<script>"},
		{"<script>alert(1)</script>", "", "alert(1)"},
		{"~~gone~~", "<del>gone</del>", ""},
	}

	for _, tt := range tests {
		got := string(r.Markdown(tt.src))
		if !strings.Contains(got, tt.want) {
			t.Errorf("Markdown(%q) = %q, want it to contain %q", tt.src, got, tt.want)
		}
		if tt.notWant != "" && strings.Contains(got, tt.notWant) {
			t.Errorf("Markdown(%q) = %q, must not contain %q", tt.src, got, tt.notWant)
		}
	}
}

func TestRender_MarkdownAndPhotoFuncs(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "bio", TemplateData{Data: "*hello*"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<em>hello</em>") {
		t.Errorf("markdown not rendered: %s", body)
	}
	if !strings.Contains(body, `src="/uploads/photos/a.png"`) {
		t.Errorf("photo URL not rendered: %s", body)
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := (&Renderer{}).templateFuncs()

	formatDate := funcs["formatDate"].(func(time.Time) string)
	if got := formatDate(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)); got != "Mar 15, 2025" {
		t.Errorf("formatDate() = %q, want %q", got, "Mar 15, 2025")
	}

	truncate := funcs["truncate"].(func(string, int) string)
	if got := truncate("Paralympics", 4); got != "Para..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("Zoë", 10); got != "Zoë" {
		t.Errorf("truncate() = %q", got)
	}

	photoURL := funcs["photoURL"].(func(string) string)
	if got := photoURL(""); got != "" {
		t.Errorf("photoURL(\"\") = %q", got)
	}

	if _, ok := funcs["markdown"].(func(string) template.HTML); !ok {
		t.Error("markdown func has the wrong signature")
	}
}
