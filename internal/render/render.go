// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and renders pages
// with the visitor's session state.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/uikit"
)

// Session keys for flash messages.
const (
	keyFlash     = "flash"
	keyFlashType = "flash_type"
)

// Page groups. Admin pages are wrapped in the admin layout, the others
// only in the base layout.
var (
	baseGroups  = []string{"public", "auth", "account"}
	adminGroup  = "admin"
	baseLayout  = "layouts/base.html"
	adminLayout = "layouts/admin.html"
)

// blankLinesRegex collapses runs of blank lines left behind by template actions.
var blankLinesRegex = regexp.MustCompile(`\n(?:[ \t]*\r?\n)+`)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses all templates from the filesystem.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	groups := make(map[string][]string, len(baseGroups)+1)
	for _, g := range baseGroups {
		groups[g] = []string{baseLayout}
	}
	groups[adminGroup] = []string{baseLayout, adminLayout}

	for group, layouts := range groups {
		pages, err := templateFiles(templatesFS, group)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", group, err)
		}

		for _, tmplPath := range pages {
			name := group + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			// Parse in order: layouts, partials, page template
			files := append([]string{}, layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return nil
}

// templateFiles returns all .html files in a directory.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// A group without pages is fine.
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Has reports whether a page template is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the uikit helpers plus console-specific functions.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	funcs["T"] = i18n.T
	funcs["markdown"] = Markdown
	funcs["categories"] = func() []model.ArtCategory { return model.Categories }
	funcs["roles"] = func() []string { return model.Roles }
	funcs["languages"] = func() []string { return i18n.SupportedLanguages }
	funcs["isDev"] = func() bool { return r.isDev }
	return funcs
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title         string
	Lang          string
	Path          string
	Data          any
	Form          url.Values
	Errors        map[string]string
	Flash         string
	FlashType     string
	Alert         string
	User          *model.UserProfile
	Authenticated bool
	IsAdmin       bool
	Loading       bool
	Breadcrumbs   []uikit.Breadcrumb
	CurrentYear   int
}

// HasError reports whether a form field has a validation error.
func (d TemplateData) HasError(field string) bool {
	_, ok := d.Errors[field]
	return ok
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page wrapped in its layouts with the given status.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	return r.execute(w, req, status, name, "base", data)
}

// RenderFragment renders a single named block of a page without layouts.
// It is used for live search results.
func (r *Renderer) RenderFragment(w http.ResponseWriter, req *http.Request, name, block string, data TemplateData) error {
	return r.execute(w, req, http.StatusOK, name, block, data)
}

func (r *Renderer) execute(w http.ResponseWriter, req *http.Request, status int, name, entry string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	r.fill(req, &data, entry == "base")

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, entry, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	out := blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(out)
	return err
}

// fill adds request-scoped defaults. Flash messages and the session
// error are only consumed by full pages.
func (r *Renderer) fill(req *http.Request, data *TemplateData, fullPage bool) {
	data.CurrentYear = time.Now().Year()
	data.Path = req.URL.Path
	if data.Lang == "" {
		data.Lang = middleware.GetLang(req)
	}

	if store := middleware.GetStore(req); store != nil {
		snap := store.Snapshot()
		data.User = snap.User
		data.Authenticated = snap.Authenticated
		data.IsAdmin = snap.IsAdmin()
		data.Loading = snap.Loading
		if fullPage && data.Alert == "" {
			data.Alert = store.ConsumeError()
		}
	}

	if fullPage && r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), keyFlash); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), keyFlashType)
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), keyFlash, message)
		r.sessionManager.Put(req.Context(), keyFlashType, flashType)
	}
}
