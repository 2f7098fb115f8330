// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/auth"
	"github.com/solhub/solhub/pkg/errutil"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "templates/layout.html"

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}

// page is handed to every template.
type page struct {
	User      *auth.User
	CSRFToken string
	Data      any
}

type views struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"markdown": renderMarkdown,
	"datetime": func(t time.Time) string {
		return t.Local().Format("Mon Jan 02 2006 15:04:05 MST")
	},
}

func loadViews() (*views, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("WEB_TEMPLATE_FAILED").Wrap(err)
	}

	v := &views{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(path.Base(layoutFile)).Funcs(templateFuncs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, oops.Code("WEB_TEMPLATE_FAILED").With("template", name).Wrap(err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes a page into a buffer first so a template error still
// produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := s.views.pages[name]
	if !ok {
		s.logger.ErrorContext(r.Context(), "unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p := page{
		User:      currentUser(r.Context()),
		CSRFToken: csrfToken(r.Context()),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		errutil.LogErrorContext(r.Context(), s.logger, "template execution failed",
			oops.Code("WEB_TEMPLATE_FAILED").With("template", name).Wrap(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	buf.WriteTo(w)
}

type messageView struct {
	Message string
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, message string) {
	s.render(w, r, http.StatusNotFound, "404", messageView{Message: message})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.LogErrorContext(r.Context(), s.logger, "request failed", err,
		"method", r.Method, "path", r.URL.Path)
	s.render(w, r, http.StatusInternalServerError, "500", messageView{
		Message: "I'm sorry, but we have encountered the following error: " + catalogMessage(err),
	})
}

func (s *Server) renderForbidden(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusForbidden, "403", messageView{
		Message: "Your form has expired. Please go back, reload the page and try again.",
	})
}
