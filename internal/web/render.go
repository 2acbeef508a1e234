package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/record"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Flash   *Flash
}

// Flash is a one-shot status message surfaced after a redirect.
type Flash struct {
	Kind    string // "success", "warning", "danger"
	Message string
}

// IndexPageData is the template data for the listing page.
type IndexPageData struct {
	PageData
	Items         []record.Record
	Search        string
	Total         int
	RetainUploads bool
}

// PreviewPageData is the template data for the markdown preview page.
type PreviewPageData struct {
	PageData
	Filename     string
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"hasMarkdownExt": func(name string) bool {
			return strings.EqualFold(filepath.Ext(name), ".md")
		},
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"index":   "index.html",
		"preview": "preview.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given status.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternal(err)
	}

	// JSON request
	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    string(appErr.Code),
				"message": appErr.Message,
				"status":  appErr.Status,
			},
		})
		return
	}

	r.renderPageStatus(w, appErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", appErr.Status),
			Version: r.version,
		},
		StatusCode: appErr.Status,
		Message:    appErr.Message,
	})
}

// flashCookie carries one status message across the POST→GET redirect.
const flashCookie = "pdfsmith_flash"

// setFlash stores a one-shot message in a short-lived cookie.
// Kind and message are joined and base64-encoded to stay cookie-safe.
func setFlash(w http.ResponseWriter, kind, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// takeFlash reads and clears the flash cookie.
func takeFlash(w http.ResponseWriter, req *http.Request) *Flash {
	c, err := req.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	decoded, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md []byte) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert(md, &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(string(md)))
	}
	return template.HTML(buf.String())
}

// formatTime reformats an ISO-8601 timestamp as "2006-01-02 15:04" UTC.
// Unparseable values are shown as-is.
func formatTime(iso string) string {
	ts, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return ts.UTC().Format("2006-01-02 15:04")
}
