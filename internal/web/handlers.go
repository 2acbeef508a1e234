package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/convert"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/ops"
	"github.com/tovald/pdfsmith/internal/publish"
)

// maxUploadBytes bounds the multipart form kept in memory plus disk.
const maxUploadBytes = 64 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	conv     convert.Converter
	pub      publish.Publisher
	renderer *Renderer
}

// HandleIndex handles GET / — the searchable conversion listing.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	result, err := ops.List(h.db, ops.ListInput{Filter: search})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "index", IndexPageData{
		PageData: PageData{
			Title:   "Converted PDFs",
			Version: h.renderer.version,
			Flash:   takeFlash(w, r),
		},
		Items:         result.Items,
		Search:        search,
		Total:         result.Total,
		RetainUploads: h.cfg.RetainUploads,
	})
}

// HandleUpload handles POST / — accept one file, run the upload
// workflow, and redirect back to the listing with a status flash.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		setFlash(w, "warning", "No file selected")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	out, err := ops.Upload(r.Context(), h.db, h.cfg, h.conv, h.pub, ops.UploadInput{
		Filename: header.Filename,
		File:     file,
	})
	if err != nil {
		kind := "danger"
		if errors.Is(err, errors.ErrUnsupportedType) || errors.Is(err, errors.ErrInvalidRequest) {
			kind = "warning"
		}
		setFlash(w, kind, flashMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	msg := fmt.Sprintf("File %q uploaded and processed successfully", out.Record.SourceFile)
	kind := "success"
	if out.PublishWarning != "" {
		msg += " (push failed: " + out.PublishWarning + ")"
		kind = "warning"
	}
	setFlash(w, kind, msg)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDownload handles GET /download/{filename} — stream a produced
// PDF as an attachment.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	path, err := ops.ResolvePDF(h.cfg, filename)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// HandlePreview handles GET /preview/{filename} — render a retained
// Markdown source as HTML.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	if !strings.EqualFold(filepath.Ext(filename), ".md") {
		h.renderer.renderError(w, r, errors.NewNotFound(filename))
		return
	}

	path, err := ops.ResolveUpload(h.cfg, filename)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	md, err := os.ReadFile(path)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	h.renderer.renderPage(w, "preview", PreviewPageData{
		PageData: PageData{
			Title:   filepath.Base(path),
			Version: h.renderer.version,
		},
		Filename:     filepath.Base(path),
		RenderedHTML: renderMarkdown(md),
	})
}

// flashMessage maps an operation error to its user-visible reason.
func flashMessage(err error) string {
	if e, ok := err.(*errors.Error); ok {
		switch e.Code {
		case errors.ErrUnsupportedType:
			return "File type not allowed"
		case errors.ErrConversionFailed:
			return e.Message
		case errors.ErrStorage:
			return "Database error: " + e.Message
		default:
			return e.Message
		}
	}
	return err.Error()
}
