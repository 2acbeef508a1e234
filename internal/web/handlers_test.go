package web

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/record"
)

// stubConverter writes a placeholder PDF instead of invoking external tools.
type stubConverter struct {
	err error
}

func (c *stubConverter) Convert(_ context.Context, _, targetPDF string) error {
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(targetPDF, []byte("%PDF-1.4 stub"), 0o644)
}

// stubPublisher records push messages.
type stubPublisher struct {
	pushes []string
}

func (p *stubPublisher) Push(_ context.Context, message string) error {
	p.pushes = append(p.pushes, message)
	return nil
}

func setupTest(t *testing.T) (*Handlers, *sql.DB) {
	t.Helper()
	tmp := t.TempDir()
	database, err := db.Init(tmp)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig(tmp)
	cfg.RetainUploads = true
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	h := &Handlers{
		db:       database,
		cfg:      cfg,
		conv:     &stubConverter{},
		pub:      &stubPublisher{},
		renderer: NewRenderer(templateSub, "test"),
	}
	return h, database
}

func seedRecord(t *testing.T, database *sql.DB, source, createdAt string) {
	t.Helper()
	_, err := db.Insert(database, &record.Record{
		SourceFile: source,
		PDFFile:    record.PDFName(source),
		RepoName:   record.RepoLocalUpload,
		CommitHash: record.CommitManual,
		CreatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", source, err)
	}
}

// multipartBody builds a multipart form with one file field.
func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

// --- HandleIndex ---

func TestHandleIndex_Empty(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.HandleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No documents found") {
		t.Error("expected empty state message")
	}
}

func TestHandleIndex_ListsRecords(t *testing.T) {
	h, database := setupTest(t)
	seedRecord(t, database, "guide.md", "2024-01-01T00:00:00Z")

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.HandleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "guide.md") {
		t.Error("expected source filename in listing")
	}
	if !strings.Contains(body, "/download/guide.pdf") {
		t.Error("expected download link in listing")
	}
}

func TestHandleIndex_Search(t *testing.T) {
	h, database := setupTest(t)
	seedRecord(t, database, "report.md", "2024-01-01T00:00:00Z")
	seedRecord(t, database, "notes.md", "2024-02-01T00:00:00Z")

	req := httptest.NewRequest("GET", "/?search=report", nil)
	rec := httptest.NewRecorder()
	h.HandleIndex(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "report.md") {
		t.Error("expected matching record")
	}
	if strings.Contains(body, "notes.md") {
		t.Error("did not expect non-matching record")
	}
}

// --- HandleUpload ---

func TestHandleUpload_Success(t *testing.T) {
	h, database := setupTest(t)

	body, contentType := multipartBody(t, "notes.md", "# hello")
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	n, err := db.Count(database)
	if err != nil || n != 1 {
		t.Errorf("record count = %d, %v; want 1", n, err)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.PDFDir, "notes.pdf")); err != nil {
		t.Errorf("expected PDF on disk: %v", err)
	}

	// Success flash is set for the follow-up GET
	flash := flashFromResponse(t, rec)
	if flash == nil || flash.Kind != "success" {
		t.Errorf("flash = %+v, want success", flash)
	}
}

func TestHandleUpload_NoFile(t *testing.T) {
	h, database := setupTest(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	flash := flashFromResponse(t, rec)
	if flash == nil || flash.Kind != "warning" {
		t.Errorf("flash = %+v, want warning", flash)
	}
	if n, _ := db.Count(database); n != 0 {
		t.Errorf("record count = %d, want 0", n)
	}
}

func TestHandleUpload_UnsupportedType(t *testing.T) {
	h, database := setupTest(t)

	body, contentType := multipartBody(t, "malware.exe", "nope")
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if n, _ := db.Count(database); n != 0 {
		t.Errorf("record count = %d, want 0", n)
	}

	entries, err := os.ReadDir(h.cfg.PDFDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("PDF dir has %d entries, want 0", len(entries))
	}
}

func TestHandleUpload_ConversionFailure(t *testing.T) {
	h, database := setupTest(t)
	h.conv = &stubConverter{err: errors.NewConversionFailed("notes.md", fmt.Errorf("boom"))}

	body, contentType := multipartBody(t, "notes.md", "# hello")
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	flash := flashFromResponse(t, rec)
	if flash == nil || flash.Kind != "danger" {
		t.Errorf("flash = %+v, want danger", flash)
	}
	if n, _ := db.Count(database); n != 0 {
		t.Errorf("record count = %d, want 0", n)
	}
}

// --- HandleDownload ---

func TestHandleDownload_Success(t *testing.T) {
	h, _ := setupTest(t)

	content := []byte("%PDF-1.4 data")
	if err := os.WriteFile(filepath.Join(h.cfg.PDFDir, "report.pdf"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/download/report.pdf", nil)
	req.SetPathValue("filename", "report.pdf")
	rec := httptest.NewRecorder()
	h.HandleDownload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("body does not match file content")
	}
}

func TestHandleDownload_NotFound(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/download/missing.pdf", nil)
	req.SetPathValue("filename", "missing.pdf")
	rec := httptest.NewRecorder()
	h.HandleDownload(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDownload_NotFoundJSON(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/download/missing.pdf", nil)
	req.SetPathValue("filename", "missing.pdf")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDownload(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}
	if !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Error("expected NOT_FOUND code in JSON body")
	}
}

// --- HandlePreview ---

func TestHandlePreview_RendersMarkdown(t *testing.T) {
	h, _ := setupTest(t)

	src := filepath.Join(h.cfg.UploadDir, "guide.md")
	if err := os.WriteFile(src, []byte("# Guide\n\nsome *text*"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/preview/guide.md", nil)
	req.SetPathValue("filename", "guide.md")
	rec := httptest.NewRecorder()
	h.HandlePreview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1>Guide</h1>") {
		t.Error("expected rendered markdown heading")
	}
}

func TestHandlePreview_RejectsNonMarkdown(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/preview/report.pdf", nil)
	req.SetPathValue("filename", "report.pdf")
	rec := httptest.NewRecorder()
	h.HandlePreview(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// flashFromResponse decodes the flash cookie set on a response.
func flashFromResponse(t *testing.T, rec *httptest.ResponseRecorder) *Flash {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()

	for _, c := range res.Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			follow := httptest.NewRequest("GET", "/", nil)
			follow.AddCookie(c)
			return takeFlash(httptest.NewRecorder(), follow)
		}
	}
	return nil
}
