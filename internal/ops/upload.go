package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/convert"
	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/publish"
	"github.com/tovald/pdfsmith/internal/record"
)

// UploadInput contains the incoming file for the Upload operation.
type UploadInput struct {
	Filename string
	File     io.Reader
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Record *record.Record `json:"record"`

	// PublishWarning is non-empty when the post-upload push failed.
	// The upload itself still succeeded.
	PublishWarning string `json:"publish_warning,omitempty"`
}

// Upload validates an incoming file, converts it to a PDF in the PDF
// directory, records the conversion, and attempts a best-effort push.
//
// Received → Validated → Converted → Recorded → Published → Done, with
// early exits for rejected files, failed conversions, and failed
// inserts. A record is only written once the PDF exists on disk.
func Upload(ctx context.Context, database *sql.DB, cfg *config.Config, conv convert.Converter, pub publish.Publisher, input UploadInput) (*UploadOutput, error) {
	if input.File == nil || strings.TrimSpace(input.Filename) == "" {
		return nil, errors.NewInvalidRequest("no file selected")
	}

	allowed := cfg.Allowed()
	if !record.HasAllowedExtension(input.Filename, allowed) {
		return nil, errors.NewUnsupportedType(input.Filename, allowed)
	}

	name := record.SanitizeFilename(input.Filename)
	if name == "" {
		return nil, errors.NewInvalidRequest("unusable filename: " + input.Filename)
	}

	// Stage the source: either persisted in the uploads dir (with
	// timestamp disambiguation) or in a throwaway temp dir.
	var sourcePath string
	if cfg.RetainUploads {
		dest := filepath.Join(cfg.UploadDir, name)
		if _, err := os.Stat(dest); err == nil {
			name = record.WithTimestampSuffix(name, time.Now().Unix())
			dest = filepath.Join(cfg.UploadDir, name)
		}
		if err := writeTo(dest, input.File); err != nil {
			return nil, errors.NewInternal(err)
		}
		sourcePath = dest
	} else {
		stageDir, err := os.MkdirTemp("", "pdfsmith-upload-*")
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		defer os.RemoveAll(stageDir)

		sourcePath = filepath.Join(stageDir, name)
		if err := writeTo(sourcePath, input.File); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	pdfName := record.PDFName(name)
	pdfPath := filepath.Join(cfg.PDFDir, pdfName)

	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		// Already a PDF: validate and store directly, no conversion.
		if err := convert.ValidatePDF(sourcePath); err != nil {
			return nil, err
		}
		if err := copyFile(sourcePath, pdfPath); err != nil {
			return nil, errors.NewInternal(err)
		}
	} else {
		if err := conv.Convert(ctx, sourcePath, pdfPath); err != nil {
			return nil, err
		}
	}

	rec := &record.Record{
		SourceFile: name,
		PDFFile:    pdfName,
		RepoName:   record.RepoLocalUpload,
		CommitHash: record.CommitManual,
	}
	if _, err := db.Insert(database, rec); err != nil {
		// The PDF may remain on disk; accepted, not rolled back.
		return nil, err
	}

	out := &UploadOutput{Record: rec}
	if err := pub.Push(ctx, fmt.Sprintf("Upload and add PDF %s", pdfName)); err != nil {
		out.PublishWarning = err.Error()
	}
	return out, nil
}

// writeTo streams r into a new file at path.
func writeTo(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// copyFile copies src to dst, truncating any existing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeTo(dst, in)
}
