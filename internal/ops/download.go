package ops

import (
	"os"
	"path/filepath"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/record"
)

// ResolvePDF maps a requested filename to a path inside the PDF
// directory, rejecting traversal and missing files.
func ResolvePDF(cfg *config.Config, filename string) (string, error) {
	return resolveIn(cfg.PDFDir, filename)
}

// ResolveUpload maps a requested filename to a retained source in the
// uploads directory.
func ResolveUpload(cfg *config.Config, filename string) (string, error) {
	if !cfg.RetainUploads {
		return "", errors.NewNotFound(filename)
	}
	return resolveIn(cfg.UploadDir, filename)
}

func resolveIn(dir, filename string) (string, error) {
	safe := record.SanitizeFilename(filename)
	if safe == "" || safe != filepath.Base(filename) {
		return "", errors.NewNotFound(filename)
	}

	path := filepath.Join(dir, safe)
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return "", errors.NewNotFound(safe)
	}
	return path, nil
}
