package ops

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/convert"
	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/publish"
	"github.com/tovald/pdfsmith/internal/record"
)

// BatchOutput contains the result of one batch run.
type BatchOutput struct {
	Converted int      `json:"converted"`
	Skipped   []string `json:"skipped,omitempty"` // files whose conversion failed

	// PublishWarning is non-empty when the aggregated push failed.
	PublishWarning string `json:"publish_warning,omitempty"`
}

// Batch walks the configured root, converts every Markdown file found
// to a PDF in the PDF directory, records each success, and triggers one
// aggregated push if anything converted. Per-file failures are logged
// and skipped; the walk continues.
func Batch(ctx context.Context, database *sql.DB, cfg *config.Config, conv convert.Converter, pub publish.Publisher) (*BatchOutput, error) {
	root := cfg.BatchRoot
	if root == "" {
		root = "."
	}

	pdfDir, _ := filepath.Abs(cfg.PDFDir)
	uploadDir, _ := filepath.Abs(cfg.UploadDir)
	commitHash := headRevision(ctx, root)

	out := &BatchOutput{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if abs, aerr := filepath.Abs(path); aerr == nil && (abs == pdfDir || abs == uploadDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}

		pdfName := record.PDFName(d.Name())
		pdfPath := filepath.Join(cfg.PDFDir, pdfName)

		if cerr := conv.Convert(ctx, path, pdfPath); cerr != nil {
			log.Printf("skipping %s: %v", rel, cerr)
			out.Skipped = append(out.Skipped, rel)
			return nil
		}

		rec := &record.Record{
			SourceFile: rel,
			PDFFile:    pdfName,
			RepoName:   cfg.RepoName,
			CommitHash: commitHash,
		}
		if _, ierr := db.Insert(database, rec); ierr != nil {
			log.Printf("skipping %s: %v", rel, ierr)
			out.Skipped = append(out.Skipped, rel)
			return nil
		}

		log.Printf("converted %s -> %s", rel, pdfName)
		out.Converted++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Converted > 0 {
		msg := fmt.Sprintf("Convert %d Markdown file(s) to PDF", out.Converted)
		if perr := pub.Push(ctx, msg); perr != nil {
			out.PublishWarning = perr.Error()
		}
	}

	return out, nil
}

// headRevision returns the working tree's current revision, or
// "unknown" outside a git checkout.
func headRevision(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return record.CommitUnknown
	}
	rev := strings.TrimSpace(stdout.String())
	if rev == "" {
		return record.CommitUnknown
	}
	return rev
}
