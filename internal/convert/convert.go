package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tovald/pdfsmith/internal/errors"
)

// Converter transforms a source document into a PDF at targetPDF.
// On success targetPDF exists; on failure no record must be written.
type Converter interface {
	Convert(ctx context.Context, sourcePath, targetPDF string) error
}

// ExecConverter shells out to external tools, dispatching on the
// source file's extension:
//
//   - .md/.markdown/.html/.htm/.txt → pandoc, which writes the target
//     path directly
//   - .docx → a LibreOffice-style tool that writes the PDF next to the
//     source, after which the output is renamed into place
type ExecConverter struct {
	PandocPath   string
	DocxToolPath string
}

// NewExecConverter creates an ExecConverter using the given tool names.
// Names are resolved via PATH at conversion time when not absolute.
func NewExecConverter(pandocPath, docxToolPath string) *ExecConverter {
	return &ExecConverter{
		PandocPath:   pandocPath,
		DocxToolPath: docxToolPath,
	}
}

// Convert converts sourcePath to a PDF at targetPDF.
func (c *ExecConverter) Convert(ctx context.Context, sourcePath, targetPDF string) error {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	switch ext {
	case ".md", ".markdown", ".html", ".htm", ".txt":
		return c.runPandoc(ctx, sourcePath, targetPDF)
	case ".docx":
		return c.runDocxTool(ctx, sourcePath, targetPDF)
	default:
		return errors.NewConversionFailed(sourcePath, fmt.Errorf("no converter for %s files", ext))
	}
}

// runPandoc invokes pandoc with an explicit output path.
func (c *ExecConverter) runPandoc(ctx context.Context, sourcePath, targetPDF string) error {
	bin, err := exec.LookPath(c.PandocPath)
	if err != nil {
		return errors.NewConversionFailed(sourcePath, fmt.Errorf("pandoc not found: %w", err))
	}

	cmd := exec.CommandContext(ctx, bin, sourcePath, "-o", targetPDF)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.NewConversionFailed(sourcePath, toolError(err, stderr.String()))
	}

	if _, err := os.Stat(targetPDF); err != nil {
		return errors.NewConversionFailed(sourcePath, fmt.Errorf("expected PDF not found after conversion: %s", targetPDF))
	}
	return nil
}

// runDocxTool invokes the DOCX converter. The tool writes its output
// next to the source (inside --outdir), so the source is first staged
// into a scratch dir and the produced PDF is renamed to targetPDF.
func (c *ExecConverter) runDocxTool(ctx context.Context, sourcePath, targetPDF string) error {
	bin, err := exec.LookPath(c.DocxToolPath)
	if err != nil {
		return errors.NewConversionFailed(sourcePath, fmt.Errorf("docx converter not found: %w", err))
	}

	workDir, err := os.MkdirTemp("", "pdfsmith-docx-*")
	if err != nil {
		return errors.NewInternal(err)
	}
	defer os.RemoveAll(workDir)

	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", workDir, sourcePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.NewConversionFailed(sourcePath, toolError(err, stderr.String()))
	}

	base := filepath.Base(sourcePath)
	produced := filepath.Join(workDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return errors.NewConversionFailed(sourcePath, fmt.Errorf("expected PDF not found after conversion: %s", produced))
	}

	if err := moveFile(produced, targetPDF); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// toolError folds captured stderr into the exec error.
func toolError(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, stderr)
}

// moveFile renames src to dst, falling back to copy+remove when the
// paths are on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}
