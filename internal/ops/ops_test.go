package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/errors"
)

// fixtureConverter stands in for the external tools: it writes a stub
// PDF to the target path, or fails for sources listed in failFor.
type fixtureConverter struct {
	failFor map[string]bool
	calls   int
}

func (c *fixtureConverter) Convert(_ context.Context, sourcePath, targetPDF string) error {
	c.calls++
	if c.failFor[sourcePath] {
		return errors.NewConversionFailed(sourcePath, fmt.Errorf("simulated tool failure"))
	}
	return os.WriteFile(targetPDF, []byte("%PDF-1.4 stub"), 0o644)
}

// recordingPublisher counts pushes and optionally fails them.
type recordingPublisher struct {
	pushes  []string
	pushErr error
}

func (p *recordingPublisher) Push(_ context.Context, message string) error {
	p.pushes = append(p.pushes, message)
	return p.pushErr
}

// setupTest returns a fresh database and config rooted in a temp dir.
func setupTest(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	tmp := t.TempDir()
	database, err := db.Init(tmp)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig(tmp)
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	return database, cfg
}

func rowCount(t *testing.T, database *sql.DB) int {
	t.Helper()
	n, err := db.Count(database)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}
