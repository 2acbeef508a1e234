package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// Path is the output file. Empty picks a timestamped name in the
	// working directory.
	Path string

	// Filter restricts exported records (same semantics as List).
	Filter string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path     string `json:"path"`
	Exported int    `json:"exported"`
}

// Export writes conversion records to a JSONL file, one record per
// line, most recent first.
func Export(database *sql.DB, input ExportInput) (*ExportOutput, error) {
	records, err := db.List(database, input.Filter)
	if err != nil {
		return nil, err
	}

	path := input.Path
	if path == "" {
		path = fmt.Sprintf("pdfsmith-export-%d.jsonl", time.Now().Unix())
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	return &ExportOutput{Path: path, Exported: len(records)}, nil
}
