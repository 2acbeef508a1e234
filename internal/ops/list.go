package ops

import (
	"database/sql"

	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/record"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	// Filter restricts results to records whose source_file, pdf_file,
	// or repo_name contains it as a case-sensitive substring. Empty
	// returns everything.
	Filter string
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []record.Record `json:"items"`
	Total int             `json:"total"`
}

// List retrieves conversion records, most recent first. Read-only.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	items, err := db.List(database, input.Filter)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Items: items, Total: len(items)}, nil
}
