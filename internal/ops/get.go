package ops

import (
	"database/sql"
	"strings"

	"github.com/tovald/pdfsmith/internal/db"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/record"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID string
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	Record *record.Record `json:"record"`
}

// Get retrieves a single conversion record by ID.
func Get(database *sql.DB, input GetInput) (*GetOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetByID(database, id)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Record: r}, nil
}
