package db

import (
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/record"
)

// Insert stores a new conversion record and returns its assigned ID.
// The ID sequence is owned here: any caller-supplied ID is ignored.
func Insert(database *sql.DB, r *record.Record) (string, error) {
	id, err := newULID()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	r.ID = id

	if r.CreatedAt == "" {
		r.CreatedAt = record.Now()
	}

	query := `
		INSERT INTO pdf_documents (id, source_file, pdf_file, repo_name, commit_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = database.Exec(query, r.ID, r.SourceFile, r.PDFFile, r.RepoName, r.CommitHash, r.CreatedAt)
	if err != nil {
		return "", errors.NewStorage(err)
	}

	return id, nil
}

// List returns records ordered most-recent first. A non-empty filter
// restricts results to rows whose source_file, pdf_file, or repo_name
// contains the filter as a case-sensitive substring.
func List(database *sql.DB, filter string) ([]record.Record, error) {
	query := `
		SELECT id, source_file, pdf_file, repo_name, commit_hash, created_at
		FROM pdf_documents
	`
	var args []any
	if filter != "" {
		// instr() keeps matching case-sensitive; LIKE is ASCII
		// case-insensitive in SQLite.
		query += ` WHERE instr(source_file, ?) > 0 OR instr(pdf_file, ?) > 0 OR instr(repo_name, ?) > 0`
		args = append(args, filter, filter, filter)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	defer rows.Close()

	records := make([]record.Record, 0)
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.ID, &r.SourceFile, &r.PDFFile, &r.RepoName, &r.CommitHash, &r.CreatedAt); err != nil {
			return nil, errors.NewStorage(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage(err)
	}

	return records, nil
}

// GetByID retrieves a single record by its ID.
func GetByID(database *sql.DB, id string) (*record.Record, error) {
	query := `
		SELECT id, source_file, pdf_file, repo_name, commit_hash, created_at
		FROM pdf_documents
		WHERE id = ?
	`
	var r record.Record
	err := database.QueryRow(query, id).Scan(&r.ID, &r.SourceFile, &r.PDFFile, &r.RepoName, &r.CommitHash, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewStorage(err)
	}
	return &r, nil
}

// Count returns the total number of records.
func Count(database *sql.DB) (int, error) {
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM pdf_documents`).Scan(&n); err != nil {
		return 0, errors.NewStorage(err)
	}
	return n, nil
}

// newULID generates a new ULID.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
