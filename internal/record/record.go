package record

import "time"

// Record is one row in the pdf_documents table: a single completed
// conversion whose PDF exists in the PDF directory.
//
// Records are append-only. The store layer owns ID assignment; callers
// never supply one.
type Record struct {
	ID         string `json:"id"`
	SourceFile string `json:"source_file"`
	PDFFile    string `json:"pdf_file"`
	RepoName   string `json:"repo_name"`
	CommitHash string `json:"commit_hash"`
	CreatedAt  string `json:"created_at"` // ISO-8601, UTC
}

// RepoName/CommitHash labels for interactive uploads.
const (
	RepoLocalUpload  = "local-upload"
	CommitManual     = "manual"
	CommitUnknown    = "unknown"
	RepoLocalDefault = "local-repo"
)

// Now returns the current time formatted as an ISO-8601 UTC timestamp,
// the format stored in created_at.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
