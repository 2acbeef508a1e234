package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Allowed-extension sets for the two upload policies.
var (
	// ExtensionsDirect is accepted when uploads are not retained:
	// PDFs stored as-is, DOCX converted from a throwaway staging dir.
	ExtensionsDirect = []string{".pdf", ".docx"}

	// ExtensionsRetained is accepted when uploaded sources are kept
	// in the uploads directory.
	ExtensionsRetained = []string{".md", ".docx", ".html", ".txt"}
)

// Config holds application configuration. It is loaded once at startup
// and passed explicitly; there is no process-wide mutable state.
type Config struct {
	// PDFDir is where produced PDFs are written. Every record's
	// pdf_file resolves to a file in this directory.
	PDFDir string `json:"pdf_dir"`

	// UploadDir is where uploaded sources are kept when RetainUploads
	// is true. Unused otherwise.
	UploadDir string `json:"upload_dir"`

	// RetainUploads selects the upload policy: when true, sources are
	// persisted in UploadDir (with timestamp disambiguation on name
	// collisions); when false, non-PDF sources are staged in a
	// throwaway temp dir and discarded after conversion.
	RetainUploads bool `json:"retain_uploads,omitempty"`

	// AllowedExtensions overrides the extension set derived from
	// RetainUploads. Entries are lowercase with a leading dot.
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`

	// BatchRoot is the directory tree walked in batch mode.
	BatchRoot string `json:"batch_root,omitempty"`

	// RepoName labels batch-converted records. Overridden by the
	// PDFSMITH_REPO_NAME environment variable.
	RepoName string `json:"repo_name,omitempty"`

	// Branch is the branch pushed by the publisher.
	Branch string `json:"branch,omitempty"`

	// PandocPath and DocxToolPath name the external converter binaries.
	// Resolved via PATH when not absolute.
	PandocPath   string `json:"pandoc_path,omitempty"`
	DocxToolPath string `json:"docx_tool_path,omitempty"`

	// GitHubToken and GitHubRepo ("owner/repo") authenticate publisher
	// pushes. Read from GITHUB_TOKEN / GITHUB_REPOSITORY; both must be
	// present for any push to occur.
	GitHubToken string `json:"-"`
	GitHubRepo  string `json:"-"`
}

// DefaultConfig returns the default configuration rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		PDFDir:       filepath.Join(baseDir, "pdfs"),
		UploadDir:    filepath.Join(baseDir, "uploads"),
		BatchRoot:    ".",
		RepoName:     "local-repo",
		Branch:       "main",
		PandocPath:   "pandoc",
		DocxToolPath: "soffice",
	}
}

// Load loads configuration from baseDir/config.json, merged over
// defaults, then applies environment overrides. Returns defaults if the
// file doesn't exist. The baseDir parameter allows tests to use
// t.TempDir().
func Load(baseDir string) (*Config, error) {
	cfg := DefaultConfig(baseDir)

	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitHubRepo = os.Getenv("GITHUB_REPOSITORY")
	if repo := os.Getenv("PDFSMITH_REPO_NAME"); repo != "" {
		cfg.RepoName = repo
	}

	cfg.normalize()
	return cfg, nil
}

// Allowed returns the effective allowed-extension set.
func (c *Config) Allowed() []string {
	if len(c.AllowedExtensions) > 0 {
		return c.AllowedExtensions
	}
	if c.RetainUploads {
		return ExtensionsRetained
	}
	return ExtensionsDirect
}

// EnsureDirs creates the PDF directory and, if uploads are retained,
// the upload directory.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.PDFDir, 0o755); err != nil {
		return err
	}
	if c.RetainUploads {
		if err := os.MkdirAll(c.UploadDir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// normalize lowercases and dot-prefixes any configured extensions and
// fills in zero-valued scalars with defaults.
func (c *Config) normalize() {
	for i, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.AllowedExtensions[i] = ext
	}
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.BatchRoot == "" {
		c.BatchRoot = "."
	}
	if c.RepoName == "" {
		c.RepoName = "local-repo"
	}
	if c.PandocPath == "" {
		c.PandocPath = "pandoc"
	}
	if c.DocxToolPath == "" {
		c.DocxToolPath = "soffice"
	}
}
