package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load(tmp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PDFDir != filepath.Join(tmp, "pdfs") {
		t.Errorf("PDFDir = %q", cfg.PDFDir)
	}
	if cfg.RetainUploads {
		t.Error("expected RetainUploads to default to false")
	}
	if cfg.Branch != "main" {
		t.Errorf("Branch = %q, want main", cfg.Branch)
	}
}

func TestLoadFile(t *testing.T) {
	tmp := t.TempDir()
	content := `{"retain_uploads": true, "allowed_extensions": ["MD", ".txt"], "branch": "gh-pages"}`
	if err := os.WriteFile(filepath.Join(tmp, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.RetainUploads {
		t.Error("expected RetainUploads true")
	}
	if cfg.Branch != "gh-pages" {
		t.Errorf("Branch = %q", cfg.Branch)
	}
	allowed := cfg.Allowed()
	if len(allowed) != 2 || allowed[0] != ".md" || allowed[1] != ".txt" {
		t.Errorf("Allowed() = %v, want [.md .txt]", allowed)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "config.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestAllowedVariants(t *testing.T) {
	cfg := &Config{}
	got := cfg.Allowed()
	if len(got) != 2 || got[0] != ".pdf" {
		t.Errorf("direct variant Allowed() = %v", got)
	}

	cfg.RetainUploads = true
	got = cfg.Allowed()
	if len(got) != 4 || got[0] != ".md" {
		t.Errorf("retained variant Allowed() = %v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_REPOSITORY", "acme/docs")
	t.Setenv("PDFSMITH_REPO_NAME", "docs-repo")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHubToken != "tok" || cfg.GitHubRepo != "acme/docs" {
		t.Errorf("github env not applied: %q %q", cfg.GitHubToken, cfg.GitHubRepo)
	}
	if cfg.RepoName != "docs-repo" {
		t.Errorf("RepoName = %q, want docs-repo", cfg.RepoName)
	}
}

func TestEnsureDirs(t *testing.T) {
	tmp := t.TempDir()
	cfg := DefaultConfig(tmp)
	cfg.RetainUploads = true
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{cfg.PDFDir, cfg.UploadDir} {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
}
