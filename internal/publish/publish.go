package publish

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/tovald/pdfsmith/internal/errors"
)

// Publisher commits and pushes produced artifacts to a remote
// repository. Push failures are warning-level for callers: the primary
// operation already succeeded by the time a push is attempted.
type Publisher interface {
	Push(ctx context.Context, message string) error
}

// GitPublisher pushes the working tree to a GitHub remote using a
// token-authenticated URL.
type GitPublisher struct {
	// Token and Repo ("owner/repo") authenticate the push. When either
	// is empty, Push is a no-op with a logged notice.
	Token string
	Repo  string

	// Branch is the branch pushed to (e.g. "main").
	Branch string

	// Dir is the working tree the git commands run in. Empty means the
	// process working directory.
	Dir string
}

// NewGitPublisher creates a GitPublisher.
func NewGitPublisher(token, repo, branch string) *GitPublisher {
	return &GitPublisher{
		Token:  token,
		Repo:   repo,
		Branch: branch,
	}
}

// Push stages all pending changes, commits with message, and pushes.
// The first failing step aborts the rest.
func (p *GitPublisher) Push(ctx context.Context, message string) error {
	if p.Token == "" || p.Repo == "" {
		log.Println("GITHUB_TOKEN or GITHUB_REPOSITORY not set, skipping push")
		return nil
	}

	remoteURL := fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", p.Token, p.Repo)

	steps := [][]string{
		{"remote", "set-url", "origin", remoteURL},
		{"add", "."},
		{"commit", "-m", message},
		{"push", "origin", p.Branch},
	}

	for _, args := range steps {
		if err := p.git(ctx, args...); err != nil {
			return errors.NewPublish(err)
		}
	}
	return nil
}

// git runs one git command, folding stderr into the returned error.
// The token never appears in error text: the remote URL is redacted.
func (p *GitPublisher) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if p.Token != "" {
			detail = strings.ReplaceAll(detail, p.Token, "***")
		}
		if detail == "" {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
		return fmt.Errorf("git %s: %w: %s", args[0], err, detail)
	}
	return nil
}
