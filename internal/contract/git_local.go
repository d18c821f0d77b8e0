package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/huangsam/mlforensics/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary for transport and reading history with go-git.
type LocalGitClient struct {
	GitTimeout   time.Duration // Bound on every short git invocation
	CloneTimeout time.Duration // Bound on a single clone
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client with default timeouts.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{
		GitTimeout:   DefaultGitTimeout,
		CloneTimeout: DefaultCloneTimeout,
	}
}

// NewLocalGitClientWithTimeouts creates a local Git client with explicit timeouts.
// Non-positive values fall back to the defaults.
func NewLocalGitClientWithTimeouts(gitTimeout, cloneTimeout time.Duration) *LocalGitClient {
	c := NewLocalGitClient()
	if gitTimeout > 0 {
		c.GitTimeout = gitTimeout
	}
	if cloneTimeout > 0 {
		c.CloneTimeout = cloneTimeout
	}
	return c
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, c.GitTimeout)
	defer cancel()

	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	cmd.Env = gitEnv()
	out, err := cmd.Output()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("git command timed out in %q: %w", repoPath, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, url string, dir string) error {
	ctx, cancel := withTimeout(ctx, c.CloneTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", url, dir)
	cmd.Env = gitEnv()
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return fmt.Errorf("clone of %s timed out after %s: %w", url, c.CloneTimeout, ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("clone of %s failed: %s: %w", url, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListCommits implements the GitClient interface.
// The branch is resolved locally first and then as a remote-tracking ref.
func (c *LocalGitClient) ListCommits(ctx context.Context, repoPath string, branch string) ([]schema.CommitRef, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", repoPath, err)
	}

	hash, err := resolveBranch(repo, branch)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{From: *hash})
	if err != nil {
		return nil, fmt.Errorf("failed to read log of %q in %q: %w", branch, repoPath, err)
	}
	defer iter.Close()

	var refs []schema.CommitRef
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		refs = append(refs, schema.CommitRef{Hash: commit.Hash.String(), When: commit.Committer.When})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits of %q: %w", branch, err)
	}
	return refs, nil
}

// GetCommitAuthorEmails implements the GitClient interface.
func (c *LocalGitClient) GetCommitAuthorEmails(ctx context.Context, repoPath string, hash string) ([]byte, error) {
	return c.Run(ctx, repoPath, "log", "--format=%ae", hash+"^!")
}

// resolveBranch finds the commit a branch name points at.
func resolveBranch(repo *git.Repository, branch string) (*plumbing.Hash, error) {
	candidates := []string{branch, "refs/remotes/origin/" + branch}
	var lastErr error
	for _, rev := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(rev))
		if err == nil {
			return hash, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("branch %q not found: %w", branch, lastErr)
}

// withTimeout bounds ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// gitEnv disables interactive credential prompts so private or missing
// repositories fail fast instead of hanging.
func gitEnv() []string {
	return append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
}
