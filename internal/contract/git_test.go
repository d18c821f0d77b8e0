package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/mlforensics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// testCommit describes one commit created by newTestRepo.
type testCommit struct {
	email string
	date  string
}

// newTestRepo creates a repository on branch master with one commit per entry.
func newTestRepo(t *testing.T, commits []testCommit) string {
	t.Helper()
	dir := t.TempDir()
	gitCmd := func(env []string, args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(), env...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	gitCmd(nil, "init", "--quiet")
	gitCmd(nil, "symbolic-ref", "HEAD", "refs/heads/master")
	for i, c := range commits {
		name := filepath.Join(dir, "file.py")
		require.NoError(t, os.WriteFile(name, []byte(strings.Repeat("x", i+1)), 0o644))
		env := []string{
			"GIT_AUTHOR_NAME=Dev", "GIT_AUTHOR_EMAIL=" + c.email, "GIT_AUTHOR_DATE=" + c.date,
			"GIT_COMMITTER_NAME=Dev", "GIT_COMMITTER_EMAIL=" + c.email, "GIT_COMMITTER_DATE=" + c.date,
		}
		gitCmd(env, "add", "file.py")
		gitCmd(env, "commit", "--quiet", "-m", "change")
	}
	return dir
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()

	const expectedRepoPath = "/path/to/repo"
	expectedArgs := []string{"log", "-1", "--oneline"}
	expectedOutput := []byte("a1b2c3d commit message")
	expectedError := errors.New("mocked git error")

	var calledArgs []any
	calledArgs = append(calledArgs, ctx, expectedRepoPath)
	for _, arg := range expectedArgs {
		calledArgs = append(calledArgs, arg)
	}
	mockClient.On("Run", calledArgs...).Return(expectedOutput, expectedError).Once()

	actualOutput, actualError := mockClient.Run(ctx, expectedRepoPath, expectedArgs...)

	assert.Equal(t, expectedOutput, actualOutput, "Run should return the programmed output")
	assert.Equal(t, expectedError, actualError, "Run should return the programmed error")
	mockClient.AssertExpectations(t)
}

// TestMockGitClient_History checks the typed history methods of the mock.
func TestMockGitClient_History(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	refs := []schema.CommitRef{{Hash: "abc", When: time.Unix(0, 0)}}

	mockClient.On("ListCommits", ctx, "/repo", "master").Return(refs, nil).Once()
	mockClient.On("GetCommitAuthorEmails", ctx, "/repo", "abc").Return([]byte("a@b.io\n"), nil).Once()
	mockClient.On("Clone", ctx, "https://x/y/z", "/repo").Return(nil).Once()
	mockClient.On("GetRepoHash", ctx, "/repo").Return("abc", nil).Once()

	got, err := mockClient.ListCommits(ctx, "/repo", "master")
	require.NoError(t, err)
	assert.Equal(t, refs, got)

	out, err := mockClient.GetCommitAuthorEmails(ctx, "/repo", "abc")
	require.NoError(t, err)
	assert.Equal(t, "a@b.io\n", string(out))

	assert.NoError(t, mockClient.Clone(ctx, "https://x/y/z", "/repo"))

	hash, err := mockClient.GetRepoHash(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, "abc", hash)

	mockClient.AssertExpectations(t)
}

// TestNewLocalGitClient tests the constructors for LocalGitClient.
func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client, "NewLocalGitClient should return a non-nil client")
	assert.Equal(t, DefaultGitTimeout, client.GitTimeout)
	assert.Equal(t, DefaultCloneTimeout, client.CloneTimeout)

	custom := NewLocalGitClientWithTimeouts(time.Second, 0)
	assert.Equal(t, time.Second, custom.GitTimeout)
	assert.Equal(t, DefaultCloneTimeout, custom.CloneTimeout)
}

// TestLocalGitClient_Run tests the Run method with failing invocations.
func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := newTestRepo(t, []testCommit{{"a@example.com", "2024-01-01T12:00:00Z"}})

	tests := []struct {
		name        string
		repoPath    string
		args        []string
		expectError bool
	}{
		{"invalid repo path", "/nonexistent/path", []string{"status"}, true},
		{"invalid git command", repo, []string{"invalid-command"}, true},
		{"valid command", repo, []string{"status", "--short"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, tt.repoPath, tt.args...)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestLocalGitClient_History exercises commit listing and author queries on a real repository.
func TestLocalGitClient_History(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := newTestRepo(t, []testCommit{
		{"alice@example.com", "2024-01-01T12:00:00Z"},
		{"bob@example.com", "2024-01-05T12:00:00Z"},
		{"carol@example.com", "2024-02-01T12:00:00Z"},
	})

	refs, err := client.ListCommits(ctx, repo, "master")
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, 2024, refs[0].When.Year())
	assert.Equal(t, time.February, refs[0].When.Month(), "newest commit comes first")

	out, err := client.GetCommitAuthorEmails(ctx, repo, refs[0].Hash)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", strings.TrimSpace(string(out)))

	hash, err := client.GetRepoHash(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, refs[0].Hash, hash)

	_, err = client.ListCommits(ctx, repo, "no-such-branch")
	assert.Error(t, err)

	_, err = client.ListCommits(ctx, t.TempDir(), "master")
	assert.Error(t, err)
}

// TestLocalGitClient_Clone clones a local repository and lists it through the remote-tracking ref.
func TestLocalGitClient_Clone(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	src := newTestRepo(t, []testCommit{{"a@example.com", "2024-01-01T12:00:00Z"}})
	dst := filepath.Join(t.TempDir(), "owner@name")

	require.NoError(t, client.Clone(ctx, src, dst))
	refs, err := client.ListCommits(ctx, dst, "master")
	require.NoError(t, err)
	assert.Len(t, refs, 1)

	err = client.Clone(ctx, filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}
