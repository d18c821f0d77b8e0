package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// commitsSpanning returns n commits spread one day apart starting at start.
func commitsSpanning(n int, start time.Time) []schema.CommitRef {
	refs := make([]schema.CommitRef, 0, n)
	for i := range n {
		refs = append(refs, schema.CommitRef{
			Hash: fmt.Sprintf("%040d", i),
			When: start.AddDate(0, 0, i),
		})
	}
	return refs
}

func TestAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2020, 1, 1, 23, 0, 0, 0, time.UTC)
	refs := commitsSpanning(30, start)

	client := &contract.MockGitClient{}
	client.On("ListCommits", ctx, "/clones/a@b", "master").Return(refs, nil)
	for i, ref := range refs {
		email := "alice@example.com"
		if i%2 == 1 {
			email = "bob@example.com"
		}
		client.On("GetCommitAuthorEmails", ctx, "/clones/a@b", ref.Hash).Return([]byte(email+"\n"), nil)
	}

	metrics, err := NewAnalyzer(client).Analyze(ctx, "/clones/a@b", "master", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Contributors)
	assert.Equal(t, 30, metrics.Commits)
	assert.Equal(t, 29, metrics.AgeDays)
	assert.InDelta(t, 0.96667, metrics.AgeMonths, 1e-9)
	client.AssertNumberOfCalls(t, "GetCommitAuthorEmails", 30)
}

func TestAnalyzer_ListingFailureYieldsZeroMetrics(t *testing.T) {
	ctx := context.Background()
	client := &contract.MockGitClient{}
	client.On("ListCommits", ctx, "/clones/x", "nope").Return(nil, errors.New("reference not found"))

	metrics, err := NewAnalyzer(client).Analyze(ctx, "/clones/x", "nope", 0)
	require.NoError(t, err)
	assert.Equal(t, schema.RepositoryMetrics{}, metrics)
	client.AssertNotCalled(t, "GetCommitAuthorEmails", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzer_AuthorQueryFailureContributesNothing(t *testing.T) {
	ctx := context.Background()
	refs := commitsSpanning(3, time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC))

	client := &contract.MockGitClient{}
	client.On("ListCommits", ctx, "/c", "main").Return(refs, nil)
	client.On("GetCommitAuthorEmails", ctx, "/c", refs[0].Hash).Return([]byte("alice@example.com\n"), nil)
	client.On("GetCommitAuthorEmails", ctx, "/c", refs[1].Hash).Return(nil, errors.New("exit status 128"))
	client.On("GetCommitAuthorEmails", ctx, "/c", refs[2].Hash).Return([]byte("garbage\n"), nil)

	metrics, err := NewAnalyzer(client).Analyze(ctx, "/c", "main", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Contributors)
	assert.Equal(t, 3, metrics.Commits)
	assert.Equal(t, 2, metrics.AgeDays)
}

func TestAnalyzer_ExplorationLimit(t *testing.T) {
	ctx := context.Background()
	refs := commitsSpanning(5, time.Date(2019, 3, 1, 12, 0, 0, 0, time.UTC))

	client := &contract.MockGitClient{}
	client.On("ListCommits", ctx, "/c", "master").Return(refs, nil)
	client.On("GetCommitAuthorEmails", ctx, "/c", mock.Anything).Return([]byte("dev@example.com\n"), nil)

	metrics, err := NewAnalyzer(client).Analyze(ctx, "/c", "master", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, metrics.Commits)
	assert.Equal(t, 4, metrics.AgeDays)
	assert.Equal(t, 1, metrics.Contributors)
	client.AssertNumberOfCalls(t, "GetCommitAuthorEmails", 2)
}

func TestAnalyzer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	refs := commitsSpanning(2, time.Date(2019, 3, 1, 12, 0, 0, 0, time.UTC))

	client := &contract.MockGitClient{}
	client.On("ListCommits", ctx, "/c", "master").Return(refs, nil)
	client.On("GetCommitAuthorEmails", ctx, "/c", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	_, err := NewAnalyzer(client).Analyze(ctx, "/c", "master", 0)
	assert.ErrorIs(t, err, context.Canceled)
	client.AssertNumberOfCalls(t, "GetCommitAuthorEmails", 1)
}

func TestAggregate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		records  []schema.CommitRecord
		expected schema.RepositoryMetrics
	}{
		{"no commits", nil, schema.RepositoryMetrics{}},
		{
			"single commit has no age",
			[]schema.CommitRecord{{Hash: "a", Emails: []string{"x@y.z"}, Day: day(2020, 1, 1)}},
			schema.RepositoryMetrics{Contributors: 1, Commits: 1},
		},
		{
			"same day commits",
			[]schema.CommitRecord{
				{Hash: "a", Emails: []string{"x@y.z"}, Day: day(2020, 1, 1)},
				{Hash: "b", Emails: []string{"x@y.z"}, Day: day(2020, 1, 1)},
			},
			schema.RepositoryMetrics{Contributors: 1, Commits: 2},
		},
		{
			"thirty days is one month",
			[]schema.CommitRecord{
				{Hash: "b", Emails: []string{"b@y.z"}, Day: day(2020, 1, 31)},
				{Hash: "a", Emails: []string{"a@y.z", "b@y.z"}, Day: day(2020, 1, 1)},
			},
			schema.RepositoryMetrics{Contributors: 2, Commits: 2, AgeDays: 30, AgeMonths: 1},
		},
		{
			"commits without emails still count",
			[]schema.CommitRecord{
				{Hash: "a", Day: day(2020, 1, 1)},
				{Hash: "b", Day: day(2020, 1, 11)},
			},
			schema.RepositoryMetrics{Commits: 2, AgeDays: 10, AgeMonths: 0.33333},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Aggregate(tt.records))
		})
	}
}
