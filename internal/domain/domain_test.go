package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	testCases := []struct {
		input    string
		expected RepoID
		valid    bool
	}{
		{input: "https://github.com/facebook/react", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "http://github.com/facebook/react/", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "https://www.github.com/facebook/react.git", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "  github.com/facebook/react  ", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "facebook/react", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "https://github.com/facebook/react?tab=readme-ov-file", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "https://github.com/facebook/react#readme", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "https://github.com/facebook/react.git?ref=main", expected: RepoID{Owner: "facebook", Name: "react"}, valid: true},
		{input: "https://github.com/facebook/react/tree/main", expected: RepoID{Owner: "facebook", Name: "react/tree/main"}, valid: false},
		{input: "https://gitlab.com/group/project", expected: RepoID{Owner: "https:", Name: "/gitlab.com/group/project"}, valid: false},
		{input: "", expected: RepoID{}, valid: false},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			id := ParseRepoURL(tc.input)
			assert.Equal(t, tc.expected, id)
			assert.Equal(t, tc.valid, id.Valid())
		})
	}
}

func TestRepoID_String(t *testing.T) {
	assert.Equal(t, "octo/demo", RepoID{Owner: "octo", Name: "demo"}.String())
	assert.Equal(t, "octo", RepoID{Owner: "octo"}.String())
}

func TestAnalysisResult_MarshalJSON(t *testing.T) {
	t.Run("error record carries only the message", func(t *testing.T) {
		data, err := json.Marshal(NewErrorResult("Repository not found: octo/missing"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"Repository not found: octo/missing"}`, string(data))
	})

	t.Run("success record is fully populated and keeps week order", func(t *testing.T) {
		result := NewReportResult(&Report{
			Repository: "octo/demo",
			Stats:      Stats{Stars: 1, Forks: 2, Watchers: 3, OpenIssues: 4},
			CommitFrequency: CommitFrequency{
				{Week: "2025-52", Commits: 2},
				{Week: "2026-01", Commits: 0},
			},
		})

		data, err := json.Marshal(result)
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"repository": "octo/demo",
			"stats": {"stars":1,"forks":2,"watchers":3,"open_issues":4,"language":null},
			"commit_frequency": {"2025-52":2,"2026-01":0},
			"commit_activity": {"total":0,"active_weeks":0,"mean_per_week":0,"median_per_week":0,"busiest_count":0,"sampled":false},
			"readme_tags": []
		}`, string(data))
		assert.Contains(t, string(data), `"commit_frequency":{"2025-52":2,"2026-01":0}`)
		assert.False(t, result.Failed())
	})
}

func TestCommitFrequency_Get(t *testing.T) {
	freq := CommitFrequency{{Week: "2026-40", Commits: 3}}

	n, ok := freq.Get("2026-40")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = freq.Get("2026-41")
	assert.False(t, ok)
}
