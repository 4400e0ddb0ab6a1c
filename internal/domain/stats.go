// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Stats is the snapshot of repository counters shown on the dashboard cards.
type Stats struct {
	Stars      int     `json:"stars"`
	Forks      int     `json:"forks"`
	Watchers   int     `json:"watchers"`
	OpenIssues int     `json:"open_issues"`
	Language   *string `json:"language"`
}

// StatsFromRepository copies the counters out of a repository snapshot.
func StatsFromRepository(repo *Repository) Stats {
	return Stats{
		Stars:      repo.Stars,
		Forks:      repo.Forks,
		Watchers:   repo.Watchers,
		OpenIssues: repo.OpenIssues,
		Language:   repo.Language,
	}
}

// WeekCount is a single bucket of the commit frequency histogram.
type WeekCount struct {
	Week    string
	Commits int
}

// CommitFrequency is an ordered mapping from week-key (YYYY-WW) to commit count.
// Buckets are kept oldest first.
type CommitFrequency []WeekCount

// Get returns the count for week and whether the week is part of the mapping.
func (f CommitFrequency) Get(week string) (int, bool) {
	for _, wc := range f {
		if wc.Week == week {
			return wc.Commits, true
		}
	}
	return 0, false
}

// Total sums the commits over every bucket.
func (f CommitFrequency) Total() int {
	total := 0
	for _, wc := range f {
		total += wc.Commits
	}
	return total
}

// MarshalJSON encodes the mapping as a JSON object, keeping key order.
func (f CommitFrequency) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, wc := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(wc.Week)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(wc.Commits))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CommitActivity summarises a commit frequency histogram.
type CommitActivity struct {
	Total         int     `json:"total"`
	ActiveWeeks   int     `json:"active_weeks"`
	MeanPerWeek   float64 `json:"mean_per_week"`
	MedianPerWeek float64 `json:"median_per_week"`
	BusiestWeek   string  `json:"busiest_week,omitempty"`
	BusiestCount  int     `json:"busiest_count"`
	// Sampled is set when the commit sample hit its cap, so busy weeks may be undercounted.
	Sampled bool `json:"sampled"`
}

// Report is the populated half of an AnalysisResult.
type Report struct {
	Repository      string          `json:"repository"`
	Stats           Stats           `json:"stats"`
	CommitFrequency CommitFrequency `json:"commit_frequency"`
	CommitActivity  CommitActivity  `json:"commit_activity"`
	ReadmeTags      []string        `json:"readme_tags"`
}

// AnalysisResult is either an error record or a fully populated report, never both.
type AnalysisResult struct {
	*Report
	Error string `json:"error,omitempty"`
}

// NewErrorResult builds an error record.
func NewErrorResult(message string) *AnalysisResult {
	return &AnalysisResult{Error: message}
}

// NewReportResult builds a success record.
func NewReportResult(report *Report) *AnalysisResult {
	if report.ReadmeTags == nil {
		report.ReadmeTags = []string{}
	}
	return &AnalysisResult{Report: report}
}

// Failed reports whether the result is an error record.
func (r *AnalysisResult) Failed() bool {
	return r.Report == nil
}
