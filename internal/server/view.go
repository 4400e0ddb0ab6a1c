package server

import (
	"html/template"

	"github.com/dustin/go-humanize"

	"github.com/naka-gawa/github-repo-analyzer/internal/domain"
)

var templateFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
}

type statCard struct {
	Header string
	Value  string
}

type commitBar struct {
	Week    string
	Commits int
	// Height is the bar height as a percentage of the busiest week.
	Height int
}

type dashboardView struct {
	URL        string
	Error      string
	Repository string
	Cards      []statCard
	Tags       []string
	Bars       []commitBar
	Activity   *domain.CommitActivity
}

func newDashboardView(repoURL string, result *domain.AnalysisResult) dashboardView {
	view := dashboardView{URL: repoURL}
	if result.Failed() {
		view.Error = result.Error
		return view
	}

	language := "N/A"
	if result.Stats.Language != nil && *result.Stats.Language != "" {
		language = *result.Stats.Language
	}
	view.Repository = result.Repository
	view.Cards = []statCard{
		{Header: "Language", Value: language},
		{Header: "Stars ★", Value: humanize.Comma(int64(result.Stats.Stars))},
		{Header: "Forks", Value: humanize.Comma(int64(result.Stats.Forks))},
		{Header: "Watchers", Value: humanize.Comma(int64(result.Stats.Watchers))},
		{Header: "Open Issues !", Value: humanize.Comma(int64(result.Stats.OpenIssues))},
	}
	view.Tags = result.ReadmeTags
	activity := result.CommitActivity
	view.Activity = &activity

	peak := 0
	for _, wc := range result.CommitFrequency {
		if wc.Commits > peak {
			peak = wc.Commits
		}
	}
	view.Bars = make([]commitBar, 0, len(result.CommitFrequency))
	for _, wc := range result.CommitFrequency {
		bar := commitBar{Week: wc.Week, Commits: wc.Commits}
		if peak > 0 {
			bar.Height = wc.Commits * 100 / peak
		}
		view.Bars = append(view.Bars, bar)
	}
	return view
}
