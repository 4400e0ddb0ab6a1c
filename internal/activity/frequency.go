// Package activity turns a commit sample into a weekly commit frequency histogram.
package activity

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"
	"github.com/ncruces/go-strftime"

	"github.com/naka-gawa/github-repo-analyzer/internal/domain"
)

const (
	// Weeks is the length of the histogram window, ending with the current week.
	Weeks = 52
	// SampleSize caps how many of the most recent commits are counted.
	SampleSize = 200

	weekKeyFormat = "%Y-%U"
)

// Aggregator buckets commits into Sunday-start weeks.
type Aggregator struct {
	now    func() time.Time
	logger *log.Logger
}

// NewAggregator creates a new Aggregator. A nil clock means time.Now.
func NewAggregator(now func() time.Time, logger *log.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now, logger: logger}
}

// WeekStart returns midnight UTC of the Sunday that starts the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekKey formats the week containing t as YYYY-WW, numbering weeks from the
// first Sunday of the year. Keys are derived from the week's Sunday so every day
// of one week shares a key, even across New Year.
func WeekKey(t time.Time) string {
	return strftime.Format(weekKeyFormat, WeekStart(t))
}

// Window returns the keys of the Weeks weeks ending with the week containing now,
// oldest first.
func Window(now time.Time) []string {
	current := WeekStart(now)
	keys := make([]string, Weeks)
	for i := 0; i < Weeks; i++ {
		keys[i] = strftime.Format(weekKeyFormat, current.AddDate(0, 0, -7*(Weeks-1-i)))
	}
	return keys
}

// Aggregate counts the most recent SampleSize commits per week over the trailing
// window. Commits are expected newest first; weeks outside the window are dropped.
func (a *Aggregator) Aggregate(commits []domain.Commit) domain.CommitFrequency {
	if len(commits) > SampleSize {
		commits = commits[:SampleSize]
	}
	counts := make(map[string]int, Weeks)
	for _, c := range commits {
		counts[WeekKey(c.AuthoredAt)]++
	}

	window := Window(a.now())
	freq := make(domain.CommitFrequency, 0, len(window))
	inWindow := 0
	for _, key := range window {
		n := counts[key]
		inWindow += n
		freq = append(freq, domain.WeekCount{Week: key, Commits: n})
	}
	a.logger.Debug("Aggregated commit frequency.", "sampled", len(commits), "in_window", inWindow, "dropped", len(commits)-inWindow)
	return freq
}

// Summarize computes descriptive statistics over a histogram. sampled marks a
// histogram built from a capped commit sample.
func Summarize(freq domain.CommitFrequency, sampled bool) domain.CommitActivity {
	summary := domain.CommitActivity{Sampled: sampled}
	if len(freq) == 0 {
		return summary
	}

	data := make(stats.Float64Data, 0, len(freq))
	for _, wc := range freq {
		data = append(data, float64(wc.Commits))
		summary.Total += wc.Commits
		if wc.Commits > 0 {
			summary.ActiveWeeks++
		}
		// Ties go to the most recent week.
		if wc.Commits > 0 && wc.Commits >= summary.BusiestCount {
			summary.BusiestCount = wc.Commits
			summary.BusiestWeek = wc.Week
		}
	}
	if mean, err := stats.Mean(data); err == nil {
		summary.MeanPerWeek, _ = stats.Round(mean, 2)
	}
	if median, err := stats.Median(data); err == nil {
		summary.MedianPerWeek = median
	}
	return summary
}
