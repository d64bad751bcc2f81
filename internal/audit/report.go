package audit

import (
	"time"
)

// AggregateReport is the final, immutable report value of one audit run. The
// JSON field names are a stable contract consumed by the compare tool and by
// external automation.
type AggregateReport struct {
	Timestamp       time.Time        `json:"timestamp"`
	OverallStatus   Band             `json:"overall_status"`
	Scores          map[string]int   `json:"scores"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	OverallScore    int              `json:"overall_score"`
	MaxScore        int              `json:"max_score"`
	Percentage      float64          `json:"percentage"`
	Actions         []Action         `json:"priority_actions,omitempty"`

	// Results carries per-check detail in registration order for rendering;
	// the serialized contract exposes the same scores under Scores.
	Results []CheckResult `json:"-"`
}

// Assemble composes the aggregate report from check results, the shared log,
// and ranked actions. Pure composition: no I/O happens here.
func Assemble(results []CheckResult, log *IssueLog, actions []Action, now time.Time) *AggregateReport {
	summary := Aggregate(results)

	scores := make(map[string]int, len(results))
	for _, r := range results {
		scores[r.Name] = r.Score
	}

	return &AggregateReport{
		Timestamp:       now,
		OverallStatus:   summary.Band,
		Scores:          scores,
		Issues:          append([]Issue(nil), log.Issues()...),
		Recommendations: append([]Recommendation(nil), log.Recommendations()...),
		OverallScore:    summary.Total,
		MaxScore:        summary.Max,
		Percentage:      summary.Percentage,
		Actions:         actions,
		Results:         append([]CheckResult(nil), results...),
	}
}

// CriticalCount returns the number of critical issues in the report.
func (r *AggregateReport) CriticalCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			count++
		}
	}
	return count
}

// Entries converts the per-check results to ranker input, in registration
// order.
func (r *AggregateReport) Entries() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(r.Results))
	for _, res := range r.Results {
		entries = append(entries, ScoreEntry{Name: res.Name, Score: float64(res.Score)})
	}
	return entries
}

// DetailedResults returns the checks that warrant a detailed findings
// section: score below the fair threshold, or regressed per the actions.
func (r *AggregateReport) DetailedResults() []CheckResult {
	regressed := make(map[string]bool)
	for _, action := range r.Actions {
		if action.Action == ActionInvestigateDecline {
			regressed[action.Check] = true
		}
	}

	var detailed []CheckResult
	for _, res := range r.Results {
		if res.Score < improveThreshold || regressed[res.Name] {
			detailed = append(detailed, res)
		}
	}
	return detailed
}
