package audit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/posturasec/postura/internal/snapshot"
)

// Check is one security-category evaluator. Evaluate inspects the snapshot,
// appends findings to the shared log, and returns the category score before
// clamping. Checks must be pure apart from log appends: no external calls, no
// snapshot mutation.
type Check interface {
	Name() string
	Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error)
}

// CheckResult is the outcome of one check for one run. Score is clamped to
// [0,10]; Issues and Recommendations are the log entries the check emitted.
type CheckResult struct {
	Name            string           `json:"name"`
	Score           int              `json:"score"`
	Issues          []Issue          `json:"issues,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Runner evaluates registered checks strictly in order against one snapshot.
// Sequential execution keeps the shared log's emission order deterministic.
type Runner struct {
	Checks []Check
	Logger *zap.SugaredLogger

	// OnCheckDone, when set, is called after each check completes (used for
	// progress display).
	OnCheckDone func(name string, score int)
}

// Run evaluates every check and returns results in registration order. A
// check that fails or panics is recorded as a critical SystemError issue with
// score 0; the run always continues to the next check.
func (r *Runner) Run(snap snapshot.Snapshot, log *IssueLog) []CheckResult {
	results := make([]CheckResult, 0, len(r.Checks))

	for _, check := range r.Checks {
		issueMark, recMark := log.marks()

		score, err := r.evaluate(check, snap, log)
		if err != nil {
			if r.Logger != nil {
				r.Logger.Errorw("check failed", "check", check.Name(), "error", err)
			}
			log.Issue("SystemError", SeverityCritical,
				fmt.Sprintf("Check failed: %s - %v", check.Name(), err), "")
			score = 0
		}
		score = clampScore(score)

		issues, recs := log.since(issueMark, recMark)
		results = append(results, CheckResult{
			Name:            check.Name(),
			Score:           score,
			Issues:          append([]Issue(nil), issues...),
			Recommendations: append([]Recommendation(nil), recs...),
		})

		if r.OnCheckDone != nil {
			r.OnCheckDone(check.Name(), score)
		}
	}

	return results
}

// evaluate runs one check, converting panics into errors so a single faulty
// check can never abort the run.
func (r *Runner) evaluate(check Check, snap snapshot.Snapshot, log *IssueLog) (score int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return check.Evaluate(snap, log)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
