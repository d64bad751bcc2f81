// Package scorecard compares two OpenSSF-style scorecard result files and
// derives regression analysis and ranked remediation actions.
package scorecard

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/posturasec/postura/internal/audit"
)

// Documentation links a check to its upstream reference.
type Documentation struct {
	Short string `json:"short,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Check is one scorecard check result.
type Check struct {
	Name          string        `json:"name"`
	Score         float64       `json:"score"`
	Reason        string        `json:"reason,omitempty"`
	Documentation Documentation `json:"documentation,omitempty"`
}

// Scorecard is the overall scorecard document.
type Scorecard struct {
	Score  float64 `json:"score"`
	Checks []Check `json:"checks"`
}

// FormatError reports a baseline or current file that cannot be used for
// comparison. It is fatal: regression analysis needs well-formed input.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid scorecard data in %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Load reads and parses a scorecard JSON file.
func Load(path string) (*Scorecard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scorecard file not found: %s: %w", path, err)
	}
	var sc Scorecard
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return &sc, nil
}

// Status labels for per-check analysis.
const (
	StatusImproved  = "improved"
	StatusDeclined  = "declined"
	StatusUnchanged = "unchanged"
	StatusMissing   = "missing"
)

// CheckAnalysis is the per-check comparison between current and baseline.
type CheckAnalysis struct {
	Name           string        `json:"-"`
	CurrentScore   float64       `json:"current_score"`
	BaselineScore  float64       `json:"baseline_score"`
	Diff           float64       `json:"diff"`
	Status         string        `json:"status"`
	CurrentReason  string        `json:"current_reason"`
	BaselineReason string        `json:"baseline_reason"`
	Documentation  Documentation `json:"documentation"`
}

// diffStatus classifies a score delta.
func diffStatus(diff float64) string {
	switch {
	case diff > 0:
		return StatusImproved
	case diff < 0:
		return StatusDeclined
	default:
		return StatusUnchanged
	}
}

// Analyze compares every check: current checks in order, then checks present
// only in the baseline (reported as missing with current score 0).
func Analyze(current, baseline *Scorecard) []CheckAnalysis {
	baselineByName := make(map[string]Check, len(baseline.Checks))
	for _, check := range baseline.Checks {
		baselineByName[check.Name] = check
	}
	seen := make(map[string]bool, len(current.Checks))

	analysis := make([]CheckAnalysis, 0, len(current.Checks))
	for _, check := range current.Checks {
		seen[check.Name] = true
		base := baselineByName[check.Name]
		diff := check.Score - base.Score
		analysis = append(analysis, CheckAnalysis{
			Name:           check.Name,
			CurrentScore:   check.Score,
			BaselineScore:  base.Score,
			Diff:           diff,
			Status:         diffStatus(diff),
			CurrentReason:  check.Reason,
			BaselineReason: base.Reason,
			Documentation:  check.Documentation,
		})
	}

	for _, check := range baseline.Checks {
		if seen[check.Name] {
			continue
		}
		analysis = append(analysis, CheckAnalysis{
			Name:           check.Name,
			CurrentScore:   0,
			BaselineScore:  check.Score,
			Diff:           -check.Score,
			Status:         StatusMissing,
			CurrentReason:  "Check not found in current results",
			BaselineReason: check.Reason,
		})
	}

	return analysis
}

// Actions feeds the comparison through the shared priority ranker.
func Actions(current, baseline *Scorecard, securityCritical []string) []audit.Action {
	currentEntries := make([]audit.ScoreEntry, 0, len(current.Checks))
	for _, check := range current.Checks {
		currentEntries = append(currentEntries, audit.ScoreEntry{
			Name:   check.Name,
			Score:  check.Score,
			Reason: check.Reason,
		})
	}
	baselineEntries := make([]audit.ScoreEntry, 0, len(baseline.Checks))
	for _, check := range baseline.Checks {
		baselineEntries = append(baselineEntries, audit.ScoreEntry{
			Name:   check.Name,
			Score:  check.Score,
			Reason: check.Reason,
		})
	}
	if baselineEntries == nil {
		baselineEntries = []audit.ScoreEntry{}
	}
	return audit.RankActions(currentEntries, baselineEntries, securityCritical)
}
