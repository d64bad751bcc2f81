package audit

import "sort"

// Action names used in ranked remediation output.
const (
	ActionInvestigateDecline = "investigate_decline"
	ActionRestoreCheck       = "restore_check"
	ActionImproveSecurity    = "improve_security"
)

// improveThreshold is the absolute score below which a security-critical
// check warrants attention even without a regression.
const improveThreshold = 7

// ScoreEntry is one named score fed to the ranker, either from the current
// run or from a baseline report.
type ScoreEntry struct {
	Name   string
	Score  float64
	Reason string
}

// Action is one ranked remediation item.
type Action struct {
	Check         string  `json:"check"`
	Priority      string  `json:"priority"`
	Action        string  `json:"action"`
	CurrentScore  float64 `json:"current_score"`
	BaselineScore float64 `json:"baseline_score"`
	Diff          float64 `json:"diff"`
	Reason        string  `json:"reason,omitempty"`
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// RankActions derives the ordered remediation list. With a baseline, checks
// that regressed become investigate_decline actions (high priority when
// security-critical) and checks missing from the current run become high
// priority restore_check actions. Independently of regression, a
// security-critical check scoring below 7 becomes a medium improve_security
// action. Without a baseline only the absolute threshold applies.
//
// The result is a total order: sorted by (priority, diff) with ties kept in
// the input (registration) order.
func RankActions(current, baseline []ScoreEntry, securityCritical []string) []Action {
	critical := make(map[string]bool, len(securityCritical))
	for _, name := range securityCritical {
		critical[name] = true
	}

	baselineByName := make(map[string]ScoreEntry, len(baseline))
	for _, entry := range baseline {
		baselineByName[entry.Name] = entry
	}
	currentNames := make(map[string]bool, len(current))

	var actions []Action
	for _, entry := range current {
		currentNames[entry.Name] = true

		base, hasBase := baselineByName[entry.Name]
		switch {
		case hasBase && entry.Score < base.Score:
			priority := "medium"
			if critical[entry.Name] {
				priority = "high"
			}
			actions = append(actions, Action{
				Check:         entry.Name,
				Priority:      priority,
				Action:        ActionInvestigateDecline,
				CurrentScore:  entry.Score,
				BaselineScore: base.Score,
				Diff:          entry.Score - base.Score,
				Reason:        entry.Reason,
			})
		case entry.Score < improveThreshold && critical[entry.Name]:
			// Absolute mode (no baseline at all) reports a zero diff; with a
			// baseline, a check absent from it counts as baseline 0.
			baseScore := entry.Score
			if hasBase {
				baseScore = base.Score
			} else if baseline != nil {
				baseScore = 0
			}
			actions = append(actions, Action{
				Check:         entry.Name,
				Priority:      "medium",
				Action:        ActionImproveSecurity,
				CurrentScore:  entry.Score,
				BaselineScore: baseScore,
				Diff:          entry.Score - baseScore,
				Reason:        entry.Reason,
			})
		}
	}

	for _, entry := range baseline {
		if currentNames[entry.Name] {
			continue
		}
		actions = append(actions, Action{
			Check:         entry.Name,
			Priority:      "high",
			Action:        ActionRestoreCheck,
			CurrentScore:  0,
			BaselineScore: entry.Score,
			Diff:          -entry.Score,
			Reason:        "Check not found in current results",
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if priorityRank[actions[i].Priority] != priorityRank[actions[j].Priority] {
			return priorityRank[actions[i].Priority] < priorityRank[actions[j].Priority]
		}
		return actions[i].Diff < actions[j].Diff
	})

	return actions
}
