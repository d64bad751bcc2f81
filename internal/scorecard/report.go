package scorecard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/posturasec/postura/internal/audit"
)

// Comparison bundles everything derived from one current/baseline pair.
type Comparison struct {
	Current  *Scorecard
	Baseline *Scorecard
	Analysis []CheckAnalysis
	Actions  []audit.Action
}

// Compare runs the full analysis pipeline.
func Compare(current, baseline *Scorecard, securityCritical []string) *Comparison {
	return &Comparison{
		Current:  current,
		Baseline: baseline,
		Analysis: Analyze(current, baseline),
		Actions:  Actions(current, baseline, securityCritical),
	}
}

// OverallDiff returns the overall score delta and its status label.
func (c *Comparison) OverallDiff() (float64, string) {
	diff := c.Current.Score - c.Baseline.Score
	return diff, diffStatus(diff)
}

// Declined reports whether the overall score dropped below the baseline.
func (c *Comparison) Declined() bool {
	return c.Current.Score < c.Baseline.Score
}

func formatChange(diff float64, status string) string {
	switch status {
	case StatusImproved:
		return fmt.Sprintf("📈 +%.1f", diff)
	case StatusDeclined:
		return fmt.Sprintf("📉 %.1f", diff)
	default:
		return fmt.Sprintf("➡️ %.1f", diff)
	}
}

var statusEmoji = map[string]string{
	StatusImproved:  "📈",
	StatusDeclined:  "📉",
	StatusUnchanged: "➡️",
	StatusMissing:   "❌",
}

func titleAction(action string) string {
	words := strings.Split(action, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// sortedAnalysis returns the analysis ordered by check name for rendering.
func (c *Comparison) sortedAnalysis() []CheckAnalysis {
	sorted := append([]CheckAnalysis(nil), c.Analysis...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// MarkdownReport renders the full comparison report.
func (c *Comparison) MarkdownReport(now time.Time) string {
	diff, status := c.OverallDiff()

	var b strings.Builder
	fmt.Fprintf(&b, "# 🏆 OpenSSF Scorecard Comparison Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString("## 📊 Overall Score Comparison\n\n")
	b.WriteString("| Metric | Current | Baseline | Change |\n")
	b.WriteString("|--------|---------|----------|--------|\n")
	fmt.Fprintf(&b, "| **Overall Score** | %.1f/10 | %.1f/10 | %s |\n\n",
		c.Current.Score, c.Baseline.Score, formatChange(diff, status))

	switch status {
	case StatusImproved:
		b.WriteString("### 🎉 Assessment: IMPROVED\n\nThe project's security posture has improved since the baseline.\n\n")
	case StatusDeclined:
		b.WriteString("### ⚠️ Assessment: DECLINED\n\nThe project's security posture has declined since the baseline. Immediate attention required.\n\n")
	default:
		b.WriteString("### ➡️ Assessment: UNCHANGED\n\nThe project's security posture remains stable.\n\n")
	}

	b.WriteString("## 🔍 Individual Check Analysis\n\n")
	b.WriteString("| Check | Current | Baseline | Change | Status |\n")
	b.WriteString("|-------|---------|----------|--------|---------|\n")
	for _, a := range c.sortedAnalysis() {
		emoji, ok := statusEmoji[a.Status]
		if !ok {
			emoji = "❓"
		}
		fmt.Fprintf(&b, "| %s | %.1f | %.1f | %s | %s |\n",
			a.Name, a.CurrentScore, a.BaselineScore, formatChange(a.Diff, a.Status), emoji)
	}

	if len(c.Actions) > 0 {
		b.WriteString("\n## 🎯 Priority Actions\n\n")
		writeActions := func(heading string, priority string) {
			wrote := false
			for _, action := range c.Actions {
				if action.Priority != priority {
					continue
				}
				if !wrote {
					b.WriteString(heading)
					wrote = true
				}
				fmt.Fprintf(&b, "- **%s** (Score: %.1f, Change: %+.1f)\n",
					action.Check, action.CurrentScore, action.Diff)
				fmt.Fprintf(&b, "  - Action: %s\n", titleAction(action.Action))
				fmt.Fprintf(&b, "  - Reason: %s\n\n", action.Reason)
			}
		}
		writeActions("### 🚨 High Priority\n\n", "high")
		writeActions("### ⚠️ Medium Priority\n\n", "medium")
	} else {
		b.WriteString("\n## ✅ No Priority Actions Required\n\nAll security checks are performing well.\n\n")
	}

	b.WriteString("## 📋 Detailed Check Information\n\n")
	for _, a := range c.sortedAnalysis() {
		if a.Status != StatusDeclined && a.Status != StatusMissing && a.CurrentScore >= 7 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", a.Name)
		fmt.Fprintf(&b, "- **Current Score**: %.1f/10\n", a.CurrentScore)
		fmt.Fprintf(&b, "- **Baseline Score**: %.1f/10\n", a.BaselineScore)
		fmt.Fprintf(&b, "- **Change**: %s\n", formatChange(a.Diff, a.Status))
		fmt.Fprintf(&b, "- **Current Reason**: %s\n", a.CurrentReason)
		if a.BaselineReason != "" && a.BaselineReason != a.CurrentReason {
			fmt.Fprintf(&b, "- **Baseline Reason**: %s\n", a.BaselineReason)
		}
		if a.Documentation.URL != "" {
			short := a.Documentation.Short
			if short == "" {
				short = "Learn more"
			}
			fmt.Fprintf(&b, "- **Documentation**: [%s](%s)\n", short, a.Documentation.URL)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 💡 Recommendations\n\n")
	if diff < -0.5 {
		b.WriteString("### 🚨 Immediate Actions\n")
		b.WriteString("- Review recent changes that may have affected security posture\n")
		b.WriteString("- Check for new vulnerabilities in dependencies\n")
		b.WriteString("- Verify branch protection rules are still in place\n")
		b.WriteString("- Review access controls and permissions\n\n")
	}
	b.WriteString("### 🔄 Regular Maintenance\n")
	b.WriteString("- Run scorecard analysis weekly\n")
	b.WriteString("- Update dependencies regularly\n")
	b.WriteString("- Review and update security policies\n")
	b.WriteString("- Monitor for new security advisories\n\n")
	b.WriteString("### 📈 Continuous Improvement\n")
	b.WriteString("- Implement missing security checks\n")
	b.WriteString("- Enhance documentation and security policies\n")
	b.WriteString("- Consider additional security tools and practices\n")
	b.WriteString("- Regular security training for team members\n\n")
	b.WriteString("---\n\n")
	b.WriteString("*This report was generated by the postura scorecard comparison tool*\n")

	return b.String()
}

// Summary is the machine-readable comparison output.
type Summary struct {
	Timestamp string                   `json:"timestamp"`
	Overall   OverallSummary           `json:"overall"`
	Checks    map[string]CheckAnalysis `json:"checks"`
	Actions   []audit.Action           `json:"priority_actions"`
	Counts    SummaryCounts            `json:"summary"`
}

// OverallSummary is the top-level score comparison.
type OverallSummary struct {
	CurrentScore  float64 `json:"current_score"`
	BaselineScore float64 `json:"baseline_score"`
	Diff          float64 `json:"diff"`
	Status        string  `json:"status"`
}

// SummaryCounts tallies the analysis by status and the actions by priority.
type SummaryCounts struct {
	ImprovedChecks        int `json:"improved_checks"`
	DeclinedChecks        int `json:"declined_checks"`
	UnchangedChecks       int `json:"unchanged_checks"`
	MissingChecks         int `json:"missing_checks"`
	HighPriorityActions   int `json:"high_priority_actions"`
	MediumPriorityActions int `json:"medium_priority_actions"`
}

// JSONSummary builds the programmatic summary of the comparison.
func (c *Comparison) JSONSummary(now time.Time) *Summary {
	diff, status := c.OverallDiff()

	checks := make(map[string]CheckAnalysis, len(c.Analysis))
	var counts SummaryCounts
	for _, a := range c.Analysis {
		checks[a.Name] = a
		switch a.Status {
		case StatusImproved:
			counts.ImprovedChecks++
		case StatusDeclined:
			counts.DeclinedChecks++
		case StatusUnchanged:
			counts.UnchangedChecks++
		case StatusMissing:
			counts.MissingChecks++
		}
	}
	for _, action := range c.Actions {
		switch action.Priority {
		case "high":
			counts.HighPriorityActions++
		case "medium":
			counts.MediumPriorityActions++
		}
	}

	actions := c.Actions
	if actions == nil {
		actions = []audit.Action{}
	}

	return &Summary{
		Timestamp: now.Format(time.RFC3339),
		Overall: OverallSummary{
			CurrentScore:  c.Current.Score,
			BaselineScore: c.Baseline.Score,
			Diff:          diff,
			Status:        status,
		},
		Checks:  checks,
		Actions: actions,
		Counts:  counts,
	}
}
