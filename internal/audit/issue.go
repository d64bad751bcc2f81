// Package audit implements the security-posture check engine: a catalog of
// heuristic checks evaluated against a project snapshot, score aggregation,
// priority ranking, and report assembly.
package audit

// Severity classifies an issue. The set is closed; anything outside it is a
// programming error, not a new category.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityWarning  Severity = "warning"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityWarning:
		return true
	}
	return false
}

// Rank orders severities for display, most urgent first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Issue is a concrete, located security gap. Issues are immutable once
// emitted; duplicates are meaningful (one per offending file).
type Issue struct {
	Component      string   `json:"component"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Recommendation is an advisory suggestion with no score deduction attached.
type Recommendation struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

// IssueLog is the shared, append-only collector that checks emit findings
// into during evaluation. It is not safe for concurrent use; checks run
// sequentially (see Runner).
type IssueLog struct {
	issues          []Issue
	recommendations []Recommendation
}

// Issue appends an issue to the log.
func (l *IssueLog) Issue(component string, severity Severity, message, recommendation string) {
	l.issues = append(l.issues, Issue{
		Component:      component,
		Severity:       severity,
		Message:        message,
		Recommendation: recommendation,
	})
}

// Recommend appends a recommendation to the log.
func (l *IssueLog) Recommend(component, message string) {
	l.recommendations = append(l.recommendations, Recommendation{Component: component, Message: message})
}

// Issues returns all issues in emission order.
func (l *IssueLog) Issues() []Issue { return l.issues }

// Recommendations returns all recommendations in emission order.
func (l *IssueLog) Recommendations() []Recommendation { return l.recommendations }

// marks returns the current log lengths, used by the runner to attribute
// entries to the check that emitted them.
func (l *IssueLog) marks() (int, int) {
	return len(l.issues), len(l.recommendations)
}

// since returns the entries appended after the given marks.
func (l *IssueLog) since(issueMark, recMark int) ([]Issue, []Recommendation) {
	return l.issues[issueMark:], l.recommendations[recMark:]
}
