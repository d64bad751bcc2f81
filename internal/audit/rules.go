package audit

import (
	"regexp"
	"strings"
)

// Rule is a pattern/description/weight triple used by deduction checks.
// Patterns always match case-insensitively, mirroring the heuristics this
// engine preserves.
type Rule struct {
	Pattern     *regexp.Regexp
	Description string
	Weight      int
}

// MustRule compiles expr as a case-insensitive rule and panics on a bad
// expression. Rules are declared statically at check construction time.
func MustRule(expr, description string, weight int) Rule {
	return Rule{
		Pattern:     regexp.MustCompile("(?i)" + expr),
		Description: description,
		Weight:      weight,
	}
}

// Matcher applies a rule set to file contents. When safeMarker is non-empty
// and appears anywhere in the content, every match in that file is
// suppressed: code that reads its secrets from environment configuration is
// not flagged for mentioning them. The suppression is deliberately
// file-global, not proximity-based.
type Matcher struct {
	rules      []Rule
	safeMarker string
}

// NewMatcher builds a matcher over the given static rule set.
func NewMatcher(rules []Rule, safeMarker string) *Matcher {
	return &Matcher{rules: rules, safeMarker: safeMarker}
}

// Match returns the rules whose pattern occurs in content, in rule order.
func (m *Matcher) Match(content string) []Rule {
	if m.safeMarker != "" && strings.Contains(content, m.safeMarker) {
		return nil
	}
	var matched []Rule
	for _, rule := range m.rules {
		if rule.Pattern.MatchString(content) {
			matched = append(matched, rule)
		}
	}
	return matched
}
