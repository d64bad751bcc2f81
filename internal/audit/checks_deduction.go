package audit

import (
	"fmt"
	"path"

	"github.com/posturasec/postura/internal/shared/constants"
	"github.com/posturasec/postura/internal/snapshot"
)

// Deduction checks start at 10 and subtract a fixed weight per finding.
// Per-file read failures (missing, binary, permission denied) contribute
// zero matches and are never reported as issues themselves.

// FilePermissionsCheck flags sensitive files readable by others.
type FilePermissionsCheck struct {
	Sensitive []string
}

// Name implements Check.
func (c *FilePermissionsCheck) Name() string { return "file_permissions" }

// Evaluate implements Check.
func (c *FilePermissionsCheck) Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error) {
	score := 10
	for _, rel := range c.Sensitive {
		info, err := snap.Stat(rel)
		if err != nil {
			continue // absent files are fine here
		}
		others := info.Mode().Perm() & constants.WorldAccessMask
		if others != 0 {
			score -= 2
			log.Issue("FilePermissions", SeverityWarning,
				fmt.Sprintf("%s is readable by others (permissions: %03o)", rel, info.Mode().Perm()),
				fmt.Sprintf("Run: chmod 600 %s", path.Join(snap.Root(), rel)))
		}
	}
	return score, nil
}

// SecretsCheck scans component sources for hardcoded credential patterns and
// verifies example environment files exist. Reported under the
// "environment_variables" category.
type SecretsCheck struct {
	Components  []snapshot.Component
	Matcher     *Matcher
	EnvExamples []EnvExample
}

// Name implements Check.
func (c *SecretsCheck) Name() string { return "environment_variables" }

// Evaluate implements Check.
func (c *SecretsCheck) Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error) {
	score := 10

	for _, comp := range c.Components {
		for _, file := range snap.SourceFiles(componentSourceDir(comp), comp.SourceExts) {
			content, err := snap.Read(file)
			if err != nil {
				continue // binary or inaccessible files are skipped silently
			}
			for _, rule := range c.Matcher.Match(content) {
				score -= rule.Weight
				log.Issue("HardcodedSecrets", SeverityCritical,
					fmt.Sprintf("%s found in %s", rule.Description, file),
					"Move secrets to environment variables")
			}
		}
	}

	for _, example := range c.EnvExamples {
		if _, err := snap.Stat(example.Path); err != nil {
			score--
			log.Recommend(example.Component,
				fmt.Sprintf("Create %s with example configuration", path.Base(example.Path)))
		}
	}

	return score, nil
}

// LoggingCheck flags source lines that appear to log sensitive values.
type LoggingCheck struct {
	Components []snapshot.Component
	Rules      []Rule
}

// Name implements Check.
func (c *LoggingCheck) Name() string { return "logging_security" }

// Evaluate implements Check.
func (c *LoggingCheck) Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error) {
	score := 10
	for _, comp := range c.Components {
		for _, file := range snap.SourceFiles(componentSourceDir(comp), comp.SourceExts) {
			content, err := snap.Read(file)
			if err != nil {
				continue
			}
			for _, rule := range c.Rules {
				if rule.Pattern.MatchString(content) {
					score -= rule.Weight
					log.Issue("LoggingSecurity", SeverityMedium,
						fmt.Sprintf("%s in %s", rule.Description, file),
						"Remove sensitive data from logs")
				}
			}
		}
	}
	return score, nil
}

// componentSourceDir returns the conventional source directory of a
// component: <dir>/src, or src at the project root.
func componentSourceDir(comp snapshot.Component) string {
	if comp.Dir == "" || comp.Dir == "." {
		return "src"
	}
	return comp.Dir + "/src"
}

// exists reports whether a snapshot path is present.
func exists(snap snapshot.Snapshot, rel string) bool {
	_, err := snap.Stat(rel)
	return err == nil
}
