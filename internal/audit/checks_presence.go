package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/posturasec/postura/internal/snapshot"
)

// Presence checks start at 0 and add a fixed weight for each sub-condition
// that can be verified; gaps emit issues or recommendations instead.

// PresenceCheck evaluates a list of marker conditions against the snapshot.
// Authentication, rate limiting and input validation are all instances of
// this shape with different profile tables.
type PresenceCheck struct {
	CheckName  string
	Conditions []PresenceCondition
	Profile    *Profile
}

// Name implements Check.
func (c *PresenceCheck) Name() string { return c.CheckName }

// Evaluate implements Check.
func (c *PresenceCheck) Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error) {
	score := 0
	for _, cond := range c.Conditions {
		if c.satisfied(snap, cond) {
			score += cond.Weight
			continue
		}
		component := cond.IssueComponent
		if component == "" {
			component = cond.Component
		}
		log.Issue(component, cond.IssueSeverity, cond.IssueMessage, cond.Recommendation)
	}
	return score, nil
}

// satisfied reports whether any probe of the condition holds.
func (c *PresenceCheck) satisfied(snap snapshot.Snapshot, cond PresenceCondition) bool {
	for _, probe := range cond.Probes {
		files := probe.Files
		if len(files) == 0 {
			comp, ok := c.Profile.component(cond.Component)
			if !ok {
				continue
			}
			files = snap.SourceFiles(componentSourceDir(comp), comp.SourceExts)
		}
		for _, file := range files {
			content, err := snap.Read(file)
			if err != nil {
				continue
			}
			if probeMatches(content, probe) {
				return true
			}
		}
	}
	return false
}

// probeMatches tests the OR-of-AND marker groups against one file's content.
func probeMatches(content string, probe MarkerProbe) bool {
	haystack := content
	if probe.Fold {
		haystack = strings.ToLower(content)
	}
	for _, group := range probe.Markers {
		all := true
		for _, marker := range group {
			if probe.Fold {
				marker = strings.ToLower(marker)
			}
			if !strings.Contains(haystack, marker) {
				all = false
				break
			}
		}
		if all && len(group) > 0 {
			return true
		}
	}
	return false
}

// packageManifest is the subset of package.json the dependency check reads.
type packageManifest struct {
	Scripts      map[string]string `json:"scripts"`
	Dependencies map[string]string `json:"dependencies"`
}

// DependencyCheck scores dependency pinning and security tooling: lockfiles,
// npm audit scripts, and hardening dependencies.
type DependencyCheck struct {
	Lockfiles         []LockfileRule
	ManifestPath      string
	ManifestComponent string
	AuditScriptWeight int
	SecurityDeps      []string
	SecurityDepWeight int
}

// Name implements Check.
func (c *DependencyCheck) Name() string { return "dependency_security" }

// Evaluate implements Check. A present but malformed manifest is an
// evaluation error: the runner converts it to a critical SystemError issue.
func (c *DependencyCheck) Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error) {
	score := 0

	for _, lock := range c.Lockfiles {
		if exists(snap, lock.Path) {
			score += lock.Weight
		} else {
			log.Issue(lock.Component, SeverityMedium, lock.IssueMessage, lock.Recommendation)
		}
	}

	content, err := snap.Read(c.ManifestPath)
	if err != nil {
		return score, nil // no manifest: neither points nor findings
	}
	var manifest packageManifest
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		return score, fmt.Errorf("parse %s: %w", c.ManifestPath, err)
	}

	if hasAuditScript(manifest.Scripts) {
		score += c.AuditScriptWeight
	} else {
		log.Recommend(c.ManifestComponent, "Add npm audit scripts to package.json")
	}

	if hasAnyDependency(manifest.Dependencies, c.SecurityDeps) {
		score += c.SecurityDepWeight
	} else {
		log.Recommend(c.ManifestComponent, "Consider adding security dependencies like helmet")
	}

	return score, nil
}

func hasAuditScript(scripts map[string]string) bool {
	for name := range scripts {
		if strings.Contains(name, "audit") {
			return true
		}
	}
	return false
}

func hasAnyDependency(deps map[string]string, wanted []string) bool {
	for _, dep := range wanted {
		if _, ok := deps[dep]; ok {
			return true
		}
	}
	return false
}

// CICheck scores CI/CD hardening: dedicated security workflows and explicit
// token permission blocks.
type CICheck struct {
	WorkflowsDir      string
	SecurityWorkflows []string
	WorkflowWeight    int
	PermissionsWeight int
}

// Name implements Check.
func (c *CICheck) Name() string { return "ci_security" }

// Evaluate implements Check.
func (c *CICheck) Evaluate(snap snapshot.Snapshot, log *IssueLog) (int, error) {
	workflows := snap.SourceFiles(c.WorkflowsDir, []string{".yml", ".yaml"})
	if len(workflows) == 0 && !exists(snap, c.WorkflowsDir) {
		log.Issue("CI/CD", SeverityMedium,
			"No CI/CD workflows found",
			"Set up GitHub Actions workflows for security")
		return 0, nil
	}

	score := 0
	for _, name := range c.SecurityWorkflows {
		if exists(snap, c.WorkflowsDir+"/"+name) {
			score += c.WorkflowWeight
		} else {
			log.Recommend("CI/CD", fmt.Sprintf("Consider adding %s security workflow", name))
		}
	}

	for _, file := range workflows {
		content, err := snap.Read(file)
		if err != nil {
			continue
		}
		if strings.Contains(content, "permissions:") {
			score += c.PermissionsWeight
		}
	}

	if score > 10 {
		score = 10
	}
	return score, nil
}
