package cmd

import "fmt"

// ThresholdError indicates the overall score fell below the failure
// threshold. The report is still written before it is returned.
type ThresholdError struct {
	Percentage float64
	Threshold  float64
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("security posture %.1f%% is below the %.1f%% threshold", e.Percentage, e.Threshold)
}

// CriticalIssuesError indicates the run found critical issues while
// --fail-on-critical was set.
type CriticalIssuesError struct {
	Count int
}

func (e *CriticalIssuesError) Error() string {
	if e.Count == 1 {
		return "audit found 1 critical issue"
	}
	return fmt.Sprintf("audit found %d critical issues", e.Count)
}

// ScoreDeclinedError indicates the overall scorecard score dropped below
// the baseline while --exit-on-decline was set.
type ScoreDeclinedError struct {
	Current  float64
	Baseline float64
}

func (e *ScoreDeclinedError) Error() string {
	return fmt.Sprintf("score declined from %.1f to %.1f", e.Baseline, e.Current)
}

// LinkIssuesError indicates documentation link validation found problems.
type LinkIssuesError struct {
	Broken  int
	Anchors int
}

func (e *LinkIssuesError) Error() string {
	return fmt.Sprintf("found %d issues: %d broken links, %d anchor issues", e.Broken+e.Anchors, e.Broken, e.Anchors)
}

// ProfileError signals an unusable profile section in the config file.
type ProfileError struct {
	Err error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("invalid profile configuration: %v", e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }
