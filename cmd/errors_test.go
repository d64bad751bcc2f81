package cmd

import (
	"strings"
	"testing"
)

func TestThresholdErrorMessage(t *testing.T) {
	err := &ThresholdError{Percentage: 58.8, Threshold: 70}
	if !strings.Contains(err.Error(), "58.8%") || !strings.Contains(err.Error(), "70.0%") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestCriticalIssuesErrorSingular(t *testing.T) {
	if got := (&CriticalIssuesError{Count: 1}).Error(); got != "audit found 1 critical issue" {
		t.Errorf("unexpected message: %s", got)
	}
	if got := (&CriticalIssuesError{Count: 3}).Error(); got != "audit found 3 critical issues" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestScoreDeclinedErrorMessage(t *testing.T) {
	err := &ScoreDeclinedError{Current: 6.2, Baseline: 7.5}
	if err.Error() != "score declined from 7.5 to 6.2" {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestLinkIssuesErrorMessage(t *testing.T) {
	err := &LinkIssuesError{Broken: 2, Anchors: 1}
	if !strings.Contains(err.Error(), "3 issues") {
		t.Errorf("unexpected message: %s", err)
	}
}
