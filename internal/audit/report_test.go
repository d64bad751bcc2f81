package audit

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func sampleResults() ([]CheckResult, *IssueLog) {
	log := &IssueLog{}
	log.Issue("HardcodedSecrets", SeverityCritical, "Hardcoded token found in src/main.rs", "Move secrets to environment variables")
	log.Recommend("Bridge", "Create config.example.toml with example configuration")

	return []CheckResult{
		{Name: "file_permissions", Score: 10},
		{Name: "environment_variables", Score: 7, Issues: log.Issues()},
	}, log
}

func TestAssembleReportFields(t *testing.T) {
	results, log := sampleResults()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	report := Assemble(results, log, nil, now)

	if !report.Timestamp.Equal(now) {
		t.Errorf("unexpected timestamp: %v", report.Timestamp)
	}
	if report.OverallScore != 17 || report.MaxScore != 20 {
		t.Errorf("unexpected totals: %d/%d", report.OverallScore, report.MaxScore)
	}
	if report.Percentage != 85 {
		t.Errorf("expected 85%%, got %v", report.Percentage)
	}
	if report.OverallStatus != BandGood {
		t.Errorf("expected good, got %s", report.OverallStatus)
	}
	if report.Scores["environment_variables"] != 7 {
		t.Errorf("unexpected scores map: %+v", report.Scores)
	}
	if len(report.Issues) != 1 || len(report.Recommendations) != 1 {
		t.Errorf("log entries not carried over: %d issues, %d recs", len(report.Issues), len(report.Recommendations))
	}
}

func TestReportJSONKeys(t *testing.T) {
	results, log := sampleResults()
	report := Assemble(results, log, []Action{{Check: "x", Priority: "high", Action: ActionRestoreCheck}}, time.Now().UTC())

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{
		"timestamp", "overall_status", "scores", "issues",
		"recommendations", "overall_score", "max_score", "percentage",
		"priority_actions",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing serialized key %q", key)
		}
	}
	if _, ok := decoded["Results"]; ok {
		t.Error("per-check results must not serialize at the top level")
	}
}

func TestReportOmitsEmptyActions(t *testing.T) {
	results, log := sampleResults()
	report := Assemble(results, log, nil, time.Now().UTC())

	data, _ := json.Marshal(report)
	var decoded map[string]any
	_ = json.Unmarshal(data, &decoded)
	if _, ok := decoded["priority_actions"]; ok {
		t.Error("priority_actions should be omitted when empty")
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	results, log := sampleResults()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	a := Assemble(results, log, nil, now)
	b := Assemble(results, log, nil, now)
	if !reflect.DeepEqual(a, b) {
		t.Error("assembling the same inputs twice must produce identical reports")
	}
}

func TestCriticalCount(t *testing.T) {
	log := &IssueLog{}
	log.Issue("A", SeverityCritical, "one", "")
	log.Issue("B", SeverityMedium, "two", "")
	log.Issue("C", SeverityCritical, "three", "")

	report := Assemble(nil, log, nil, time.Now().UTC())
	if got := report.CriticalCount(); got != 2 {
		t.Errorf("expected 2 criticals, got %d", got)
	}
}

func TestDetailedResultsSelection(t *testing.T) {
	results := []CheckResult{
		{Name: "healthy", Score: 10},
		{Name: "weak", Score: 4},
		{Name: "regressed", Score: 8},
	}
	actions := []Action{
		{Check: "regressed", Priority: "medium", Action: ActionInvestigateDecline},
	}
	report := Assemble(results, &IssueLog{}, actions, time.Now().UTC())

	detailed := report.DetailedResults()
	if len(detailed) != 2 {
		t.Fatalf("expected 2 detailed checks, got %d", len(detailed))
	}
	if detailed[0].Name != "weak" || detailed[1].Name != "regressed" {
		t.Errorf("unexpected selection: %+v", detailed)
	}
}
