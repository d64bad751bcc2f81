package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/posturasec/postura/internal/audit"
	"github.com/posturasec/postura/internal/scorecard"
	"github.com/posturasec/postura/internal/shared/constants"
	"github.com/posturasec/postura/internal/snapshot"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the security posture checks against a project tree",
	Long: `Audit walks the project tree, evaluates the configured security checks,
aggregates their scores into an overall posture, and writes a structured
report. The command exits non-zero when the posture falls below the failure
threshold or, with --fail-on-critical, when any critical issue is found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		formatFlag, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		baselinePath, _ := cmd.Flags().GetString("baseline")
		failOnCritical, _ := cmd.Flags().GetBool("fail-on-critical")
		failThreshold, _ := cmd.Flags().GetFloat64("fail-threshold")
		showProgress, _ := cmd.Flags().GetBool("progress")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		readRate, _ := cmd.Flags().GetInt("read-rate")

		// Config file defaults apply unless the flag was given explicitly.
		if !cmd.Flags().Changed("fail-threshold") {
			failThreshold = cliConfig.Audit.FailThreshold
		}
		if !cmd.Flags().Changed("fail-on-critical") {
			failOnCritical = cliConfig.Audit.FailOnCrit
		}
		if !cmd.Flags().Changed("concurrency") {
			concurrency = cliConfig.Audit.Concurrency
		}
		if !cmd.Flags().Changed("read-rate") {
			readRate = cliConfig.Audit.ReadRate
		}

		format, err := ParseReportFormat(formatFlag)
		if err != nil {
			return err
		}

		profile, err := loadProfile()
		if err != nil {
			return err
		}

		baselinePath, err = resolveBaselinePath(baselinePath)
		if err != nil {
			return err
		}

		report, err := runAudit(cmd.Context(), project, profile, baselinePath, showProgress, concurrency, readRate)
		if err != nil {
			return err
		}

		if err := writeAuditReport(report, format, output); err != nil {
			return err
		}

		var previous *historyEntry
		if cliConfig.Audit.HistoryEnabled {
			if entries, histErr := loadHistory(project, 1); histErr == nil && len(entries) > 0 {
				previous = &entries[len(entries)-1]
			}
		}
		printAuditSummary(report, previous)

		if cliConfig.Audit.HistoryEnabled {
			entry := historyEntry{
				Timestamp:  report.Timestamp,
				Project:    project,
				Percentage: report.Percentage,
				Status:     report.OverallStatus,
				Criticals:  report.CriticalCount(),
			}
			if err := appendHistory(entry); err != nil {
				logger.Warnw("failed to record audit history", "error", err)
			}
			if err := saveLastScorecard(report); err != nil {
				logger.Warnw("failed to save scorecard snapshot", "error", err)
			}
		}

		if failOnCritical {
			if n := report.CriticalCount(); n > 0 {
				return &CriticalIssuesError{Count: n}
			}
		}
		if report.Percentage < failThreshold {
			return &ThresholdError{Percentage: report.Percentage, Threshold: failThreshold}
		}
		return nil
	},
}

// runAudit executes the full pipeline: snapshot, preload, checks, ranking.
func runAudit(ctx context.Context, project string, profile *audit.Profile, baselinePath string, showProgress bool, concurrency, readRate int) (*audit.AggregateReport, error) {
	snap, err := snapshot.NewDirSnapshot(project, profile.Components)
	if err != nil {
		return nil, fmt.Errorf("opening project: %w", err)
	}

	var sourceFiles []string
	for _, comp := range profile.Components {
		sourceFiles = append(sourceFiles, snap.SourceFiles(comp.Dir, comp.SourceExts)...)
	}

	preloader := &snapshot.Preloader{Concurrency: concurrency, ReadRate: readRate}
	if err := preloader.Preload(ctx, snap, sourceFiles); err != nil {
		return nil, err
	}
	logger.Debugw("snapshot ready", "project", snap.Root(), "source_files", len(sourceFiles))

	checks := audit.BuildChecks(profile)
	runner := &audit.Runner{Checks: checks, Logger: logger}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(checks),
			progressbar.OptionSetDescription("auditing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		runner.OnCheckDone = func(name string, score int) {
			_ = bar.Add(1)
		}
	}

	log := &audit.IssueLog{}
	results := runner.Run(snap, log)
	if bar != nil {
		_ = bar.Finish()
	}

	entries := make([]audit.ScoreEntry, 0, len(results))
	for _, res := range results {
		entries = append(entries, audit.ScoreEntry{Name: res.Name, Score: float64(res.Score)})
	}

	var baselineEntries []audit.ScoreEntry
	if baselinePath != "" {
		baseline, err := scorecard.Load(baselinePath)
		if err != nil {
			return nil, err
		}
		baselineEntries = make([]audit.ScoreEntry, 0, len(baseline.Checks))
		for _, check := range baseline.Checks {
			baselineEntries = append(baselineEntries, audit.ScoreEntry{
				Name:   check.Name,
				Score:  check.Score,
				Reason: check.Reason,
			})
		}
	}
	actions := audit.RankActions(entries, baselineEntries, profile.SecurityCritical)

	return audit.Assemble(results, log, actions, time.Now().UTC()), nil
}

// writeAuditReport renders the report in the requested format. Empty output
// path means stdout for text formats and audit-report.<ext> for pdf.
func writeAuditReport(report *audit.AggregateReport, format ReportFormat, output string) error {
	var content []byte
	var err error

	switch format {
	case FormatJSON:
		content, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		content = append(content, '\n')
	case FormatMarkdown:
		content, err = renderMarkdownReport(report)
	case FormatHTML:
		content, err = renderHTMLReport(report)
	case FormatPDF:
		content, err = renderPDFReport(report)
	}
	if err != nil {
		return err
	}

	if output == "" {
		if format == FormatPDF {
			output = "audit-report.pdf"
		} else {
			_, err := os.Stdout.Write(content)
			return err
		}
	}

	if err := os.WriteFile(output, content, constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", output)
	return nil
}

// printAuditSummary writes the one-screen result to stderr so stdout stays
// clean for the report itself.
func printAuditSummary(report *audit.AggregateReport, previous *historyEntry) {
	fmt.Fprintf(os.Stderr, "\nOverall: %d/%d (%.1f%%) %s\n",
		report.OverallScore, report.MaxScore, report.Percentage, colorizeBand(report.OverallStatus))
	for _, res := range report.Results {
		fmt.Fprintf(os.Stderr, "  %-22s %2d/10\n", res.Name, res.Score)
	}
	if previous != nil {
		diff := report.Percentage - previous.Percentage
		fmt.Fprintf(os.Stderr, "Change since %s: %+.1f%%\n",
			previous.Timestamp.Format("2006-01-02 15:04"), diff)
	}
	if n := report.CriticalCount(); n > 0 {
		fmt.Fprintf(os.Stderr, "%s %d critical issue(s) found\n", colorError("!"), n)
	}
}

func init() {
	auditCmd.Flags().StringP("project", "p", ".", "project root to audit")
	auditCmd.Flags().StringP("format", "f", "json", "report format (json, md, html, pdf)")
	auditCmd.Flags().StringP("output", "o", "", "report output file (default stdout)")
	auditCmd.Flags().String("baseline", "", "baseline scorecard for regression ranking (\"last\" uses the previous run)")
	auditCmd.Flags().Bool("fail-on-critical", false, "exit non-zero when any critical issue is found")
	auditCmd.Flags().Float64("fail-threshold", defaultFailThreshold, "minimum passing percentage")
	auditCmd.Flags().Bool("progress", false, "show a progress bar")
	auditCmd.Flags().Int("concurrency", defaultReadConcurrent, "parallel file reads during preload")
	auditCmd.Flags().Int("read-rate", 0, "max file reads per second during preload (0 = unlimited)")
}
