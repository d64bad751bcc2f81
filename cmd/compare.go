package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/posturasec/postura/internal/scorecard"
	"github.com/posturasec/postura/internal/shared/constants"
)

var compareCmd = &cobra.Command{
	Use:   "compare <current> <baseline>",
	Short: "Compare two scorecard result files",
	Long: `Compare loads a current and a baseline scorecard JSON file, analyzes
per-check changes, ranks remediation actions, and renders the comparison as
markdown, JSON, or both. Passing "last" as the baseline uses the scorecard
snapshot saved by the most recent audit run.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFormat, _ := cmd.Flags().GetString("output-format")
		outputFile, _ := cmd.Flags().GetString("output-file")
		exitOnDecline, _ := cmd.Flags().GetBool("exit-on-decline")

		if outputFormat != "markdown" && outputFormat != "json" && outputFormat != "both" {
			return fmt.Errorf("invalid output format: %s (must be markdown, json, or both)", outputFormat)
		}

		baselineArg, err := resolveBaselinePath(args[1])
		if err != nil {
			return err
		}

		current, err := scorecard.Load(args[0])
		if err != nil {
			return err
		}
		baseline, err := scorecard.Load(baselineArg)
		if err != nil {
			return err
		}

		profile, err := loadProfile()
		if err != nil {
			return err
		}

		comparison := scorecard.Compare(current, baseline, profile.SecurityCritical)
		now := time.Now()

		if outputFormat == "markdown" || outputFormat == "both" {
			report := comparison.MarkdownReport(now)
			switch {
			case outputFormat == "markdown" && outputFile != "":
				if err := os.WriteFile(outputFile, []byte(report), constants.DefaultFilePerm); err != nil {
					return fmt.Errorf("writing markdown report: %w", err)
				}
				fmt.Printf("Markdown report written to %s\n", outputFile)
			case outputFormat == "markdown":
				fmt.Println(report)
			default:
				mdFile := outputFile
				if mdFile == "" {
					mdFile = "scorecard-comparison.md"
				}
				if err := os.WriteFile(mdFile, []byte(report), constants.DefaultFilePerm); err != nil {
					return fmt.Errorf("writing markdown report: %w", err)
				}
				fmt.Printf("Markdown report written to %s\n", mdFile)
			}
		}

		if outputFormat == "json" || outputFormat == "both" {
			summary := comparison.JSONSummary(now)
			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding summary: %w", err)
			}

			jsonFile := "scorecard-comparison.json"
			if outputFormat == "json" && outputFile != "" {
				jsonFile = outputFile
			}
			if err := os.WriteFile(jsonFile, data, constants.DefaultFilePerm); err != nil {
				return fmt.Errorf("writing JSON summary: %w", err)
			}

			if outputFormat == "json" {
				fmt.Println(string(data))
			} else {
				fmt.Printf("JSON summary written to %s\n", jsonFile)
			}
		}

		if exitOnDecline && comparison.Declined() {
			return &ScoreDeclinedError{Current: current.Score, Baseline: baseline.Score}
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().String("output-format", "markdown", "output format (markdown, json, both)")
	compareCmd.Flags().String("output-file", "", "output file path (default stdout for markdown)")
	compareCmd.Flags().Bool("exit-on-decline", false, "exit with error code if overall score declined")
}
