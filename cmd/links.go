package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/posturasec/postura/internal/links"
	"github.com/posturasec/postura/internal/shared/constants"
)

var linksCmd = &cobra.Command{
	Use:   "links [docs-root]",
	Short: "Validate internal markdown links in the documentation",
	Long: `Links scans every markdown file under the docs root (plus markdown files
at the project root) and validates relative links, directory indexes, and
header anchors. The command exits non-zero when broken links or missing
anchors are found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docsRoot := "docs"
		if len(args) == 1 {
			docsRoot = args[0]
		}
		output, _ := cmd.Flags().GetString("output")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		validator, err := links.NewValidator(docsRoot)
		if err != nil {
			return err
		}
		validator.Concurrency = concurrency

		logger.Debugw("validating links", "docs_root", validator.DocsRoot)
		result, err := validator.Validate(cmd.Context())
		if err != nil {
			return err
		}

		if output != "" {
			report := result.MarkdownReport(time.Now())
			if err := os.WriteFile(output, []byte(report), constants.DefaultFilePerm); err != nil {
				return fmt.Errorf("writing link report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", output)
		}

		fmt.Printf("Scanned %d markdown files, %d links\n", result.FilesScanned, result.TotalLinks())
		if result.IssueCount() == 0 {
			fmt.Println(colorSuccess("All links are valid!"))
			return nil
		}

		fmt.Printf("%s Found %d issues:\n", colorError("!"), result.IssueCount())
		fmt.Printf("   - %d broken links\n", len(result.Broken))
		fmt.Printf("   - %d anchor issues\n", len(result.AnchorIssues))
		return &LinkIssuesError{Broken: len(result.Broken), Anchors: len(result.AnchorIssues)}
	},
}

func init() {
	linksCmd.Flags().StringP("output", "o", "", "write the markdown report to this file")
	linksCmd.Flags().Int("concurrency", 0, "parallel file scans (0 = number of CPUs)")
}
