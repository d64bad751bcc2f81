package links

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownReport renders the validation result as a markdown document.
func (r *Result) MarkdownReport(now time.Time) string {
	var b strings.Builder

	b.WriteString("# Documentation Link Validation Report\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Links Checked**: %d\n", r.TotalLinks())
	fmt.Fprintf(&b, "- **Valid Links**: %d\n", len(r.Valid))
	fmt.Fprintf(&b, "- **Broken Links**: %d\n", len(r.Broken))
	fmt.Fprintf(&b, "- **Anchor Issues**: %d\n\n", len(r.AnchorIssues))

	if r.IssueCount() == 0 {
		b.WriteString("✅ **All links are valid!**\n\n")
	} else {
		b.WriteString("❌ **Issues found that need fixing:**\n\n")
	}

	if len(r.Broken) > 0 {
		b.WriteString("## 🔴 Broken Links\n\n")
		for i, link := range r.Broken {
			fmt.Fprintf(&b, "### %d. %s\n", i+1, link.Issue)
			fmt.Fprintf(&b, "- **File**: `%s:%d`\n", link.File, link.Line)
			fmt.Fprintf(&b, "- **Link Text**: %q\n", link.Text)
			fmt.Fprintf(&b, "- **Link URL**: `%s`\n", link.Link)
			fmt.Fprintf(&b, "- **Resolved Path**: `%s`\n\n", link.ResolvedPath)
		}
	}

	if len(r.AnchorIssues) > 0 {
		b.WriteString("## 🟡 Anchor Issues\n\n")
		for i, issue := range r.AnchorIssues {
			fmt.Fprintf(&b, "### %d. Missing Anchor\n", i+1)
			fmt.Fprintf(&b, "- **File**: `%s:%d`\n", issue.File, issue.Line)
			fmt.Fprintf(&b, "- **Link Text**: %q\n", issue.Text)
			fmt.Fprintf(&b, "- **Full Link**: `%s`\n", issue.Link)
			fmt.Fprintf(&b, "- **Missing Anchor**: `#%s`\n", issue.Anchor)
			fmt.Fprintf(&b, "- **Target File**: `%s`\n\n", issue.TargetFile)
		}
	}

	if len(r.Valid) > 0 {
		b.WriteString("## ✅ Valid Links Summary\n")
		fmt.Fprintf(&b, "Found %d valid links across the documentation.\n", len(r.Valid))
	}

	return b.String()
}
