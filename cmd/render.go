package cmd

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/jung-kurt/gofpdf"

	"github.com/posturasec/postura/internal/audit"
)

const (
	htmlTemplatePath     = "templates/report.html"
	markdownTemplatePath = "templates/report.md"
)

//go:embed templates/report.html templates/report.md
var reportTemplateFS embed.FS

// TemplateData is the view model shared by the markdown and HTML templates.
type TemplateData struct {
	GeneratedAt     string
	OverallScore    int
	MaxScore        int
	Percentage      float64
	Status          string
	Results         []audit.CheckResult
	Issues          []audit.Issue
	Recommendations []audit.Recommendation
	Actions         []audit.Action
	Detailed        []audit.CheckResult
}

func buildTemplateData(report *audit.AggregateReport) TemplateData {
	return TemplateData{
		GeneratedAt:     report.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"),
		OverallScore:    report.OverallScore,
		MaxScore:        report.MaxScore,
		Percentage:      report.Percentage,
		Status:          string(report.OverallStatus),
		Results:         report.Results,
		Issues:          report.Issues,
		Recommendations: report.Recommendations,
		Actions:         report.Actions,
		Detailed:        report.DetailedResults(),
	}
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func statusBadgeClass(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "excellent", "good":
		return "badge-good"
	case "fair":
		return "badge-fair"
	case "poor":
		return "badge-poor"
	default:
		return "badge-critical"
	}
}

func severityBadgeClass(sev audit.Severity) string {
	switch sev {
	case audit.SeverityCritical:
		return "badge-critical"
	case audit.SeverityHigh:
		return "badge-poor"
	case audit.SeverityMedium:
		return "badge-fair"
	default:
		return "badge-info"
	}
}

func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var (
	htmlTemplateFuncs = template.FuncMap{
		"formatPercent":    formatPercent,
		"badgeClass":       statusBadgeClass,
		"severityClass":    severityBadgeClass,
		"title":            titleWords,
		"upper":            strings.ToUpper,
		"sortedBySeverity": sortedBySeverity,
	}

	markdownTemplateFuncs = texttemplate.FuncMap{
		"formatPercent":    formatPercent,
		"title":            titleWords,
		"upper":            strings.ToUpper,
		"sortedBySeverity": sortedBySeverity,
	}

	htmlReportTemplate = template.Must(
		template.New("report.html").Funcs(htmlTemplateFuncs).ParseFS(reportTemplateFS, htmlTemplatePath),
	)
	markdownReportTemplate = texttemplate.Must(
		texttemplate.New("report.md").Funcs(markdownTemplateFuncs).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

// sortedBySeverity orders issues critical first, preserving emission order
// inside each severity.
func sortedBySeverity(issues []audit.Issue) []audit.Issue {
	sorted := append([]audit.Issue(nil), issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	return sorted
}

func renderMarkdownReport(report *audit.AggregateReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownReportTemplate.Execute(&buf, buildTemplateData(report)); err != nil {
		return nil, fmt.Errorf("rendering markdown report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderHTMLReport(report *audit.AggregateReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, buildTemplateData(report)); err != nil {
		return nil, fmt.Errorf("rendering HTML report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDFReport(report *audit.AggregateReport) ([]byte, error) {
	data := buildTemplateData(report)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Security Posture Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Overall: %d/%d (%.1f%%) - %s",
		data.OverallScore, data.MaxScore, data.Percentage, strings.ToUpper(data.Status)), "", 1, "", false, 0, "")
	pdf.Ln(5)

	// Per-check scores
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Check Scores", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, res := range data.Results {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d/10", titleWords(res.Name), res.Score), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	// Issues
	if len(data.Issues) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Issues", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, issue := range sortedBySeverity(data.Issues) {
			if pdf.GetY() > 260 {
				pdf.AddPage()
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(issue.Severity)), issue.Component, issue.Message), "", "", false)
			if issue.Recommendation != "" {
				pdf.MultiCell(0, 5, fmt.Sprintf("    Recommendation: %s", issue.Recommendation), "", "", false)
			}
		}
		pdf.Ln(3)
	}

	// Recommendations
	if len(data.Recommendations) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Recommendations", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, rec := range data.Recommendations {
			if pdf.GetY() > 260 {
				pdf.AddPage()
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", rec.Component, rec.Message), "", "", false)
		}
		pdf.Ln(3)
	}

	// Priority actions
	if len(data.Actions) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Priority Actions", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, action := range data.Actions {
			if pdf.GetY() > 260 {
				pdf.AddPage()
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s - %s (%.1f -> %.1f)",
				strings.ToUpper(action.Priority), action.Check, titleWords(action.Action),
				action.BaselineScore, action.CurrentScore), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF report: %w", err)
	}
	return buf.Bytes(), nil
}
