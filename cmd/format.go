package cmd

import (
	"fmt"
	"strings"
)

// ReportFormat enumerates supported audit report output formats.
type ReportFormat string

const (
	FormatJSON     ReportFormat = "json"
	FormatMarkdown ReportFormat = "md"
	FormatHTML     ReportFormat = "html"
	FormatPDF      ReportFormat = "pdf"
)

// ParseReportFormat validates and normalizes a format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be json, md, html, or pdf)", s)
}

func (f ReportFormat) String() string { return string(f) }

// Extension returns the file extension for the format, dot included.
func (f ReportFormat) Extension() string {
	return "." + string(f)
}
