package cmd

import "testing"

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportFormat
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"HTML", FormatHTML, false},
		{" pdf ", FormatPDF, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseReportFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseReportFormat(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseReportFormat(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseReportFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestReportFormatExtension(t *testing.T) {
	if FormatJSON.Extension() != ".json" {
		t.Errorf("unexpected extension: %s", FormatJSON.Extension())
	}
	if FormatPDF.Extension() != ".pdf" {
		t.Errorf("unexpected extension: %s", FormatPDF.Extension())
	}
}
