package cmd

import (
	"github.com/fatih/color"

	"github.com/posturasec/postura/internal/audit"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func colorizeSeverity(sev audit.Severity) string {
	switch sev {
	case audit.SeverityCritical:
		return colorError(string(sev))
	case audit.SeverityHigh:
		return colorError(string(sev))
	case audit.SeverityMedium:
		return colorWarn(string(sev))
	default:
		return colorInfo(string(sev))
	}
}

func colorizeBand(band audit.Band) string {
	switch band {
	case audit.BandExcellent, audit.BandGood:
		return colorSuccess(string(band))
	case audit.BandFair:
		return colorInfo(string(band))
	case audit.BandPoor:
		return colorWarn(string(band))
	default:
		return colorError(string(band))
	}
}
