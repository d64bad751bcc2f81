package audit

// Band is the qualitative status derived from the overall percentage.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
	BandCritical  Band = "critical"
)

// Summary aggregates the per-check scores of one run.
type Summary struct {
	Total      int     `json:"total"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
	Band       Band    `json:"band"`
}

// Aggregate combines check results into a run summary. It is a pure
// function: total is the sum of scores, max is 10 per check, and the band is
// a non-overlapping partition of [0,100] by inclusive lower bounds.
func Aggregate(results []CheckResult) Summary {
	total := 0
	for _, r := range results {
		total += r.Score
	}
	max := 10 * len(results)

	percentage := 0.0
	if max > 0 {
		percentage = float64(total) / float64(max) * 100
	}

	return Summary{
		Total:      total,
		Max:        max,
		Percentage: percentage,
		Band:       BandFor(percentage),
	}
}

// BandFor maps a percentage to its status band.
func BandFor(percentage float64) Band {
	switch {
	case percentage >= 90:
		return BandExcellent
	case percentage >= 80:
		return BandGood
	case percentage >= 70:
		return BandFair
	case percentage >= 60:
		return BandPoor
	default:
		return BandCritical
	}
}
