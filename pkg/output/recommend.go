package output

import (
	"fmt"

	"github.com/ccollicutt/logtriage/pkg/analyzer"
)

// Severity tiers derived from the error count.
const (
	SeverityHealthy     = "healthy"
	SeverityLow         = "low"
	SeverityInvestigate = "investigate"
	SeverityUrgent      = "urgent"
)

// Messages for each tier.
const (
	RecommendHealthy     = "No errors found. System appears healthy."
	RecommendLow         = "Low error count (%d). Review the errors below when convenient."
	RecommendInvestigate = "Moderate error count (%d). Investigate the top recurring errors."
	RecommendUrgent      = "High error count (%d). Urgent investigation recommended."
	RecommendPeakHour    = "Peak error hour: %s (%d errors)."
)

// Severity maps an error count to its tier.
func Severity(errorCount int) string {
	switch {
	case errorCount <= 0:
		return SeverityHealthy
	case errorCount < 10:
		return SeverityLow
	case errorCount < 100:
		return SeverityInvestigate
	default:
		return SeverityUrgent
	}
}

// Recommend returns the recommendation lines for a run.
func Recommend(errorCount int, peak analyzer.HourCount, hasPeak bool) []string {
	var recs []string

	switch Severity(errorCount) {
	case SeverityHealthy:
		recs = append(recs, RecommendHealthy)
	case SeverityLow:
		recs = append(recs, fmt.Sprintf(RecommendLow, errorCount))
	case SeverityInvestigate:
		recs = append(recs, fmt.Sprintf(RecommendInvestigate, errorCount))
	default:
		recs = append(recs, fmt.Sprintf(RecommendUrgent, errorCount))
	}

	if hasPeak {
		recs = append(recs, fmt.Sprintf(RecommendPeakHour, peak.Hour, peak.Count))
	}

	return recs
}
