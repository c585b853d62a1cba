package analyzer

import (
	"regexp"

	"github.com/ccollicutt/logtriage/pkg/parser"
)

// Filter decides whether a record takes part in aggregation.
// All configured conditions must hold.
type Filter struct {
	// TimeRange bounds are inclusive. Records without a timestamp always pass.
	TimeRange TimeRange

	// Pattern, if set, must match the record message.
	Pattern *regexp.Regexp

	// ErrorsOnly rejects everything outside the error tier.
	ErrorsOnly bool
}

// Passes reports whether rec satisfies the filter. It never modifies rec.
func (f *Filter) Passes(rec *parser.Record) bool {
	if rec.HasTimestamp() {
		if !f.TimeRange.Start.IsZero() && rec.Timestamp.Before(f.TimeRange.Start) {
			return false
		}
		if !f.TimeRange.End.IsZero() && rec.Timestamp.After(f.TimeRange.End) {
			return false
		}
	}

	if f.Pattern != nil && !f.Pattern.MatchString(rec.Message) {
		return false
	}

	if f.ErrorsOnly && !rec.IsError() {
		return false
	}

	return true
}
