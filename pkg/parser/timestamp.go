package parser

import (
	"strings"
	"time"
)

// Timestamp layouts understood by the Normalizer.
const (
	LayoutISOUTC   = "2006-01-02T15:04:05Z"
	LayoutDateTime = "2006-01-02 15:04:05"
	LayoutSyslog   = "Jan 2 15:04:05"
	LayoutISOLocal = "2006-01-02T15:04:05"
)

// syslogFutureSlack is how far past the reference time an inferred syslog
// timestamp may land before it is moved back one year.
const syslogFutureSlack = 24 * time.Hour

// timestampGrammar is one timestamp layout in the normalization cascade.
type timestampGrammar struct {
	name   string
	layout string
	syslog bool // no year field; resolved by the syslog year policy
}

// defaultGrammars returns the grammars in the order they are tried.
func defaultGrammars() []timestampGrammar {
	return []timestampGrammar{
		{name: "iso8601-utc", layout: LayoutISOUTC},
		{name: "datetime", layout: LayoutDateTime},
		{name: "syslog", layout: LayoutSyslog, syslog: true},
		{name: "rfc3339", layout: time.RFC3339},
		{name: "iso8601-local", layout: LayoutISOLocal},
	}
}

// Normalizer converts format-specific timestamp strings into instants.
//
// Zone-less grammars are interpreted as UTC. Syslog timestamps carry no year:
// the configured year is used when set, otherwise the reference time's year,
// stepping back one year when the result would land more than a day after the
// reference time (a "Dec 31" line read in January).
type Normalizer struct {
	grammars   []timestampGrammar
	syslogYear int
	now        func() time.Time
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithSyslogYear fixes the year assumed for syslog timestamps.
// Values <= 0 keep year inference.
func WithSyslogYear(year int) NormalizerOption {
	return func(n *Normalizer) {
		if year > 0 {
			n.syslogYear = year
		}
	}
}

// WithReferenceTime sets the clock used to infer syslog years.
func WithReferenceTime(ref time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = func() time.Time { return ref }
	}
}

// NewNormalizer creates a Normalizer with the default grammar cascade.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		grammars: defaultGrammars(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize parses raw with the first grammar that accepts it.
// It returns false for empty or unparsable input; that is an expected outcome.
func (n *Normalizer) Normalize(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, g := range n.grammars {
		value := raw
		if g.syslog {
			// "Oct  5" and "Oct 5" both parse with the single-space layout
			value = strings.Join(strings.Fields(raw), " ")
		}

		ts, err := time.Parse(g.layout, value)
		if err != nil {
			continue
		}
		if g.syslog {
			var ok bool
			if ts, ok = n.resolveSyslogYear(ts); !ok {
				return time.Time{}, false
			}
		}
		return ts.UTC(), true
	}

	return time.Time{}, false
}

// resolveSyslogYear dates a year-less syslog timestamp. It reports false for
// a day that does not exist in the chosen year, such as Feb 29 in 2025.
func (n *Normalizer) resolveSyslogYear(ts time.Time) (time.Time, bool) {
	if n.syslogYear > 0 {
		return withYear(ts, n.syslogYear)
	}

	ref := n.now()
	if candidate, ok := withYear(ts, ref.Year()); ok && !candidate.After(ref.Add(syslogFutureSlack)) {
		return candidate, true
	}
	return withYear(ts, ref.Year()-1)
}

func withYear(ts time.Time, year int) (time.Time, bool) {
	t := time.Date(year, ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), ts.Location())
	return t, t.Month() == ts.Month() && t.Day() == ts.Day()
}
