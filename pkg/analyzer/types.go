// Package analyzer filters classified log records and aggregates per-run statistics.
package analyzer

import (
	"sort"
	"time"
)

const (
	// MessageKeyLength is the number of leading characters of a message used
	// to group near-identical messages.
	MessageKeyLength = 100

	// TimelineLimit is the number of recent errors kept in a report.
	TimelineLimit = 20

	// HourLayout formats an hour bucket key, e.g. "2025-10-26 14:00".
	HourLayout = "2006-01-02 15:00"
)

// TimeRange defines a time window for filtering log records.
// A zero Start or End leaves that side unbounded.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set.
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// MessageCount is a message key with its number of occurrences.
type MessageCount struct {
	Message string
	Count   int
}

// HourCount is the number of errors in one hour bucket.
type HourCount struct {
	Hour  string
	Count int
}

// TimelineEntry is a single timestamped error.
type TimelineEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Source    string
	LineNum   int
}

// Counter counts string keys and remembers the order keys were first seen.
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increments key by one.
func (c *Counter) Add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Get returns the count for key.
func (c *Counter) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.order)
}

// Keys returns keys in first-seen order.
func (c *Counter) Keys() []string {
	return append([]string(nil), c.order...)
}

// Top returns the n most frequent keys, count descending. Equal counts keep
// first-seen order. n <= 0 returns every key.
func (c *Counter) Top(n int) []MessageCount {
	all := make([]MessageCount, 0, len(c.order))
	for _, key := range c.order {
		all = append(all, MessageCount{Message: key, Count: c.counts[key]})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Count > all[j].Count
	})

	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}
