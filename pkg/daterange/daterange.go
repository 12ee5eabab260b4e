// Package daterange parses the human formatted date ranges published by the
// campus events feed, such as
//
//	Fri, Apr 12, 2024 6:00 PM &ndash; Fri, Apr 12, 2024 8:00 PM
//
// Parsed timestamps are naive wall time expressed in UTC.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beartracks/beartracks/pkg/markup"
)

// Separator separates the two ends of a range.
const Separator = "–"

var (
	// ErrInvalidRange is matched by every parse failure.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrNoSeparator is returned when the input does not split into exactly
	// two parts on Separator.
	ErrNoSeparator = errors.New("expected exactly one en-dash separator")
	// ErrUnknownFormat is returned when a part matches none of the layouts.
	ErrUnknownFormat = errors.New("unrecognized date format")
)

// Layouts are tried in order on each end of a range.
var Layouts = []string{
	"Mon, Jan 2, 2006 3:04 PM",
	"Mon, Jan 2, 2006 3:04 PM MST",
	"Mon, Jan 2, 2006 3 PM",
	"Mon, Jan 2, 2006",
}

// Range is a parsed date range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Parse parses a date range. Markup in s is stripped first.
func Parse(s string) (Range, error) {
	text := markup.Text(s)
	parts := strings.Split(text, Separator)
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %w", ErrInvalidRange, ErrNoSeparator)
	}

	start, err := parseOne(parts[0])
	if err != nil {
		return Range{}, err
	}
	end, err := parseOne(parts[1])
	if err != nil {
		return Range{}, err
	}

	return Range{Start: start, End: end}, nil
}

// ParseOne parses a single date-time expression with the same layouts as
// Parse. Markup in s is stripped first.
func ParseOne(s string) (time.Time, error) {
	return parseOne(markup.Text(s))
}

// HasSeparator reports whether s, once stripped of markup, contains
// Separator.
func HasSeparator(s string) bool {
	return strings.Contains(markup.Text(s), Separator)
}

func parseOne(s string) (time.Time, error) {
	s = normalize(s)
	for _, layout := range Layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return naive(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %w: %q", ErrInvalidRange, ErrUnknownFormat, s)
}

// normalize collapses whitespace and upper-cases meridiem markers, which
// time.Parse only accepts in upper case.
func normalize(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if strings.EqualFold(f, "am") || strings.EqualFold(f, "pm") {
			fields[i] = strings.ToUpper(f)
		}
	}
	return strings.Join(fields, " ")
}

// naive drops any zone information parsed from the input, keeping the wall
// clock reading.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
