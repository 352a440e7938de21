// Package extractor recovers calendar events from plain document text, one
// line at a time.
package extractor

import (
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTitle replaces titles that are empty once the date is removed.
	DefaultTitle = "Imported Event"
	// SourcePDF tags events that were imported from a document.
	SourcePDF = "pdf"

	defaultHour = 9
)

// Candidate is an event proposed for persistence.
type Candidate struct {
	Title       string    `json:"title"`
	StartTime   time.Time `json:"start_time"`
	Description string    `json:"description"`
	AllDay      bool      `json:"all_day"`
	Source      string    `json:"source"`
}

// Extractor turns document text into event candidates. It is stateless
// across calls and safe for concurrent use.
type Extractor struct {
	patterns *Patterns
	loc      *time.Location
}

// New returns an extractor. Nil arguments fall back to DefaultPatterns and time.Local.
func New(patterns *Patterns, loc *time.Location) *Extractor {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{patterns: patterns, loc: loc}
}

// Extract yields one candidate per line that contains a recognizable date,
// in line order. The sequence can be ranged over more than once.
func (e *Extractor) Extract(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for line := range strings.Lines(text) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			c, ok := e.ExtractLine(line)
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// ExtractAll collects Extract into a slice.
func (e *Extractor) ExtractAll(text string) []Candidate {
	return slices.Collect(e.Extract(text))
}

// ExtractLine matches a single trimmed line. The named-month pattern is
// tried first; the numeric pattern only when it fails.
func (e *Extractor) ExtractLine(line string) (Candidate, bool) {
	start, loc, ok := e.matchNamed(line)
	if !ok {
		start, loc, ok = e.matchNumeric(line)
	}
	if !ok {
		return Candidate{}, false
	}
	return Candidate{
		Title:       e.title(line, loc),
		StartTime:   start,
		Description: line,
		AllDay:      false,
		Source:      SourcePDF,
	}, true
}

// matchNamed handles "<Month> <d>, <yyyy>[ at <h:mm>[ AM|PM]]".
// The year is taken verbatim from the four-digit group.
func (e *Extractor) matchNamed(line string) (time.Time, []int, bool) {
	m := e.patterns.Named.FindStringSubmatchIndex(line)
	if m == nil {
		return time.Time{}, nil, false
	}
	mon, ok := e.patterns.month(group(line, m, 1))
	if !ok {
		return time.Time{}, nil, false
	}
	day, _ := strconv.Atoi(group(line, m, 2))
	year, _ := strconv.Atoi(group(line, m, 3))
	hour, minute := clock(group(line, m, 4), group(line, m, 5))
	return time.Date(year, mon, day, hour, minute, 0, 0, e.loc), m[:2], true
}

// matchNumeric handles "<m>/<d>/<yy|yyyy> <h:mm>[ AM|PM]". A two-digit year
// is read as 20yy; years past 2099 written with two digits are not supported.
func (e *Extractor) matchNumeric(line string) (time.Time, []int, bool) {
	m := e.patterns.Numeric.FindStringSubmatchIndex(line)
	if m == nil {
		return time.Time{}, nil, false
	}
	mon, _ := strconv.Atoi(group(line, m, 1))
	day, _ := strconv.Atoi(group(line, m, 2))
	yearText := group(line, m, 3)
	if len(yearText) == 2 {
		yearText = "20" + yearText
	}
	year, _ := strconv.Atoi(yearText)
	hour, minute := clock(group(line, m, 4), group(line, m, 5))
	return time.Date(year, time.Month(mon), day, hour, minute, 0, 0, e.loc), m[:2], true
}

// title removes the matched date span and any " - h:mm" leftover.
func (e *Extractor) title(line string, span []int) string {
	t := line[:span[0]] + line[span[1]:]
	t = removeFirst(e.patterns.TrailingTime, t)
	t = strings.TrimSpace(t)
	if t == "" {
		return DefaultTitle
	}
	return t
}

// clock converts "h:mm" plus an optional AM/PM marker to 24-hour fields.
// Without a marker the hour is used as written. An empty hm means 09:00.
func clock(hm, meridiem string) (int, int) {
	if hm == "" {
		return defaultHour, 0
	}
	hs, ms, _ := strings.Cut(hm, ":")
	h, _ := strconv.Atoi(hs)
	mi, _ := strconv.Atoi(ms)
	switch strings.ToUpper(meridiem) {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}
	return h, mi
}

func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
