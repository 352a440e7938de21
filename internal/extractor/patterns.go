package extractor

import (
	"regexp"
	"strings"
	"time"
)

// ws also matches Unicode space separators such as U+00A0, which PDF text
// often carries between a day and its time.
const ws = `[\s\p{Zs}]`

const monthAlternation = `(January|February|March|April|May|June|July|August|September|October|November|December)`

// Patterns holds the compiled date matchers. A Patterns value is read-only
// after construction and may be shared between goroutines.
type Patterns struct {
	// Named matches "October 5, 2024" with an optional " at 2:30 PM" suffix.
	Named *regexp.Regexp
	// Numeric matches "9/3/25 10:00 AM". The time component is required.
	Numeric *regexp.Regexp
	// TrailingTime matches leftovers such as " - 3:00 PM" stripped from titles.
	TrailingTime *regexp.Regexp

	months map[string]time.Month
}

// DefaultPatterns compiles the built-in date matchers.
func DefaultPatterns() *Patterns {
	months := make(map[string]time.Month, 12)
	for m := time.January; m <= time.December; m++ {
		months[strings.ToLower(m.String())] = m
	}
	return &Patterns{
		Named: regexp.MustCompile(`(?i)` + monthAlternation + ws + `+([0-3]?\d),` + ws + `*(\d{4})(?:` +
			ws + `+at` + ws + `+([0-1]?\d:[0-5]\d)` + ws + `*(AM|PM)?)?`),
		Numeric: regexp.MustCompile(`(?i)(\d{1,2})/(\d{1,2})/(\d{2,4})(?:` + ws + `+([0-1]?\d:[0-5]\d)` + ws + `*(AM|PM)?)`),
		TrailingTime: regexp.MustCompile(`(?i)` + ws + `*-` + ws + `*\d{1,2}:\d{2}` + ws + `*(AM|PM)?`),
		months:       months,
	}
}

// month resolves a month name case-insensitively.
func (p *Patterns) month(name string) (time.Month, bool) {
	m, ok := p.months[strings.ToLower(name)]
	return m, ok
}
