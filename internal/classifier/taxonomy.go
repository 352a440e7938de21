package classifier

import (
	"fmt"
	"strings"
)

// Category is the kind of class update an email announces.
type Category string

const (
	CategoryCancellation   Category = "cancellation"
	CategoryExamChange     Category = "exam_change"
	CategoryExtraCredit    Category = "extra_credit"
	CategoryAssignment     Category = "assignment"
	CategoryScheduleChange Category = "schedule_change"

	// CategoryEventReminder is raised by the reminder poller, never by keyword matching.
	CategoryEventReminder Category = "event_reminder"
)

// Urgency ranks how soon a student should look at an alert.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Rule is one taxonomy entry: a category and its keyword phrases in match order.
type Rule struct {
	Category Category
	Keywords []string
}

// Taxonomy is an ordered, immutable list of rules. Earlier rules win.
type Taxonomy struct {
	rules []Rule
}

// NewTaxonomy builds a taxonomy from rules in priority order.
// Keywords are lowercased; empty keywords and duplicate categories are rejected.
func NewTaxonomy(rules ...Rule) (*Taxonomy, error) {
	seen := make(map[Category]struct{}, len(rules))
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Category == "" {
			return nil, fmt.Errorf("classifier: rule with empty category")
		}
		if _, dup := seen[r.Category]; dup {
			return nil, fmt.Errorf("classifier: duplicate category %q", r.Category)
		}
		seen[r.Category] = struct{}{}

		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				return nil, fmt.Errorf("classifier: empty keyword in category %q", r.Category)
			}
			kws = append(kws, kw)
		}
		out = append(out, Rule{Category: r.Category, Keywords: kws})
	}
	return &Taxonomy{rules: out}, nil
}

// DefaultTaxonomy returns the built-in keyword taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(
		Rule{Category: CategoryCancellation, Keywords: []string{
			"class cancelled", "class canceled", "no class", "cancelled class", "canceled class", "will not meet",
		}},
		Rule{Category: CategoryExamChange, Keywords: []string{
			"exam moved", "exam rescheduled", "test moved", "test rescheduled", "quiz moved", "midterm", "final exam",
		}},
		Rule{Category: CategoryExtraCredit, Keywords: []string{
			"extra credit", "bonus points", "bonus opportunity", "additional credit",
		}},
		Rule{Category: CategoryAssignment, Keywords: []string{
			"assignment due", "homework due", "project due", "deadline",
		}},
		Rule{Category: CategoryScheduleChange, Keywords: []string{
			"room change", "time change", "location change", "schedule change",
		}},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Rules returns a copy of the rules in priority order.
func (t *Taxonomy) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

var titles = map[Category]string{
	CategoryCancellation:   "Class Cancelled",
	CategoryExamChange:     "Exam Schedule Change",
	CategoryExtraCredit:    "Extra Credit Opportunity",
	CategoryAssignment:     "Assignment Update",
	CategoryScheduleChange: "Schedule Change",
}

var urgencies = map[Category]Urgency{
	CategoryCancellation:   UrgencyHigh,
	CategoryExamChange:     UrgencyHigh,
	CategoryExtraCredit:    UrgencyMedium,
	CategoryAssignment:     UrgencyMedium,
	CategoryScheduleChange: UrgencyLow,
}

// TitleFor returns the display label for a category.
func TitleFor(c Category) string {
	if t, ok := titles[c]; ok {
		return t
	}
	return "Class Update"
}

// UrgencyFor returns the urgency for a category, medium when unmapped.
func UrgencyFor(c Category) Urgency {
	if u, ok := urgencies[c]; ok {
		return u
	}
	return UrgencyMedium
}
