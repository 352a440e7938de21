// Package classifier detects student-facing alerts in email text using an
// ordered keyword taxonomy.
package classifier

import "strings"

// MaxMessageLen bounds the stored alert message, in characters.
const MaxMessageLen = 500

// Email is the raw input for classification.
type Email struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Candidate is an alert proposed for persistence.
type Candidate struct {
	Category      Category `json:"type"`
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Urgency       Urgency  `json:"urgency"`
	SourceSubject string   `json:"email_subject"`
	SourceFrom    string   `json:"email_from"`
}

// Classifier matches text against a taxonomy. It holds no mutable state and
// is safe for concurrent use.
type Classifier struct {
	tax *Taxonomy
}

// New returns a classifier over tax, or over the default taxonomy when tax is nil.
func New(tax *Taxonomy) *Classifier {
	if tax == nil {
		tax = DefaultTaxonomy()
	}
	return &Classifier{tax: tax}
}

// Detect returns the first category, in taxonomy order, that has a keyword
// occurring in the lowercased "subject body" text.
func (c *Classifier) Detect(subject, body string) (Category, bool) {
	content := strings.ToLower(subject + " " + body)
	for _, r := range c.tax.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(content, kw) {
				return r.Category, true
			}
		}
	}
	return "", false
}

// Classify builds an alert candidate. ok is false when nothing matched.
func (c *Classifier) Classify(subject, body string) (Candidate, bool) {
	cat, ok := c.Detect(subject, body)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{
		Category:      cat,
		Title:         TitleFor(cat),
		Message:       truncate(body, MaxMessageLen),
		Urgency:       UrgencyFor(cat),
		SourceSubject: subject,
	}, true
}

// ClassifyEmail is Classify with the sender carried through.
func (c *Classifier) ClassifyEmail(e Email) (Candidate, bool) {
	cand, ok := c.Classify(e.Subject, e.Body)
	if !ok {
		return Candidate{}, false
	}
	cand.SourceFrom = e.From
	return cand, true
}

func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
