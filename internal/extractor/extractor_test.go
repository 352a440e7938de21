package extractor

import (
	"slices"
	"testing"
	"time"
)

func newUTC() *Extractor {
	return New(nil, time.UTC)
}

func TestExtract_NamedMonthWithTime(t *testing.T) {
	got := newUTC().ExtractAll("Midterm on October 5, 2024 at 2:30 PM")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	c := got[0]
	want := time.Date(2024, time.October, 5, 14, 30, 0, 0, time.UTC)
	if !c.StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", c.StartTime, want)
	}
	if c.Title != "Midterm on" {
		t.Errorf("title = %q, want %q", c.Title, "Midterm on")
	}
	if c.Description != "Midterm on October 5, 2024 at 2:30 PM" {
		t.Errorf("description = %q", c.Description)
	}
	if c.AllDay {
		t.Error("allDay should be false")
	}
	if c.Source != SourcePDF {
		t.Errorf("source = %q", c.Source)
	}
}

func TestExtract_NumericWithTwoDigitYear(t *testing.T) {
	got := newUTC().ExtractAll("Quiz 9/3/25 10:00 AM")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := time.Date(2025, time.September, 3, 10, 0, 0, 0, time.UTC)
	if !got[0].StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", got[0].StartTime, want)
	}
	if got[0].Title != "Quiz" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestExtract_NoDate(t *testing.T) {
	if got := newUTC().ExtractAll("no date here"); len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
	if got := newUTC().ExtractAll(""); len(got) != 0 {
		t.Errorf("empty text produced %d candidates", len(got))
	}
}

func TestExtract_NamedMonthDefaultsToNine(t *testing.T) {
	got := newUTC().ExtractAll("  Project kickoff: january 12, 2025  ")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	want := time.Date(2025, time.January, 12, 9, 0, 0, 0, time.UTC)
	if !got[0].StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", got[0].StartTime, want)
	}
	if got[0].Title != "Project kickoff:" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestExtract_NumericRequiresTime(t *testing.T) {
	if got := newUTC().ExtractAll("Essay due 9/3/2025"); len(got) != 0 {
		t.Errorf("bare slash date matched: %+v", got)
	}
}

func TestExtract_MissingYearSkipped(t *testing.T) {
	if got := newUTC().ExtractAll("Lab on October 5"); len(got) != 0 {
		t.Errorf("partial date matched: %+v", got)
	}
}

func TestExtract_MeridiemConversion(t *testing.T) {
	cases := []struct {
		line       string
		hour, mins int
	}{
		{"A 1/1/2025 12:15 AM", 0, 15},
		{"B 1/1/2025 12:15 PM", 12, 15},
		{"C 1/1/2025 11:59 pm", 23, 59},
		{"D 1/1/2025 7:05 am", 7, 5},
		{"E 1/1/2025 17:45", 17, 45},
	}
	for _, tc := range cases {
		got := newUTC().ExtractAll(tc.line)
		if len(got) != 1 {
			t.Errorf("%q: len = %d", tc.line, len(got))
			continue
		}
		if h, m := got[0].StartTime.Hour(), got[0].StartTime.Minute(); h != tc.hour || m != tc.mins {
			t.Errorf("%q: %02d:%02d, want %02d:%02d", tc.line, h, m, tc.hour, tc.mins)
		}
	}
}

func TestExtract_NamedPreferredOverNumeric(t *testing.T) {
	got := newUTC().ExtractAll("Review 1/2/2025 8:00 AM then exam March 3, 2025")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	want := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	if !got[0].StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", got[0].StartTime, want)
	}
	// Only the named span is removed; the numeric date stays in the title.
	if got[0].Title != "Review 1/2/2025 8:00 AM then exam" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestExtract_NonBreakingSpaces(t *testing.T) {
	cases := []struct {
		line  string
		title string
		start time.Time
	}{
		{"Midterm on October\u00a05, 2024 at 2:30\u00a0PM", "Midterm on", time.Date(2024, time.October, 5, 14, 30, 0, 0, time.UTC)},
		{"Quiz 9/3/25\u00a010:00 AM", "Quiz", time.Date(2025, time.September, 3, 10, 0, 0, 0, time.UTC)},
		{"Final December\u00a09, 2024", "Final", time.Date(2024, time.December, 9, 9, 0, 0, 0, time.UTC)},
		{"Lab\u2002March 4,\u00a02025 - 3:00\u00a0PM", "Lab", time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := newUTC().ExtractAll(tc.line)
		if len(got) != 1 {
			t.Errorf("%q: len = %d, want 1", tc.line, len(got))
			continue
		}
		if got[0].Title != tc.title {
			t.Errorf("%q: title = %q, want %q", tc.line, got[0].Title, tc.title)
		}
		if !got[0].StartTime.Equal(tc.start) {
			t.Errorf("%q: start = %v, want %v", tc.line, got[0].StartTime, tc.start)
		}
	}
}

func TestExtract_FirstMatchOnly(t *testing.T) {
	got := newUTC().ExtractAll("Exams May 1, 2025 and May 8, 2025")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].StartTime.Day() != 1 {
		t.Errorf("day = %d, want 1", got[0].StartTime.Day())
	}
	if got[0].Title != "Exams  and May 8, 2025" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestExtract_TrailingTimeRangeStripped(t *testing.T) {
	got := newUTC().ExtractAll("Final Exam December 9, 2024 at 1:00 PM - 3:00 PM")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Title != "Final Exam" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestExtract_DefaultTitle(t *testing.T) {
	got := newUTC().ExtractAll("October 5, 2024")
	if len(got) != 1 || got[0].Title != DefaultTitle {
		t.Errorf("got %+v", got)
	}
}

func TestExtract_CountsMatchingLinesOnly(t *testing.T) {
	text := "Syllabus\r\n\r\nWeek 1 intro\nQuiz 1 2/4/2025 9:30 AM\nreading list\n" +
		"Midterm March 3, 2025 at 10:00 AM\n\n   \nHomework 3/10/25 11:59 PM\nOffice hours TBD\n"
	got := newUTC().ExtractAll(text)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	if !slices.Equal(titles, []string{"Quiz 1", "Midterm", "Homework"}) {
		t.Errorf("titles = %v", titles)
	}
}

func TestExtract_LocalTimezone(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := New(nil, loc).ExtractAll("Lab 4/1/2025 2:00 PM")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].StartTime.Location() != loc || got[0].StartTime.Hour() != 14 {
		t.Errorf("start = %v", got[0].StartTime)
	}
	if got[0].StartTime.UTC().Hour() != 19 {
		t.Errorf("utc hour = %d, want 19", got[0].StartTime.UTC().Hour())
	}
}

func TestExtract_RestartableAndIdempotent(t *testing.T) {
	e := newUTC()
	seq := e.Extract("A 1/1/2025 1:00 PM\nB 2/2/2025 2:00 PM")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) || len(first) != 2 {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestExtract_EarlyStop(t *testing.T) {
	n := 0
	for range newUTC().Extract("A 1/1/2025 1:00 PM\nB 2/2/2025 2:00 PM\nC 3/3/2025 3:00 PM") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("n = %d", n)
	}
}
