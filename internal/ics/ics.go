// Package ics renders stored events as RFC 5545 iCalendar documents.
package ics

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	ical "github.com/arran4/golang-ical"

	"github.com/starford/scholarsync/internal/apperr"
)

const (
	productID     = "-//ScholarSync//Calendar Export//EN"
	localDateTime = "20060102T150405"
)

// Event is the subset of a stored event that the calendar export needs.
type Event struct {
	ID          int64
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     *time.Time
}

// Encoder maps events to iCalendar text. Times are written as floating
// local date-times in the encoder's location.
type Encoder struct {
	loc *time.Location
	now func() time.Time
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithClock overrides the clock used for DTSTAMP.
func WithClock(now func() time.Time) Option {
	return func(e *Encoder) { e.now = now }
}

// NewEncoder returns an encoder writing times in loc (time.Local when nil).
func NewEncoder(loc *time.Location, opts ...Option) *Encoder {
	if loc == nil {
		loc = time.Local
	}
	e := &Encoder{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncodeSingle returns a calendar holding one VEVENT.
func (e *Encoder) EncodeSingle(ev Event) (string, error) {
	return e.EncodeMany([]Event{ev})
}

// EncodeMany returns one calendar holding a VEVENT per event. Any invalid
// event aborts the whole encode.
func (e *Encoder) EncodeMany(events []Event) (string, error) {
	for i := range events {
		if err := validate(events[i]); err != nil {
			return "", err
		}
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := e.now().UTC()
	for _, ev := range events {
		vev := cal.AddEvent(uid(ev))
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vev.SetLocation(ev.Location)
		}
		e.setTime(vev, ical.ComponentPropertyDtStart, ev.StartTime)
		if ev.EndTime != nil {
			e.setTime(vev, ical.ComponentPropertyDtEnd, *ev.EndTime)
		}
	}
	return cal.Serialize(), nil
}

func (e *Encoder) setTime(vev *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	if e.loc == time.UTC {
		vev.SetProperty(prop, t.UTC().Format(localDateTime)+"Z")
		return
	}
	vev.SetProperty(prop, t.In(e.loc).Format(localDateTime))
}

func validate(ev Event) error {
	if ev.Title == "" {
		return fmt.Errorf("%w: event %d has no title", apperr.ErrEncoding, ev.ID)
	}
	if ev.StartTime.IsZero() {
		return fmt.Errorf("%w: event %d has no start time", apperr.ErrEncoding, ev.ID)
	}
	if ev.EndTime != nil && ev.EndTime.Before(ev.StartTime) {
		return fmt.Errorf("%w: event %d ends before it starts", apperr.ErrEncoding, ev.ID)
	}
	for _, s := range []string{ev.Title, ev.Description, ev.Location} {
		if !utf8.ValidString(s) {
			return fmt.Errorf("%w: event %d has invalid UTF-8 text", apperr.ErrEncoding, ev.ID)
		}
	}
	return nil
}

func uid(ev Event) string {
	if ev.ID > 0 {
		return "event-" + strconv.FormatInt(ev.ID, 10) + "@scholarsync"
	}
	return "event-" + strconv.FormatInt(ev.StartTime.Unix(), 10) + "@scholarsync"
}
