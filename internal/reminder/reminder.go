// Package reminder raises alerts for events that are about to start.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/store"
)

// Sender is the alert author shown on reminders.
const Sender = "System"

// Config controls how often the poller runs and which events it picks up.
type Config struct {
	Interval     time.Duration
	Lookahead    time.Duration
	DedupeWindow time.Duration
}

// DefaultConfig checks hourly for events in the next day.
func DefaultConfig() Config {
	return Config{
		Interval:     time.Hour,
		Lookahead:    24 * time.Hour,
		DedupeWindow: 48 * time.Hour,
	}
}

// Raiser persists an alert and fans it out to the user.
type Raiser interface {
	RaiseAlert(ctx context.Context, a models.Alert) (*models.Alert, error)
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// Poller scans for upcoming events and raises one reminder per event.
type Poller struct {
	db     store.Store
	raiser Raiser
	cfg    Config
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// New creates a poller. Zero durations in cfg take the defaults.
func New(db store.Store, raiser Raiser, cfg Config, loc *time.Location, logger *slog.Logger, opts ...Option) *Poller {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = def.Lookahead
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = def.DedupeWindow
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{db: db, raiser: raiser, cfg: cfg, loc: loc, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run checks once immediately and then every Interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("reminders: started",
		slog.Duration("interval", p.cfg.Interval),
		slog.Duration("lookahead", p.cfg.Lookahead))

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		if n, err := p.Check(ctx); err != nil {
			p.logger.Warn("reminders: check failed", slog.String("error", err.Error()))
		} else if n > 0 {
			p.logger.Info("reminders: raised", slog.Int("count", n))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("reminders: stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Check raises reminders for events starting in (now, now+Lookahead] that
// have no reminder inside the dedupe window. It returns how many it raised.
func (p *Poller) Check(ctx context.Context) (int, error) {
	now := p.now()
	events, err := p.db.ListEventsStartingBetween(ctx, now, now.Add(p.cfg.Lookahead))
	if err != nil {
		return 0, fmt.Errorf("reminder: list upcoming: %w", err)
	}

	raised := 0
	for _, e := range events {
		if ctx.Err() != nil {
			return raised, ctx.Err()
		}
		seen, err := p.db.HasRecentAlert(ctx, e.UserID, string(classifier.CategoryEventReminder), e.Title, now.Add(-p.cfg.DedupeWindow))
		if err != nil {
			return raised, fmt.Errorf("reminder: dedupe event %d: %w", e.ID, err)
		}
		if seen {
			continue
		}
		if _, err := p.raiser.RaiseAlert(ctx, Build(e, now, p.loc)); err != nil {
			return raised, fmt.Errorf("reminder: raise for event %d: %w", e.ID, err)
		}
		raised++
	}
	return raised, nil
}

// Build renders the reminder alert for e as seen at now.
func Build(e models.Event, now time.Time, loc *time.Location) models.Alert {
	until := e.StartTime.Sub(now)
	hours := int(math.Round(until.Hours()))

	urgency := classifier.UrgencyMedium
	if hours <= 2 {
		urgency = classifier.UrgencyHigh
	}

	msg := fmt.Sprintf("Your event \"%s\" is scheduled %s at %s", e.Title, relative(until, hours), e.StartTime.In(loc).Format("3:04 PM"))
	if e.Location != "" {
		msg += " at " + e.Location
	}
	msg += "."

	return models.Alert{
		UserID:     e.UserID,
		Type:       string(classifier.CategoryEventReminder),
		Title:      "Reminder: " + e.Title,
		Message:    msg,
		EmailFrom:  Sender,
		Urgency:    string(urgency),
		DetectedAt: now.UTC(),
	}
}

func relative(until time.Duration, hours int) string {
	switch {
	case hours < 1:
		m := int(math.Round(until.Minutes()))
		if m == 1 {
			return "in 1 minute"
		}
		return fmt.Sprintf("in %d minutes", m)
	case hours == 1:
		return "in 1 hour"
	default:
		return fmt.Sprintf("in %d hours", hours)
	}
}
