// Package service holds the application use cases on top of the store.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/scholarsync/internal/auth"
	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/extractor"
	"github.com/starford/scholarsync/internal/flashgen"
	"github.com/starford/scholarsync/internal/ics"
	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/notify"
	"github.com/starford/scholarsync/internal/pdftext"
	"github.com/starford/scholarsync/internal/sse"
	"github.com/starford/scholarsync/internal/storage"
	"github.com/starford/scholarsync/internal/store"
)

// Publisher pushes realtime updates to connected clients.
type Publisher interface {
	Publish(event sse.Event)
	PublishCalendarChange(userID int64, kind string, eventID int64)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event) {}
func (nopPublisher) PublishCalendarChange(int64, string, int64) {}

// Deps are the collaborators of a Service. Store and Tokens are required;
// everything else has a working default.
type Deps struct {
	Store      store.Store
	Tokens     *auth.Tokens
	Classifier *classifier.Classifier
	Extractor  *extractor.Extractor
	Encoder    *ics.Encoder
	PDF        pdftext.Extractor
	PDFTimeout time.Duration
	Uploads    storage.Provider
	Publisher  Publisher
	Notifier   notify.Notifier
	Generator  flashgen.Generator
	Location   *time.Location
}

// Service coordinates persistence with the text pipelines.
type Service struct {
	db         store.Store
	tokens     *auth.Tokens
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
	encoder    *ics.Encoder
	pdf        pdftext.Extractor
	pdfTimeout time.Duration
	uploads    storage.Provider
	pub        Publisher
	notifier   notify.Notifier
	gen        flashgen.Generator
	loc        *time.Location
}

// New creates a service from deps.
func New(d Deps) *Service {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Classifier == nil {
		d.Classifier = classifier.New(nil)
	}
	if d.Extractor == nil {
		d.Extractor = extractor.New(nil, d.Location)
	}
	if d.Encoder == nil {
		d.Encoder = ics.NewEncoder(d.Location)
	}
	if d.PDF == nil {
		d.PDF = pdftext.Native{}
	}
	if d.PDFTimeout <= 0 {
		d.PDFTimeout = 30 * time.Second
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Generator == nil {
		d.Generator = flashgen.Template{}
	}
	return &Service{
		db:         d.Store,
		tokens:     d.Tokens,
		classifier: d.Classifier,
		extractor:  d.Extractor,
		encoder:    d.Encoder,
		pdf:        d.PDF,
		pdfTimeout: d.PDFTimeout,
		uploads:    d.Uploads,
		pub:        d.Publisher,
		notifier:   d.Notifier,
		gen:        d.Generator,
		loc:        d.Location,
	}
}

// Ready reports whether the database answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Location is the calendar timezone used for extraction and export.
func (s *Service) Location() *time.Location {
	return s.loc
}

// RaiseAlert persists a, pushes it to the user's stream and notifies the
// user. Delivery failures are logged, not returned.
func (s *Service) RaiseAlert(ctx context.Context, a models.Alert) (*models.Alert, error) {
	created, err := s.db.CreateAlert(ctx, a)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(sse.Event{UserID: created.UserID, Type: sse.TypeAlertCreated, Data: created})

	user, err := s.db.GetUser(ctx, created.UserID)
	if err != nil {
		slog.Warn("notify lookup failed", slog.Int64("user_id", created.UserID), slog.String("error", err.Error()))
		return created, nil
	}
	if err := s.notifier.Notify(ctx, *user, *created); err != nil {
		slog.Warn("notify failed", slog.Int64("alert_id", created.ID), slog.String("error", err.Error()))
	}
	return created, nil
}
