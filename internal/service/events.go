package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/scholarsync/internal/apperr"
	"github.com/starford/scholarsync/internal/extractor"
	"github.com/starford/scholarsync/internal/ics"
	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/sse"
	"github.com/starford/scholarsync/internal/store"
)

// Import is the outcome of a document import.
type Import struct {
	Events   []models.Event `json:"events"`
	Archived string         `json:"archived,omitempty"`
}

// ListEvents returns the user's events, optionally bounded by start time.
func (s *Service) ListEvents(ctx context.Context, userID int64, from, to time.Time) ([]models.Event, error) {
	return s.db.ListEvents(ctx, userID, store.EventFilter{From: from, To: to})
}

// GetEvent returns one of the user's events.
func (s *Service) GetEvent(ctx context.Context, userID, id int64) (*models.Event, error) {
	return s.db.GetEvent(ctx, userID, id)
}

// CreateEvent stores a manually entered event.
func (s *Service) CreateEvent(ctx context.Context, userID int64, e models.Event) (*models.Event, error) {
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return nil, fmt.Errorf("end_time before start_time: %w", apperr.ErrInvalidInput)
	}
	e.UserID = userID
	e.Source = models.SourceManual
	created, err := s.db.CreateEvent(ctx, e)
	if err != nil {
		return nil, err
	}
	s.pub.PublishCalendarChange(userID, "created", created.ID)
	return created, nil
}

// UpdateEvent applies a partial update to one of the user's events.
func (s *Service) UpdateEvent(ctx context.Context, userID, id int64, p models.EventPatch) (*models.Event, error) {
	cur, err := s.db.GetEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	start, end := cur.StartTime, cur.EndTime
	if p.StartTime != nil {
		start = *p.StartTime
	}
	if p.EndTime != nil {
		end = p.EndTime
	}
	if end != nil && end.Before(start) {
		return nil, fmt.Errorf("end_time before start_time: %w", apperr.ErrInvalidInput)
	}
	updated, err := s.db.UpdateEvent(ctx, userID, id, p)
	if err != nil {
		return nil, err
	}
	s.pub.PublishCalendarChange(userID, "updated", id)
	return updated, nil
}

// DeleteEvent removes one of the user's events.
func (s *Service) DeleteEvent(ctx context.Context, userID, id int64) error {
	if err := s.db.DeleteEvent(ctx, userID, id); err != nil {
		return err
	}
	s.pub.PublishCalendarChange(userID, "deleted", id)
	return nil
}

// PreviewText runs the extractor over text without persisting anything.
func (s *Service) PreviewText(text string) []extractor.Candidate {
	return s.extractor.ExtractAll(text)
}

// ImportDocument extracts text from an uploaded PDF, archives the upload,
// and stores one event per recognized line. A document without any
// recognizable date yields apperr.ErrNoEvents.
func (s *Service) ImportDocument(ctx context.Context, userID int64, filename string, data []byte) (*Import, error) {
	tctx, cancel := context.WithTimeout(ctx, s.pdfTimeout)
	defer cancel()
	text, err := s.pdf.ExtractText(tctx, data)
	if err != nil {
		return nil, err
	}

	out := &Import{}
	created := false
	if s.uploads != nil {
		ext := strings.ToLower(filepath.Ext(filename))
		if ext == "" {
			ext = ".pdf"
		}
		path, fresh, err := s.uploads.Archive(data, ext)
		if err != nil {
			slog.Warn("archive upload failed", slog.String("file", filename), slog.String("error", err.Error()))
		} else {
			out.Archived, created = path, fresh
		}
	}

	events, err := s.importText(ctx, userID, text)
	if err != nil {
		// An archive shared with an earlier upload stays.
		if created {
			if derr := s.uploads.Delete(out.Archived); derr != nil {
				slog.Warn("remove archive failed", slog.String("path", out.Archived), slog.String("error", derr.Error()))
			}
		}
		return nil, err
	}
	out.Events = events
	slog.Info("document imported",
		slog.Int64("user_id", userID),
		slog.String("file", filename),
		slog.Int("events", len(events)))
	return out, nil
}

func (s *Service) importText(ctx context.Context, userID int64, text string) ([]models.Event, error) {
	var created []models.Event
	for c := range s.extractor.Extract(text) {
		e, err := s.db.CreateEvent(ctx, models.Event{
			UserID:      userID,
			Title:       c.Title,
			Description: c.Description,
			StartTime:   c.StartTime,
			AllDay:      c.AllDay,
			Source:      c.Source,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *e)
	}
	if len(created) == 0 {
		return nil, apperr.ErrNoEvents
	}
	s.pub.Publish(sse.Event{
		UserID: userID,
		Type:   sse.TypeEventsImported,
		Data:   map[string]int{"count": len(created)},
	})
	s.pub.PublishCalendarChange(userID, "created", created[0].ID)
	return created, nil
}

// ExportEvent renders one of the user's events as an iCalendar document.
func (s *Service) ExportEvent(ctx context.Context, userID, id int64) (string, error) {
	e, err := s.db.GetEvent(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return s.encoder.EncodeSingle(toICS(*e))
}

// ExportCalendar renders the user's events, optionally bounded by start
// time, as one iCalendar document.
func (s *Service) ExportCalendar(ctx context.Context, userID int64, from, to time.Time) (string, error) {
	events, err := s.db.ListEvents(ctx, userID, store.EventFilter{From: from, To: to})
	if err != nil {
		return "", err
	}
	out := make([]ics.Event, len(events))
	for i, e := range events {
		out[i] = toICS(e)
	}
	return s.encoder.EncodeMany(out)
}

func toICS(e models.Event) ics.Event {
	return ics.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
	}
}
