package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/scholarsync/internal/apperr"
	"github.com/starford/scholarsync/internal/auth"
	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/sse"
	"github.com/starford/scholarsync/internal/storage"
	"github.com/starford/scholarsync/internal/store"
	"github.com/starford/scholarsync/internal/testutil"
)

type recordingPublisher struct {
	mu       sync.Mutex
	events   []sse.Event
	calendar []string
}

func (p *recordingPublisher) Publish(e sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) PublishCalendarChange(_ int64, kind string, _ int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calendar = append(p.calendar, kind)
}

type recordingNotifier struct {
	sent []models.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, _ models.User, a models.Alert) error {
	n.sent = append(n.sent, a)
	return nil
}

type fakePDF struct {
	text string
	err  error
}

func (f fakePDF) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fixture struct {
	svc      *Service
	db       *store.DB
	pub      *recordingPublisher
	notifier *recordingNotifier
	uploads  *storage.FS
}

func newFixture(t *testing.T, pdf fakePDF) *fixture {
	t.Helper()
	db := testutil.TestDB(t)
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	uploads, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{db: db, pub: &recordingPublisher{}, notifier: &recordingNotifier{}, uploads: uploads}
	f.svc = New(Deps{
		Store:     db,
		Tokens:    tokens,
		PDF:       pdf,
		Uploads:   uploads,
		Publisher: f.pub,
		Notifier:  f.notifier,
		Location:  time.UTC,
	})
	return f
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t, fakePDF{})
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "ada@example.edu", "Ada", "12345"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("short password err = %v", err)
	}
	sess, err := f.svc.Signup(ctx, " Ada@Example.edu ", "Ada", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if sess.User.Email != "ada@example.edu" || sess.Token == "" {
		t.Errorf("session = %+v", sess)
	}
	if _, err := f.svc.Signup(ctx, "ada@example.edu", "Ada", "hunter22"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate signup err = %v", err)
	}

	if _, err := f.svc.Login(ctx, "ada@example.edu", "wrong-pass"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.edu", "hunter22"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
	login, err := f.svc.Login(ctx, "ADA@example.edu", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := f.svc.Authenticate(login.Token)
	if err != nil || id != sess.User.ID {
		t.Errorf("Authenticate = %d, %v; want %d", id, err, sess.User.ID)
	}
}

func TestProcessEmail(t *testing.T) {
	f := newFixture(t, fakePDF{})
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "ada@example.edu")

	a, ok, err := f.svc.ProcessEmail(ctx, u.ID, nil, classifier.Email{From: "prof@uni.edu", Subject: "hi", Body: "see you in class"})
	if err != nil || ok || a != nil {
		t.Fatalf("no-match = %v, %v, %v", a, ok, err)
	}

	a, ok, err = f.svc.ProcessEmail(ctx, u.ID, nil, classifier.Email{
		From: "prof@uni.edu", Subject: "Update", Body: "The midterm exam rescheduled to Friday",
	})
	if err != nil || !ok {
		t.Fatalf("ProcessEmail = %v, %v", ok, err)
	}
	if a.Type != "exam_change" || a.Urgency != "high" || a.EmailFrom != "prof@uni.edu" {
		t.Errorf("alert = %+v", a)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].Type != sse.TypeAlertCreated || f.pub.events[0].UserID != u.ID {
		t.Errorf("published = %+v", f.pub.events)
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(f.notifier.sent))
	}

	other := testutil.SeedUser(t, f.db, "other@example.edu")
	foreign, _ := f.db.CreateClass(ctx, models.Class{UserID: other.ID, Name: "Art"})
	if _, _, err := f.svc.ProcessEmail(ctx, u.ID, &foreign.ID, classifier.Email{Body: "no class today"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign class err = %v, want ErrNotFound", err)
	}
}

func TestProcessInboundResolvesRecipient(t *testing.T) {
	f := newFixture(t, fakePDF{})
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "ada@example.edu")
	match := classifier.Email{From: "ta@uni.edu", Subject: "Homework", Body: "Homework due Monday"}

	a, ok, err := f.svc.ProcessInbound(ctx, InboundEmail{Email: match, To: "Ada Lovelace <ADA@example.edu>"})
	if err != nil || !ok || a.UserID != u.ID {
		t.Fatalf("by To = %+v, %v, %v", a, ok, err)
	}

	if _, _, err := f.svc.ProcessInbound(ctx, InboundEmail{Email: match, To: "ghost@example.edu"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown recipient err = %v", err)
	}
	if _, _, err := f.svc.ProcessInbound(ctx, InboundEmail{Email: match}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("missing recipient err = %v", err)
	}
	missing := int64(999)
	if _, _, err := f.svc.ProcessInbound(ctx, InboundEmail{Email: match, UserID: &missing}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown user id err = %v", err)
	}

	_, ok, err = f.svc.ProcessInbound(ctx, InboundEmail{Email: classifier.Email{Subject: "lunch?", Body: "pizza"}})
	if err != nil || ok {
		t.Errorf("no-match without recipient = %v, %v; want false, nil", ok, err)
	}
}

func TestImportDocument(t *testing.T) {
	text := "Course Schedule\nMidterm on October 5, 2024 at 2:30 PM\nOffice hours TBD\nQuiz 9/3/25 10:00 AM\n"
	f := newFixture(t, fakePDF{text: text})
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "ada@example.edu")

	imp, err := f.svc.ImportDocument(ctx, u.ID, "Syllabus.PDF", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if len(imp.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(imp.Events))
	}
	first := imp.Events[0]
	if first.Title != "Midterm on" || first.Source != models.SourcePDF || first.Description != "Midterm on October 5, 2024 at 2:30 PM" {
		t.Errorf("first = %+v", first)
	}
	if want := time.Date(2024, 10, 5, 14, 30, 0, 0, time.UTC); !first.StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", first.StartTime, want)
	}
	if !strings.HasSuffix(imp.Archived, ".pdf") {
		t.Errorf("archived = %q", imp.Archived)
	}
	if _, err := f.uploads.Read(imp.Archived); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	var imported bool
	for _, e := range f.pub.events {
		if e.Type == sse.TypeEventsImported {
			imported = true
		}
	}
	if !imported {
		t.Error("events.imported not published")
	}
}

func TestImportDocumentWithoutEvents(t *testing.T) {
	f := newFixture(t, fakePDF{text: "Welcome to the course\nNo dates here"})
	u := testutil.SeedUser(t, f.db, "ada@example.edu")
	if _, err := f.svc.ImportDocument(context.Background(), u.ID, "a.pdf", []byte("x")); !errors.Is(err, apperr.ErrNoEvents) {
		t.Fatalf("err = %v, want ErrNoEvents", err)
	}
	events, _ := f.svc.ListEvents(context.Background(), u.ID, time.Time{}, time.Time{})
	if len(events) != 0 {
		t.Errorf("events stored = %d", len(events))
	}
	sum := storage.Checksum([]byte("x"))
	if _, err := f.uploads.Read(filepath.Join(sum[:2], sum+".pdf")); err == nil {
		t.Error("archive left behind after failed import")
	}
}

func TestImportDocumentPropagatesExtractionError(t *testing.T) {
	f := newFixture(t, fakePDF{err: apperr.ErrInvalidInput})
	u := testutil.SeedUser(t, f.db, "ada@example.edu")
	if _, err := f.svc.ImportDocument(context.Background(), u.ID, "a.pdf", []byte("x")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestEventLifecycleAndExport(t *testing.T) {
	f := newFixture(t, fakePDF{})
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "ada@example.edu")
	other := testutil.SeedUser(t, f.db, "other@example.edu")

	start := time.Date(2025, 2, 10, 13, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	e, err := f.svc.CreateEvent(ctx, u.ID, models.Event{Title: "Lab", Location: "B12", StartTime: start, EndTime: &end})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	before := start.Add(-time.Hour)
	if _, err := f.svc.UpdateEvent(ctx, u.ID, e.ID, models.EventPatch{EndTime: &before}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("end-before-start err = %v", err)
	}
	if _, err := f.svc.CreateEvent(ctx, u.ID, models.Event{Title: "Bad", StartTime: start, EndTime: &before}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("create end-before-start err = %v", err)
	}

	doc, err := f.svc.ExportEvent(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("ExportEvent: %v", err)
	}
	if !strings.Contains(doc, "SUMMARY:Lab") || !strings.Contains(doc, "DTEND:20250210T140000Z") {
		t.Errorf("ics = %q", doc)
	}
	if _, err := f.svc.ExportEvent(ctx, other.ID, e.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign export err = %v", err)
	}

	_, _ = f.svc.CreateEvent(ctx, u.ID, models.Event{Title: "Seminar", StartTime: start.AddDate(0, 0, 1)})
	all, err := f.svc.ExportCalendar(ctx, u.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ExportCalendar: %v", err)
	}
	if n := strings.Count(all, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("VEVENT count = %d, want 2", n)
	}

	if err := f.svc.DeleteEvent(ctx, u.ID, e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if got := strings.Join(f.pub.calendar, ","); got != "created,created,deleted" {
		t.Errorf("calendar changes = %q", got)
	}
}

func TestGenerateFlashcardSet(t *testing.T) {
	f := newFixture(t, fakePDF{})
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "ada@example.edu")

	if _, err := f.svc.GenerateFlashcardSet(ctx, u.ID, GenerateRequest{Title: "Empty"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("no source err = %v", err)
	}

	gen, err := f.svc.GenerateFlashcardSet(ctx, u.ID, GenerateRequest{Topic: "Thermodynamics", Count: 3})
	if err != nil {
		t.Fatalf("GenerateFlashcardSet: %v", err)
	}
	if gen.Set.Title != "Thermodynamics" || gen.Set.CardCount != 3 || len(gen.Cards) != 3 {
		t.Errorf("generated = %+v", gen)
	}

	var buf bytes.Buffer
	if _, err := f.svc.ExportFlashcardSet(ctx, u.ID, gen.Set.ID, &buf); err != nil {
		t.Fatalf("ExportFlashcardSet: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("export is not a docx container")
	}

	if _, err := f.svc.ReviewFlashcard(ctx, u.ID, gen.Cards[0].ID, "maybe"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad review status err = %v", err)
	}
	card, err := f.svc.ReviewFlashcard(ctx, u.ID, gen.Cards[0].ID, models.ReviewGotIt)
	if err != nil || card.Mastery != 10 {
		t.Errorf("review = %+v, %v", card, err)
	}
}
