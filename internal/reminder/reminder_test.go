package reminder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/store"
	"github.com/starford/scholarsync/internal/testutil"
)

type storeRaiser struct {
	db     *store.DB
	raised []models.Alert
}

func (r *storeRaiser) RaiseAlert(ctx context.Context, a models.Alert) (*models.Alert, error) {
	created, err := r.db.CreateAlert(ctx, a)
	if err != nil {
		return nil, err
	}
	r.raised = append(r.raised, *created)
	return created, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		start    time.Time
		location string
		want     string
		urgency  string
	}{
		{"minutes", now.Add(20 * time.Minute), "", `Your event "Lab" is scheduled in 20 minutes at 8:20 AM.`, "high"},
		{"rounds up to an hour", now.Add(45 * time.Minute), "", `Your event "Lab" is scheduled in 1 hour at 8:45 AM.`, "high"},
		{"one minute", now.Add(time.Minute), "", `Your event "Lab" is scheduled in 1 minute at 8:01 AM.`, "high"},
		{"one hour", now.Add(80 * time.Minute), "Room 4", `Your event "Lab" is scheduled in 1 hour at 9:20 AM at Room 4.`, "high"},
		{"hours", now.Add(5 * time.Hour), "", `Your event "Lab" is scheduled in 5 hours at 1:00 PM.`, "medium"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Build(models.Event{UserID: 7, Title: "Lab", Location: tc.location, StartTime: tc.start}, now, time.UTC)
			if a.Message != tc.want {
				t.Errorf("message = %q, want %q", a.Message, tc.want)
			}
			if a.Urgency != tc.urgency {
				t.Errorf("urgency = %q, want %q", a.Urgency, tc.urgency)
			}
			if a.Title != "Reminder: Lab" || a.EmailFrom != Sender || a.Type != "event_reminder" || a.UserID != 7 {
				t.Errorf("alert = %+v", a)
			}
		})
	}
}

func TestCheckRaisesOncePerEvent(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "ada@example.edu")
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, e := range []models.Event{
		{UserID: u.ID, Title: "Soon", StartTime: now.Add(2 * time.Hour)},
		{UserID: u.ID, Title: "Tomorrow", StartTime: now.Add(23 * time.Hour)},
		{UserID: u.ID, Title: "Later", StartTime: now.Add(30 * time.Hour)},
		{UserID: u.ID, Title: "Past", StartTime: now.Add(-time.Hour)},
	} {
		if _, err := db.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	r := &storeRaiser{db: db}
	p := New(db, r, Config{}, time.UTC, quietLogger(), WithClock(func() time.Time { return now }))

	n, err := p.Check(ctx)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if n != 2 {
		t.Fatalf("raised = %d, want 2", n)
	}
	if r.raised[0].Title != "Reminder: Soon" || r.raised[0].Urgency != "high" {
		t.Errorf("first = %+v", r.raised[0])
	}
	if r.raised[1].Title != "Reminder: Tomorrow" || r.raised[1].Urgency != "medium" {
		t.Errorf("second = %+v", r.raised[1])
	}

	n, err = p.Check(ctx)
	if err != nil {
		t.Fatalf("second Check: %v", err)
	}
	if n != 0 {
		t.Errorf("second pass raised = %d, want 0", n)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	db := testutil.TestDB(t)
	r := &storeRaiser{db: db}
	p := New(db, r, Config{Interval: time.Hour}, time.UTC, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
