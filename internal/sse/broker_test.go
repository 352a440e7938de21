package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/scholarsync/internal/auth"
)

// drain collects every message currently buffered on ch.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe(1)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDeliversOnlyToAddressedUser(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	mine := b.Subscribe(1)
	defer b.Unsubscribe(mine)
	theirs := b.Subscribe(2)
	defer b.Unsubscribe(theirs)

	b.Publish(Event{UserID: 1, Type: TypeAlertCreated, Data: map[string]string{"title": "Class Cancelled"}})

	select {
	case msg := <-mine:
		s := string(msg)
		if !strings.Contains(s, "event: alert.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"title":"Class Cancelled"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	// ClientCount round-trips through the loop, so the publish has been handled.
	b.ClientCount()
	if got := drain(theirs); len(got) != 0 {
		t.Errorf("other user received %v", got)
	}
}

func TestPublishCalendarChangeThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe(1)
	defer b.Unsubscribe(ch)

	b.PublishCalendarChange(1, "created", 10)
	b.PublishCalendarChange(1, "updated", 10)
	b.PublishCalendarChange(1, "deleted", 11)

	time.Sleep(50 * time.Millisecond)
	calendar, changes := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, TypeCalendarUpdated) {
			calendar++
		} else {
			changes++
		}
	}
	if changes != 3 {
		t.Errorf("change events = %d, want 3", changes)
	}
	if calendar != 1 {
		t.Errorf("calendar events = %d, want 1 (throttled)", calendar)
	}
}

func TestCalendarThrottleIsPerUser(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	a := b.Subscribe(1)
	defer b.Unsubscribe(a)
	c := b.Subscribe(2)
	defer b.Unsubscribe(c)

	b.PublishCalendarChange(1, "created", 1)
	b.PublishCalendarChange(2, "created", 2)
	time.Sleep(50 * time.Millisecond)

	for name, ch := range map[string]chan []byte{"user 1": a, "user 2": c} {
		found := false
		for _, s := range drain(ch) {
			if strings.Contains(s, TypeCalendarUpdated) {
				found = true
			}
		}
		if !found {
			t.Errorf("%s missed calendar.updated", name)
		}
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(auth.WithUserID(context.Background(), 5))
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{UserID: 5, Type: TypeEventsImported, Data: map[string]int{"count": 3}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if body := w.Body.String(); !strings.Contains(body, "event: events.imported") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestSSEHandlerRequiresUser(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stream", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe(1)
	defer b.Unsubscribe(ch)

	for range 70 {
		b.Publish(Event{UserID: 1, Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe(1)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{UserID: 1, Type: TypeAlertCreated})
	b.PublishCalendarChange(1, "updated", 1)
}
