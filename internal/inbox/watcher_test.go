package inbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/service"
	"github.com/starford/scholarsync/internal/storage"
)

type fakeProcessor struct {
	mu  sync.Mutex
	got []service.InboundEmail
	err error
}

func (f *fakeProcessor) ProcessInbound(_ context.Context, in service.InboundEmail) (*models.Alert, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, in)
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.Alert{ID: int64(len(f.got)), Type: "cancellation"}, true, nil
}

func (f *fakeProcessor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

const sampleMail = "From: smith@uni.edu\r\nTo: ada@example.edu\r\nSubject: Heads up\r\n\r\nNo class tomorrow.\r\n"

func setupInbox(t *testing.T, proc Processor) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	files, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(files, proc, slog.New(slog.NewTextHandler(io.Discard, nil))), files.Root()
}

func writeMail(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestDrainMovesHandledFiles(t *testing.T) {
	proc := &fakeProcessor{}
	w, root := setupInbox(t, proc)
	writeMail(t, root, "a.eml", sampleMail)
	writeMail(t, root, "broken.eml", "garbage")
	writeMail(t, root, "notes.txt", "ignored")

	n, err := w.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n != 2 {
		t.Errorf("handled = %d, want 2", n)
	}
	if proc.count() != 1 {
		t.Fatalf("processed = %d, want 1", proc.count())
	}
	in := proc.got[0]
	if in.To != "ada@example.edu" || in.Subject != "Heads up" || in.Body != "No class tomorrow." {
		t.Errorf("inbound = %+v", in)
	}
	if !exists(filepath.Join(root, ProcessedDir, "a.eml")) {
		t.Error("a.eml not moved to processed")
	}
	if !exists(filepath.Join(root, FailedDir, "broken.eml")) {
		t.Error("broken.eml not moved to failed")
	}
	if !exists(filepath.Join(root, "notes.txt")) {
		t.Error("non-mail file was touched")
	}
}

func TestProcessFileFailure(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("no recipient")}
	w, root := setupInbox(t, proc)
	writeMail(t, root, "x.eml", sampleMail)

	if _, err := w.ProcessFile(context.Background(), "x.eml"); err == nil {
		t.Fatal("expected error")
	}
	if !exists(filepath.Join(root, FailedDir, "x.eml")) {
		t.Error("x.eml not moved to failed")
	}
}

func TestRunPicksUpNewFiles(t *testing.T) {
	proc := &fakeProcessor{}
	w, root := setupInbox(t, proc)
	writeMail(t, root, "existing.eml", sampleMail)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, func() bool { return proc.count() == 1 })
	writeMail(t, root, "new.eml", sampleMail)
	waitFor(t, func() bool { return exists(filepath.Join(root, ProcessedDir, "new.eml")) })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if proc.count() != 2 {
		t.Errorf("processed = %d, want 2", proc.count())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
