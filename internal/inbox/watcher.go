// Package inbox turns .eml files dropped into a directory into alerts.
package inbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/service"
	"github.com/starford/scholarsync/internal/storage"
)

const (
	// Ext is the extension of files the watcher picks up.
	Ext = ".eml"
	// ProcessedDir receives files that were handled, with or without an alert.
	ProcessedDir = "processed"
	// FailedDir receives files that could not be parsed or delivered.
	FailedDir = "failed"

	settleDelay = 200 * time.Millisecond
)

// Processor classifies and stores an inbound email.
type Processor interface {
	ProcessInbound(ctx context.Context, in service.InboundEmail) (*models.Alert, bool, error)
}

// Watcher processes mail files in the root of an inbox directory.
type Watcher struct {
	files  *storage.FS
	proc   Processor
	logger *slog.Logger
}

// New creates a watcher over files.
func New(files *storage.FS, proc Processor, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{files: files, proc: proc, logger: logger}
}

// ProcessFile handles one file relative to the inbox root and moves it to
// ProcessedDir or FailedDir. The returned error is the reason for a failure.
func (w *Watcher) ProcessFile(ctx context.Context, rel string) (*models.Alert, error) {
	alert, err := w.deliver(ctx, rel)
	dest := ProcessedDir
	if err != nil {
		dest = FailedDir
	}
	if mvErr := w.files.Move(rel, filepath.Join(dest, filepath.Base(rel))); mvErr != nil {
		return alert, errors.Join(err, mvErr)
	}
	return alert, err
}

func (w *Watcher) deliver(ctx context.Context, rel string) (*models.Alert, error) {
	data, err := w.files.Read(rel)
	if err != nil {
		return nil, err
	}
	msg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	alert, _, err := w.proc.ProcessInbound(ctx, service.InboundEmail{
		Email: classifier.Email{From: msg.From, Subject: msg.Subject, Body: msg.Body},
		To:    msg.To,
	})
	if err != nil {
		return nil, fmt.Errorf("inbox: process %s: %w", rel, err)
	}
	return alert, nil
}

// Drain processes every mail file currently in the inbox root and returns
// how many were handled.
func (w *Watcher) Drain(ctx context.Context) (int, error) {
	files, err := w.files.List("", Ext)
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		w.handle(ctx, f.Path)
	}
	return len(files), nil
}

func (w *Watcher) handle(ctx context.Context, rel string) {
	alert, err := w.ProcessFile(ctx, rel)
	switch {
	case err != nil:
		w.logger.Warn("inbox: message failed", slog.String("file", rel), slog.String("error", err.Error()))
	case alert != nil:
		w.logger.Info("inbox: alert created",
			slog.String("file", rel),
			slog.Int64("alert_id", alert.ID),
			slog.String("type", alert.Type))
	default:
		w.logger.Debug("inbox: no updates", slog.String("file", rel))
	}
}

// Run drains the inbox and then processes new files as they appear until
// ctx is cancelled. Files are picked up once writes to them have settled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := w.files.Root()
	if err := fw.Add(root); err != nil {
		return err
	}
	w.logger.Info("inbox: started", slog.String("root", root))

	if _, err := w.Drain(ctx); err != nil {
		w.logger.Warn("inbox: initial drain failed", slog.String("error", err.Error()))
	}

	pending := make(map[string]struct{})
	var settle *time.Timer
	var settleCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			w.logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			clear(pending)
			slices.Sort(names)
			for _, name := range names {
				if _, err := os.Stat(filepath.Join(root, name)); errors.Is(err, fs.ErrNotExist) {
					continue
				}
				w.handle(ctx, name)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Dir(ev.Name) != root || !strings.EqualFold(filepath.Ext(ev.Name), Ext) {
				continue
			}
			pending[filepath.Base(ev.Name)] = struct{}{}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleCh = settle.C
			} else {
				settle.Reset(settleDelay)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
