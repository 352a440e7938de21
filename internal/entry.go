// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scholarsync/internal/api"
	"github.com/starford/scholarsync/internal/auth"
	"github.com/starford/scholarsync/internal/flashgen"
	"github.com/starford/scholarsync/internal/inbox"
	"github.com/starford/scholarsync/internal/mcpserver"
	"github.com/starford/scholarsync/internal/notify"
	"github.com/starford/scholarsync/internal/pdftext"
	"github.com/starford/scholarsync/internal/reminder"
	"github.com/starford/scholarsync/internal/service"
	"github.com/starford/scholarsync/internal/sse"
	"github.com/starford/scholarsync/internal/storage"
	"github.com/starford/scholarsync/internal/store"
)

// components are the long-lived collaborators shared by the HTTP and MCP
// entry points.
type components struct {
	db  *store.DB
	svc *service.Service
	loc *time.Location
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// build opens the database and assembles the service. pub may be nil.
func build(ctx context.Context, cfg *Config, pub service.Publisher, logger *slog.Logger) (*components, error) {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init tokens: %w", err)
	}

	pdf, err := pdftext.New(cfg.PDF.Backend)
	if err != nil {
		db.Close()
		return nil, err
	}
	if p, ok := pdf.(*pdftext.Pdftotext); ok && cfg.PDF.Binary != "" {
		p.Binary = cfg.PDF.Binary
	}

	uploads, err := storage.NewFS(cfg.Uploads.Path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init uploads: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.SMTP.Enabled {
		notifier = notify.NewEmail(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	var gen flashgen.Generator = flashgen.Template{}
	if cfg.AI.Provider == AIProviderGemini {
		g, err := flashgen.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model, flashgen.Template{})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		gen = g
	}

	svc := service.New(service.Deps{
		Store:      db,
		Tokens:     tokens,
		PDF:        pdf,
		PDFTimeout: cfg.PDF.Timeout,
		Uploads:    uploads,
		Publisher:  pub,
		Notifier:   notifier,
		Generator:  gen,
		Location:   loc,
	})

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("uploads_path", cfg.Uploads.Path),
		slog.String("pdf_backend", cfg.PDF.Backend),
		slog.String("ai_provider", cfg.AI.Provider),
		slog.String("timezone", loc.String()),
		slog.Bool("smtp_enabled", cfg.SMTP.Enabled),
		slog.Bool("reminders_enabled", cfg.Reminders.Enabled),
		slog.Bool("inbox_enabled", cfg.Inbox.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &components{db: db, svc: svc, loc: loc}, nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := build(ctx, cfg, broker, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	apiRouter := api.NewRouter(c.svc, api.RouterConfig{
		WebhookToken:   cfg.Auth.WebhookToken,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		Stream:         broker,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := c.svc.Ready(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Upcoming event reminders.
	if cfg.Reminders.Enabled {
		poller := reminder.New(c.db, c.svc, reminder.Config{
			Interval:     cfg.Reminders.Interval,
			Lookahead:    cfg.Reminders.Lookahead,
			DedupeWindow: cfg.Reminders.DedupeWindow,
		}, c.loc, logger)
		g.Go(func() error {
			return poller.Run(gCtx)
		})
	}

	// Inbox directory watcher.
	if cfg.Inbox.Enabled {
		files, err := storage.NewFS(cfg.Inbox.Path)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		w := inbox.New(files, c.svc, logger)
		g.Go(func() error {
			return w.Run(gCtx)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so background loops stop with the
// HTTP server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	c, err := build(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	if err := mcpserver.New(c.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
