package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/scholarsync/internal/flashgen"
	"github.com/starford/scholarsync/internal/pdftext"
	"github.com/starford/scholarsync/internal/store"
)

// AI providers.
const (
	AIProviderTemplate = "template"
	AIProviderGemini   = "gemini"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Database  DatabaseConfig    `yaml:"database"`
	Auth      AuthConfig        `yaml:"auth"`
	Calendar  CalendarConfig    `yaml:"calendar"`
	Uploads   UploadsConfig     `yaml:"uploads"`
	PDF       PDFConfig         `yaml:"pdf"`
	Reminders RemindersConfig   `yaml:"reminders"`
	SMTP      SMTPConfig        `yaml:"smtp"`
	AI        AIConfig          `yaml:"ai"`
	Inbox     InboxConfig       `yaml:"inbox"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"app", &c.App},
		{"database", &c.Database},
		{"auth", &c.Auth},
		{"calendar", &c.Calendar},
		{"uploads", &c.Uploads},
		{"pdf", &c.PDF},
		{"reminders", &c.Reminders},
		{"smtp", &c.SMTP},
		{"ai", &c.AI},
		{"inbox", &c.Inbox},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DatabaseConfig selects the SQL driver and its data source.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(store.DriverSQLite, store.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

// AuthConfig holds session and webhook credentials.
//
// An empty WebhookToken disables the inbound email webhook.
type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	WebhookToken string        `yaml:"webhook_token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.WebhookToken, validation.Length(16, 0)),
	)
}

// CalendarConfig holds the zone used to read document dates and to render
// calendar files.
type CalendarConfig struct {
	Timezone string `yaml:"timezone"`
}

// Validate validates the calendar configuration.
func (c *CalendarConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.By(func(any) error {
			_, err := c.Location()
			return err
		})),
	)
}

// Location resolves Timezone. Empty means the process local zone.
func (c *CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// UploadsConfig holds where uploaded documents are archived.
type UploadsConfig struct {
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Validate validates the uploads configuration.
func (c *UploadsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxBytes, validation.Required, validation.Min(int64(1024))),
	)
}

// PDFConfig selects the text extraction backend.
type PDFConfig struct {
	Backend string        `yaml:"backend"`
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the PDF configuration.
func (c *PDFConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(pdftext.BackendNative, pdftext.BackendPdftotext)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// RemindersConfig controls the upcoming event poller.
type RemindersConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	Lookahead    time.Duration `yaml:"lookahead"`
	DedupeWindow time.Duration `yaml:"dedupe_window"`
}

// Validate validates the reminders configuration.
func (c *RemindersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.When(c.Enabled, validation.Required, validation.Min(time.Minute))),
		validation.Field(&c.Lookahead, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.DedupeWindow, validation.When(c.Enabled, validation.Required)),
	)
}

// SMTPConfig holds outgoing mail settings for alert notifications.
type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.Port, validation.When(c.Enabled, validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&c.From, validation.When(c.Enabled, validation.Required, is.EmailFormat)),
	)
}

// AIConfig selects the flashcard generator.
type AIConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(AIProviderTemplate, AIProviderGemini)),
		validation.Field(&c.APIKey, validation.Required.When(c.Provider == AIProviderGemini).Error("is required for the gemini provider")),
	)
}

// InboxConfig controls the .eml drop directory.
type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// JWTSecret has no default and must come from the config file.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Database: DatabaseConfig{
			Driver: store.DriverSQLite,
			DSN:    "./scholarsync.db",
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Uploads: UploadsConfig{
			Path:     "./uploads",
			MaxBytes: 10 << 20,
		},
		PDF: PDFConfig{
			Backend: pdftext.BackendNative,
			Binary:  "pdftotext",
			Timeout: 30 * time.Second,
		},
		Reminders: RemindersConfig{
			Enabled:      true,
			Interval:     time.Hour,
			Lookahead:    24 * time.Hour,
			DedupeWindow: 48 * time.Hour,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		AI: AIConfig{
			Provider: AIProviderTemplate,
			Model:    flashgen.DefaultModel,
		},
		Inbox: InboxConfig{
			Path: "./inbox",
		},
	}
}
