package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scholarsync/internal/service"
)

// RouterConfig carries the transport settings of the API.
type RouterConfig struct {
	// WebhookToken authenticates POST /webhook/email. Empty disables the route.
	WebhookToken string
	// MaxUploadBytes caps PDF uploads. Zero means 10 MB.
	MaxUploadBytes int64
	// Stream, if non-nil, is mounted at GET /stream inside the auth group.
	Stream http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *service.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc, cfg.MaxUploadBytes)

	r := chi.NewRouter()

	// Public.
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.With(WebhookMiddleware(cfg.WebhookToken)).Post("/webhook/email", h.EmailWebhook)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(svc))

		r.Get("/auth/me", h.Me)
		r.Get("/users/me", h.Me)
		r.Put("/users/me", h.UpdateMe)
		r.Delete("/users/me", h.DeleteMe)

		r.Route("/classes", func(r chi.Router) {
			r.Get("/", h.ListClasses)
			r.Post("/", h.CreateClass)
			r.Get("/{id}", h.GetClass)
			r.Put("/{id}", h.UpdateClass)
			r.Delete("/{id}", h.DeleteClass)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.ListAlerts)
			r.Post("/", h.CreateAlert)
			r.Post("/process-email", h.ProcessEmail)
			r.Get("/{id}", h.GetAlert)
			r.Patch("/{id}/read", h.MarkAlertRead)
			r.Delete("/{id}", h.DeleteAlert)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/", h.CreateEvent)
			r.Post("/upload", h.UploadEvents)
			r.Post("/extract", h.ExtractEvents)
			r.Get("/export.ics", h.ExportCalendar)
			r.Get("/{id}", h.GetEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Get("/{id}/ics", h.ExportEvent)
		})

		r.Route("/flashcard-sets", func(r chi.Router) {
			r.Get("/", h.ListFlashcardSets)
			r.Post("/", h.CreateFlashcardSet)
			r.Post("/generate", h.GenerateFlashcardSet)
			r.Get("/{id}", h.GetFlashcardSet)
			r.Put("/{id}", h.UpdateFlashcardSet)
			r.Delete("/{id}", h.DeleteFlashcardSet)
			r.Get("/{id}/flashcards", h.ListFlashcards)
			r.Get("/{id}/export.docx", h.ExportFlashcardSet)
		})

		r.Route("/flashcards", func(r chi.Router) {
			r.Post("/", h.CreateFlashcard)
			r.Get("/set/{id}", h.ListFlashcards)
			r.Get("/{id}", h.GetFlashcard)
			r.Put("/{id}", h.UpdateFlashcard)
			r.Delete("/{id}", h.DeleteFlashcard)
			r.Post("/{id}/review", h.ReviewFlashcard)
		})

		if cfg.Stream != nil {
			r.Get("/stream", cfg.Stream.ServeHTTP)
		}
	})

	return r
}
