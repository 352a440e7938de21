package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/service"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ListFlashcardSets handles GET /api/flashcard-sets.
//
//	@Summary		List the user's flashcard sets
//	@Tags			flashcards
//	@Produce		json
//	@Success		200	{array}	models.FlashcardSet
//	@Security		BearerAuth
//	@Router			/flashcard-sets [get]
func (h *Handler) ListFlashcardSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.svc.ListFlashcardSets(r.Context(), userID(r))
	if err != nil {
		writeError(w, "list flashcard sets", err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// GetFlashcardSet handles GET /api/flashcard-sets/{id}.
func (h *Handler) GetFlashcardSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	set, err := h.svc.GetFlashcardSet(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get flashcard set", err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// CreateFlashcardSet handles POST /api/flashcard-sets.
func (h *Handler) CreateFlashcardSet(w http.ResponseWriter, r *http.Request) {
	var req FlashcardSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	set, err := h.svc.CreateFlashcardSet(r.Context(), userID(r), models.FlashcardSet{
		ClassID:     req.ClassID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, "create flashcard set", err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

// UpdateFlashcardSet handles PUT /api/flashcard-sets/{id}.
func (h *Handler) UpdateFlashcardSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req FlashcardSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	set, err := h.svc.UpdateFlashcardSet(r.Context(), userID(r), id, req.Title, req.Description)
	if err != nil {
		writeError(w, "update flashcard set", err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// DeleteFlashcardSet handles DELETE /api/flashcard-sets/{id}.
func (h *Handler) DeleteFlashcardSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteFlashcardSet(r.Context(), userID(r), id); err != nil {
		writeError(w, "delete flashcard set", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateFlashcardSet handles POST /api/flashcard-sets/generate.
//
//	@Summary		Generate a flashcard set from notes or a topic
//	@Tags			flashcards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateSetRequest	true	"Source"
//	@Success		201		{object}	service.GeneratedSet
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcard-sets/generate [post]
func (h *Handler) GenerateFlashcardSet(w http.ResponseWriter, r *http.Request) {
	var req GenerateSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	gen, err := h.svc.GenerateFlashcardSet(r.Context(), userID(r), service.GenerateRequest{
		Title:       req.Title,
		Description: req.Description,
		ClassID:     req.ClassID,
		Notes:       req.Notes,
		Topic:       req.Topic,
		Count:       req.Count,
	})
	if err != nil {
		writeError(w, "generate flashcards", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Flashcards generated successfully",
		"set":        gen.Set,
		"flashcards": gen.Cards,
	})
}

// ExportFlashcardSet handles GET /api/flashcard-sets/{id}/export.docx.
//
//	@Summary		Download a set as a Word study sheet
//	@Tags			flashcards
//	@Produce		application/vnd.openxmlformats-officedocument.wordprocessingml.document
//	@Param			id	path	int	true	"Set id"
//	@Success		200	{file}	file
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcard-sets/{id}/export.docx [get]
func (h *Handler) ExportFlashcardSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if _, err := h.svc.ExportFlashcardSet(r.Context(), userID(r), id, &buf); err != nil {
		writeError(w, "export flashcard set", err)
		return
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=flashcards-"+strconv.FormatInt(id, 10)+".docx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ListFlashcards handles GET /api/flashcard-sets/{id}/flashcards and
// GET /api/flashcards/set/{id}.
func (h *Handler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	cards, err := h.svc.ListFlashcards(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "list flashcards", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// GetFlashcard handles GET /api/flashcards/{id}.
func (h *Handler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.GetFlashcard(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get flashcard", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateFlashcard handles POST /api/flashcards.
func (h *Handler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req FlashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SetID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("flashcardSetId is required"))
		return
	}
	c, err := h.svc.CreateFlashcard(r.Context(), userID(r), req.model())
	if err != nil {
		writeError(w, "create flashcard", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateFlashcard handles PUT /api/flashcards/{id}.
func (h *Handler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req FlashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateFlashcard(r.Context(), userID(r), id, req.model())
	if err != nil {
		writeError(w, "update flashcard", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteFlashcard handles DELETE /api/flashcards/{id}.
func (h *Handler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteFlashcard(r.Context(), userID(r), id); err != nil {
		writeError(w, "delete flashcard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReviewFlashcard handles POST /api/flashcards/{id}/review.
//
//	@Summary		Record a study outcome for a card
//	@Tags			flashcards
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Card id"
//	@Param			body	body		ReviewRequest	true	"Outcome"
//	@Success		200		{object}	models.Flashcard
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcards/{id}/review [post]
func (h *Handler) ReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.ReviewFlashcard(r.Context(), userID(r), id, req.Status)
	if err != nil {
		writeError(w, "review flashcard", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
