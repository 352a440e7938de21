package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/starford/scholarsync/internal/apperr"
)

const defaultMaxUploadBytes = 10 << 20 // 10 MB

const msgNoEvents = "No recognizable events found in PDF."

// UploadEvents handles POST /api/events/upload (multipart/form-data, field "file").
//
//	@Summary		Import events from a PDF
//	@Tags			events
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"PDF document"
//	@Success		201		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/upload [post]
func (h *Handler) UploadEvents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("PDF file is required"))
		return
	}
	defer file.Close()

	name := filepath.Base(filepath.Clean(header.Filename))
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		writeJSON(w, http.StatusBadRequest, errorBody("only PDF files are accepted"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	imp, err := h.svc.ImportDocument(r.Context(), userID(r), name, data)
	if err != nil {
		if errors.Is(err, apperr.ErrNoEvents) {
			writeJSON(w, http.StatusBadRequest, errorBody(msgNoEvents))
			return
		}
		writeError(w, "import document", err)
		return
	}

	writeJSON(w, http.StatusCreated, ImportResponse{
		Message:  fmt.Sprintf("Imported %d events", len(imp.Events)),
		Events:   imp.Events,
		Archived: imp.Archived,
	})
}
