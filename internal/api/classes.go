package api

import "net/http"

// ListClasses handles GET /api/classes.
//
//	@Summary		List the user's classes
//	@Tags			classes
//	@Produce		json
//	@Success		200	{array}	models.Class
//	@Security		BearerAuth
//	@Router			/classes [get]
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.svc.ListClasses(r.Context(), userID(r))
	if err != nil {
		writeError(w, "list classes", err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// GetClass handles GET /api/classes/{id}.
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.GetClass(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get class", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClass handles POST /api/classes.
//
//	@Summary		Create a class
//	@Tags			classes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClassRequest	true	"Class"
//	@Success		201		{object}	models.Class
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/classes [post]
func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req ClassRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.CreateClass(r.Context(), userID(r), req.model())
	if err != nil {
		writeError(w, "create class", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClass handles PUT /api/classes/{id}.
func (h *Handler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req ClassRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateClass(r.Context(), userID(r), id, req.model())
	if err != nil {
		writeError(w, "update class", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteClass handles DELETE /api/classes/{id}.
func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteClass(r.Context(), userID(r), id); err != nil {
		writeError(w, "delete class", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
