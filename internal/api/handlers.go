package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scholarsync/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc            *service.Service
	maxUploadBytes int64
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// idParam parses the {name} URL parameter. It writes the 400 response
// itself when the value is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid "+name))
		return 0, false
	}
	return id, true
}

// Signup handles POST /api/auth/signup.
//
//	@Summary		Create an account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignupRequest	true	"Account"
//	@Success		201		{object}	service.Session
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, "signup", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Login handles POST /api/auth/login.
//
//	@Summary		Open a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	service.Session
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Me handles GET /api/auth/me and GET /api/users/me.
//
//	@Summary		Current account
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	models.User
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), userID(r))
	if err != nil {
		writeError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateMe handles PUT /api/users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), userID(r), req.Email, req.Name)
	if err != nil {
		writeError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteMe handles DELETE /api/users/me.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), userID(r)); err != nil {
		writeError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
