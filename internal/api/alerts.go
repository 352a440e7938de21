package api

import (
	"net/http"

	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/service"
)

const (
	msgNoUpdates    = "No important updates detected in email"
	msgAlertCreated = "Alert created from email"
)

// ListAlerts handles GET /api/alerts.
//
//	@Summary		List the user's alerts, newest first
//	@Tags			alerts
//	@Produce		json
//	@Success		200	{array}	models.Alert
//	@Security		BearerAuth
//	@Router			/alerts [get]
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.ListAlerts(r.Context(), userID(r))
	if err != nil {
		writeError(w, "list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// GetAlert handles GET /api/alerts/{id}.
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	a, err := h.svc.GetAlert(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get alert", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateAlert handles POST /api/alerts.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req AlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.CreateAlert(r.Context(), userID(r), req.model())
	if err != nil {
		writeError(w, "create alert", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// MarkAlertRead handles PATCH /api/alerts/{id}/read.
func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	a, err := h.svc.MarkAlertRead(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "mark alert read", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAlert handles DELETE /api/alerts/{id}.
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAlert(r.Context(), userID(r), id); err != nil {
		writeError(w, "delete alert", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProcessEmail handles POST /api/alerts/process-email.
//
//	@Summary		Classify an email and store an alert when it matters
//	@Tags			alerts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProcessEmailRequest	true	"Email"
//	@Success		200		{object}	EmailResponse	"No important update"
//	@Success		201		{object}	EmailResponse	"Alert created"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/alerts/process-email [post]
func (h *Handler) ProcessEmail(w http.ResponseWriter, r *http.Request) {
	var req ProcessEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, ok, err := h.svc.ProcessEmail(r.Context(), userID(r), req.ClassID, classifier.Email{
		From:    req.From,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		writeError(w, "process email", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, EmailResponse{Message: msgNoUpdates})
		return
	}
	writeJSON(w, http.StatusCreated, EmailResponse{Message: msgAlertCreated, Alert: a, Processed: true})
}

// EmailWebhook handles POST /api/webhook/email. The recipient is taken
// from userId, or looked up by the to address.
//
//	@Summary		Receive a forwarded email
//	@Tags			webhook
//	@Accept			json
//	@Produce		json
//	@Param			X-Webhook-Token	header		string				true	"Shared webhook secret"
//	@Param			body			body		WebhookEmailRequest	true	"Email"
//	@Success		200				{object}	EmailResponse
//	@Success		201				{object}	EmailResponse
//	@Failure		400				{object}	errResponse
//	@Failure		404				{object}	errResponse
//	@Router			/webhook/email [post]
func (h *Handler) EmailWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, ok, err := h.svc.ProcessInbound(r.Context(), service.InboundEmail{
		Email:   classifier.Email{From: req.From, Subject: req.Subject, Body: req.Body},
		To:      req.To,
		UserID:  req.UserID,
		ClassID: req.ClassID,
	})
	if err != nil {
		writeError(w, "email webhook", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, EmailResponse{Message: msgNoUpdates})
		return
	}
	writeJSON(w, http.StatusCreated, EmailResponse{Message: msgAlertCreated, Alert: a, Processed: true})
}
