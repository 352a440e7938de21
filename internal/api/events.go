package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/scholarsync/internal/extractor"
)

const dateLayout = "2006-01-02"

// parseBound reads an RFC 3339 timestamp or a calendar date from the query.
// A date-only upper bound covers the whole day.
func parseBound(r *http.Request, name string, loc *time.Location, upper bool) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", name)
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	return d, nil
}

func (h *Handler) eventRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	loc := h.svc.Location()
	from, err := parseBound(r, "from", loc, false)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return time.Time{}, time.Time{}, false
	}
	to, err := parseBound(r, "to", loc, true)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// ListEvents handles GET /api/events.
//
//	@Summary		List the user's events by start time
//	@Tags			events
//	@Produce		json
//	@Param			from	query		string	false	"Earliest start (RFC 3339 or YYYY-MM-DD)"
//	@Param			to		query		string	false	"Latest start (RFC 3339 or YYYY-MM-DD)"
//	@Success		200		{array}		models.Event
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.eventRange(w, r)
	if !ok {
		return
	}
	events, err := h.svc.ListEvents(r.Context(), userID(r), from, to)
	if err != nil {
		writeError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	e, err := h.svc.GetEvent(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.CreateEvent(r.Context(), userID(r), req.model())
	if err != nil {
		writeError(w, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEvent handles PUT /api/events/{id}. Absent fields keep their values.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req EventPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.UpdateEvent(r.Context(), userID(r), id, req.model())
	if err != nil {
		writeError(w, "update event", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), userID(r), id); err != nil {
		writeError(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExtractEvents handles POST /api/events/extract. Nothing is stored.
//
//	@Summary		Preview the events found in raw text
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExtractRequest	true	"Text"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/events/extract [post]
func (h *Handler) ExtractEvents(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	found := h.svc.PreviewText(req.Text)
	if found == nil {
		found = []extractor.Candidate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": found,
		"count":  len(found),
	})
}

// ExportEvent handles GET /api/events/{id}/ics.
//
//	@Summary		Download one event as iCalendar
//	@Tags			events
//	@Produce		text/calendar
//	@Param			id	path	int	true	"Event id"
//	@Success		200	{string}	string
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id}/ics [get]
func (h *Handler) ExportEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.svc.ExportEvent(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "export event", err)
		return
	}
	writeCalendar(w, "event-"+strconv.FormatInt(id, 10)+".ics", doc)
}

// ExportCalendar handles GET /api/events/export.ics.
//
//	@Summary		Download the user's events as one iCalendar file
//	@Tags			events
//	@Produce		text/calendar
//	@Param			from	query	string	false	"Earliest start"
//	@Param			to		query	string	false	"Latest start"
//	@Success		200		{string}	string
//	@Security		BearerAuth
//	@Router			/events/export.ics [get]
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.eventRange(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.ExportCalendar(r.Context(), userID(r), from, to)
	if err != nil {
		writeError(w, "export calendar", err)
		return
	}
	writeCalendar(w, "events.ics", doc)
}

func writeCalendar(w http.ResponseWriter, filename, doc string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
