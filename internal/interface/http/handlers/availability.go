package handlers

import (
	"net/http"
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/application/query"
)

// AvailabilityHandler serves the calendar read endpoints.
type AvailabilityHandler struct {
	availability *query.GetAvailabilityHandler
	bookable     *query.ListBookableSlotsHandler
}

// NewAvailabilityHandler creates the handler.
func NewAvailabilityHandler(
	availability *query.GetAvailabilityHandler,
	bookable *query.ListBookableSlotsHandler,
) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, bookable: bookable}
}

// MentorAvailability handles GET /api/v1/mentors/{id}/availability. This is
// the mentor's own calendar: every published slot with its booked state,
// bucketed by day.
func (h *AvailabilityHandler) MentorAvailability(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	days, err := h.availability.Handle(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"days": days})
}

// BookableSlots handles GET /api/v1/mentors/{id}/slots. This is the learner
// view: only open future slots, ready to book.
func (h *AvailabilityHandler) BookableSlots(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	slots, err := h.bookable.Handle(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots, "count": len(slots)})
}

// parseQuery reads the mentor ID from the path and the optional window and
// timezone from query parameters. Window bounds use RFC 3339.
func (h *AvailabilityHandler) parseQuery(w http.ResponseWriter, r *http.Request) (query.GetAvailabilityQuery, bool) {
	var q query.GetAvailabilityQuery

	mentorID, ok := pathUUID(w, r, "id")
	if !ok {
		return q, false
	}
	q.MentorID = mentorID

	params := r.URL.Query()
	if v := params.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "invalid from: must be RFC 3339")
			return q, false
		}
		q.From = t
	}
	if v := params.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "invalid to: must be RFC 3339")
			return q, false
		}
		q.To = t
	}
	if v := params.Get("tz"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			writeBadRequest(w, "invalid tz: must be an IANA timezone name")
			return q, false
		}
		q.Location = loc
	}
	return q, true
}
