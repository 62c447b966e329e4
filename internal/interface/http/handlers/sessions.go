package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/application/command"
	"github.com/mentorhub/mentor-scheduling/internal/application/query"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"

	"github.com/google/uuid"
)

// SessionHandler serves the booking lifecycle endpoints.
type SessionHandler struct {
	book       *command.BookSessionHandler
	decide     *command.DecideSessionHandler
	reschedule *command.RescheduleSessionHandler
	cancel     *command.CancelSessionHandler
	complete   *command.CompleteSessionHandler
	list       *query.ListSessionsHandler
}

// NewSessionHandler creates the handler.
func NewSessionHandler(
	book *command.BookSessionHandler,
	decide *command.DecideSessionHandler,
	reschedule *command.RescheduleSessionHandler,
	cancel *command.CancelSessionHandler,
	complete *command.CompleteSessionHandler,
	list *query.ListSessionsHandler,
) *SessionHandler {
	return &SessionHandler{
		book:       book,
		decide:     decide,
		reschedule: reschedule,
		cancel:     cancel,
		complete:   complete,
		list:       list,
	}
}

type sessionResponse struct {
	ID                uuid.UUID  `json:"id"`
	LearnerID         uuid.UUID  `json:"learner_id"`
	CourseID          uuid.UUID  `json:"course_id"`
	ScheduleID        uuid.UUID  `json:"schedule_id"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	PendingScheduleID *uuid.UUID `json:"pending_schedule_id,omitempty"`
	RescheduleNotes   string     `json:"reschedule_notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:                s.ID,
		LearnerID:         s.LearnerID,
		CourseID:          s.CourseID,
		ScheduleID:        s.ScheduleID,
		Type:              string(s.Type),
		Status:            string(s.Status),
		PendingScheduleID: s.PendingScheduleID,
		RescheduleNotes:   s.RescheduleNotes,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type bookSessionRequest struct {
	LearnerID  uuid.UUID `json:"learner_id" validate:"required"`
	CourseID   uuid.UUID `json:"course_id" validate:"required"`
	ScheduleID uuid.UUID `json:"schedule_id" validate:"required"`
	Type       string    `json:"type" validate:"required,oneof=one_on_one group"`
}

// Book handles POST /api/v1/sessions. A concurrent booking race on the same
// slot resolves to exactly one winner; the loser gets a 409.
func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booked, err := h.book.Handle(r.Context(), command.BookSessionCommand{
		LearnerID:  req.LearnerID,
		CourseID:   req.CourseID,
		ScheduleID: req.ScheduleID,
		Type:       session.Type(req.Type),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(booked))
}

type decideSessionRequest struct {
	MentorID uuid.UUID `json:"mentor_id" validate:"required"`
	Approve  *bool     `json:"approve" validate:"required"`
}

// Decide handles POST /api/v1/sessions/{id}/decision.
func (h *SessionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req decideSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	decided, err := h.decide.Handle(r.Context(), command.DecideSessionCommand{
		SessionID: id,
		MentorID:  req.MentorID,
		Approve:   *req.Approve,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(decided))
}

type rescheduleSessionRequest struct {
	MentorID      uuid.UUID `json:"mentor_id" validate:"required"`
	NewScheduleID uuid.UUID `json:"new_schedule_id" validate:"required"`
	Notes         string    `json:"notes" validate:"max=200"`
}

// Reschedule handles POST /api/v1/sessions/{id}/reschedule. The original
// slot stays claimed until the learner confirms.
func (h *SessionHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req rescheduleSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	moved, err := h.reschedule.Handle(r.Context(), command.RescheduleSessionCommand{
		SessionID:     id,
		MentorID:      req.MentorID,
		NewScheduleID: req.NewScheduleID,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(moved))
}

// ConfirmReschedule handles POST /api/v1/sessions/{id}/reschedule/confirm.
func (h *SessionHandler) ConfirmReschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	confirmed, err := h.reschedule.Confirm(r.Context(), command.ConfirmRescheduleCommand{SessionID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(confirmed))
}

// Cancel handles POST /api/v1/sessions/{id}/cancel.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	cancelled, err := h.cancel.Handle(r.Context(), command.CancelSessionCommand{SessionID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(cancelled))
}

// Complete handles POST /api/v1/sessions/{id}/complete. Completing an
// already completed session is a no-op success.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	completed, err := h.complete.Handle(r.Context(), command.CompleteSessionCommand{SessionID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(completed))
}

// ListByLearner handles GET /api/v1/learners/{id}/sessions.
func (h *SessionHandler) ListByLearner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sessions, err := h.list.ByLearner(r.Context(), id, listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionListResponse(sessions))
}

// ListPendingByMentor handles GET /api/v1/mentors/{id}/sessions/pending.
func (h *SessionHandler) ListPendingByMentor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sessions, err := h.list.PendingByMentor(r.Context(), id, listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionListResponse(sessions))
}

func sessionListResponse(sessions []*session.Session) map[string]interface{} {
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return map[string]interface{}{"sessions": out, "count": len(out)}
}

func listOptions(r *http.Request) session.ListOptions {
	var opts session.ListOptions
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	return opts
}
