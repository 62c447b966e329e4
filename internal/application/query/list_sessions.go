package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// ListSessionsHandler serves the session list views: a learner's booking
// history and a mentor's queue of pending requests.
type ListSessionsHandler struct {
	sessions session.Repository
}

// NewListSessionsHandler creates the handler.
func NewListSessionsHandler(sessions session.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{sessions: sessions}
}

// ByLearner returns the learner's sessions, newest first.
func (h *ListSessionsHandler) ByLearner(ctx context.Context, learnerID uuid.UUID, opts session.ListOptions) ([]*session.Session, error) {
	if learnerID == uuid.Nil {
		return nil, shared.NewDomainError("session", "ListByLearner", shared.ErrInvalidID, "learner id is required")
	}
	opts.Normalize()
	return h.sessions.ListByLearner(ctx, learnerID, opts)
}

// PendingByMentor returns the mentor's pending requests, oldest first.
func (h *ListSessionsHandler) PendingByMentor(ctx context.Context, mentorID uuid.UUID, opts session.ListOptions) ([]*session.Session, error) {
	if mentorID == uuid.Nil {
		return nil, shared.NewDomainError("session", "ListPendingByMentor", shared.ErrInvalidID, "mentor id is required")
	}
	opts.Normalize()
	return h.sessions.ListPendingByMentor(ctx, mentorID, opts)
}
