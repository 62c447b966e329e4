package handlers

import (
	"net/http"
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/application/command"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"

	"github.com/google/uuid"
)

// ScheduleHandler serves the mentor schedule management endpoints.
type ScheduleHandler struct {
	create *command.CreateScheduleHandler
	edit   *command.EditScheduleHandler
	delete *command.DeleteScheduleHandler
}

// NewScheduleHandler creates the handler.
func NewScheduleHandler(
	create *command.CreateScheduleHandler,
	edit *command.EditScheduleHandler,
	del *command.DeleteScheduleHandler,
) *ScheduleHandler {
	return &ScheduleHandler{create: create, edit: edit, delete: del}
}

type timeBlockRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

type createScheduleRequest struct {
	MentorID    uuid.UUID          `json:"mentor_id" validate:"required"`
	Blocks      []timeBlockRequest `json:"blocks" validate:"required,min=1,dive"`
	Repeating   bool               `json:"repeating"`
	RepeatWeeks int                `json:"repeat_weeks" validate:"omitempty,min=1,max=52"`
}

type scheduleResponse struct {
	ID        uuid.UUID `json:"id"`
	MentorID  uuid.UUID `json:"mentor_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

func toScheduleResponse(s *schedule.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:        s.ID,
		MentorID:  s.MentorID,
		Start:     s.Start(),
		End:       s.End(),
		CreatedAt: s.CreatedAt,
	}
}

// Create handles POST /api/v1/schedules. The whole batch is accepted or
// rejected as one unit; a rejection reports every offending block.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	blocks := make([]schedule.TimeBlock, 0, len(req.Blocks))
	for _, b := range req.Blocks {
		blocks = append(blocks, schedule.TimeBlock{Start: b.Start, End: b.End})
	}

	created, err := h.create.Handle(r.Context(), command.CreateScheduleCommand{
		MentorID:    req.MentorID,
		Blocks:      blocks,
		Repeating:   req.Repeating,
		RepeatWeeks: req.RepeatWeeks,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]scheduleResponse, 0, len(created))
	for _, s := range created {
		out = append(out, toScheduleResponse(s))
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"schedules": out})
}

type editScheduleRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

// Edit handles PUT /api/v1/schedules/{id}. Slots with an active claim cannot
// be moved.
func (h *ScheduleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req editScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.edit.Handle(r.Context(), command.EditScheduleCommand{
		ScheduleID: id,
		Block:      schedule.TimeBlock{Start: req.Start, End: req.End},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(updated))
}

// Delete handles DELETE /api/v1/schedules/{id}.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.delete.Handle(r.Context(), command.DeleteScheduleCommand{ScheduleID: id}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
