package command

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/directory"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE REPOSITORY FAKE
// ══════════════════════════════════════════════════════════════════════════════

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]schedule.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uuid.UUID]schedule.Schedule)}
}

func (r *fakeScheduleRepo) seed(schedules ...*schedule.Schedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schedules {
		r.schedules[s.ID] = *s
	}
}

func (r *fakeScheduleRepo) CreateBatch(_ context.Context, schedules []*schedule.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schedules {
		r.schedules[s.ID] = *s
	}
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := s
	return &copied, nil
}

func (r *fakeScheduleRepo) ListByMentor(_ context.Context, mentorID uuid.UUID, from, to time.Time) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.Schedule
	for _, s := range r.schedules {
		if s.MentorID != mentorID {
			continue
		}
		if s.End().Before(from) || s.Start().After(to) {
			continue
		}
		copied := s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, s *schedule.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[s.ID]; !ok {
		return shared.ErrNotFound
	}
	r.schedules[s.ID] = *s
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.schedules, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY FAKE
// ══════════════════════════════════════════════════════════════════════════════

// fakeSessionRepo mimics the persistence uniqueness guarantee: a write that
// would give a schedule a second active claimant fails with ErrSlotClaimed,
// under a lock, exactly like the database's unique index decides the race.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]session.Session)}
}

func (r *fakeSessionRepo) claimedByOther(scheduleID, selfID uuid.UUID) bool {
	for _, existing := range r.sessions {
		if existing.ID != selfID && existing.ScheduleID == scheduleID && existing.Status.IsActive() {
			return true
		}
	}
	return false
}

func (r *fakeSessionRepo) Create(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Status.IsActive() && r.claimedByOther(s.ScheduleID, s.ID) {
		return shared.ErrSlotClaimed
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := s
	return &copied, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return shared.ErrNotFound
	}
	if s.Status.IsActive() && r.claimedByOther(s.ScheduleID, s.ID) {
		return shared.ErrSlotClaimed
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) ListActiveBySchedules(_ context.Context, scheduleIDs []uuid.UUID) ([]*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(scheduleIDs))
	for _, id := range scheduleIDs {
		wanted[id] = true
	}
	var out []*session.Session
	for _, s := range r.sessions {
		if s.Status.IsActive() && wanted[s.ScheduleID] {
			copied := s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListByLearner(_ context.Context, learnerID uuid.UUID, _ session.ListOptions) ([]*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*session.Session
	for _, s := range r.sessions {
		if s.LearnerID == learnerID {
			copied := s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListPendingByMentor(context.Context, uuid.UUID, session.ListOptions) ([]*session.Session, error) {
	return nil, nil
}

func (r *fakeSessionRepo) ListStartingBetween(context.Context, time.Time, time.Time) ([]session.ReminderTarget, error) {
	return nil, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DIRECTORY, EVENTS, CACHE FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeDirectory struct {
	mentors  map[uuid.UUID]*directory.Mentor
	learners map[uuid.UUID]*directory.Learner
	courses  map[uuid.UUID]*directory.Course
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		mentors:  make(map[uuid.UUID]*directory.Mentor),
		learners: make(map[uuid.UUID]*directory.Learner),
		courses:  make(map[uuid.UUID]*directory.Course),
	}
}

func (d *fakeDirectory) addCourse(mentorID uuid.UUID) *directory.Course {
	course := &directory.Course{ID: uuid.New(), MentorID: mentorID, Title: "Go Fundamentals"}
	d.courses[course.ID] = course
	return course
}

func (d *fakeDirectory) GetMentor(_ context.Context, id uuid.UUID) (*directory.Mentor, error) {
	if m, ok := d.mentors[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (d *fakeDirectory) GetLearner(_ context.Context, id uuid.UUID) (*directory.Learner, error) {
	if l, ok := d.learners[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (d *fakeDirectory) GetCourse(_ context.Context, id uuid.UUID) (*directory.Course, error) {
	if c, ok := d.courses[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingInvalidator struct {
	mu      sync.Mutex
	mentors []uuid.UUID
}

func (i *recordingInvalidator) InvalidateMentor(_ context.Context, mentorID uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mentors = append(i.mentors, mentorID)
	return nil
}

func (i *recordingInvalidator) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.mentors)
}
