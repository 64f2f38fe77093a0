package meeting

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Status is the lifecycle state of a meeting
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// ParseStatus validates a status string
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return Status(s), nil
	}
	return "", shared.ErrInvalidInput.WithMessage("Invalid status value")
}

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Meeting is a scheduled group meeting
type Meeting struct {
	shared.EventRecorder
	ID           int64
	GroupID      int64
	AssignmentID *int64
	StartTime    time.Time
	EndTime      time.Time
	Status       Status
	Title        string
	Goal         string
	Agenda       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewMeeting creates a scheduled meeting. End must be strictly after start.
func NewMeeting(groupID int64, assignmentID *int64, start, end time.Time, title, goal string) (*Meeting, error) {
	if groupID <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("group_id must be positive")
	}
	if !end.After(start) {
		return nil, shared.ErrInvalidInput.WithMessage("End time must be greater than start time.")
	}
	now := time.Now()
	return &Meeting{
		GroupID:      groupID,
		AssignmentID: assignmentID,
		StartTime:    start,
		EndTime:      end,
		Status:       StatusScheduled,
		Title:        title,
		Goal:         goal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// DurationHours is the scheduled length in hours
func (m *Meeting) DurationHours() float64 {
	return m.EndTime.Sub(m.StartTime).Hours()
}

// IsOverdue reports whether a scheduled meeting has passed its end time
func (m *Meeting) IsOverdue(now time.Time) bool {
	return m.Status == StatusScheduled && !now.Before(m.EndTime)
}

// TransitionTo moves the meeting to next.
// scheduled may become completed or canceled; setting the current value is a no-op.
// It returns whether the status changed.
func (m *Meeting) TransitionTo(next Status, automatic bool) (bool, error) {
	if m.Status == next {
		return false, nil
	}
	if m.Status.IsTerminal() || next == StatusScheduled {
		return false, shared.ErrInvalidState.WithMessage(
			"Cannot change meeting status from " + string(m.Status) + " to " + string(next))
	}

	m.Status = next
	m.UpdatedAt = time.Now()
	if next == StatusCompleted {
		m.AddDomainEvent(NewMeetingCompletedEvent(m, automatic))
	}
	return true, nil
}
