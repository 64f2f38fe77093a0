package meeting

import (
	"context"
	"time"
)

// View is a meeting with its assignment and group names embedded
type View struct {
	Meeting
	AssignmentName    string
	AssignmentDueDate *time.Time
	GroupName         string
}

// MeetingRepository persists meetings
type MeetingRepository interface {
	Create(ctx context.Context, m *Meeting) error
	FindByID(ctx context.Context, id int64) (*Meeting, error)
	// FindByIDForUpdate locks the meeting row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id int64) (*Meeting, error)
	FindViewsByGroup(ctx context.Context, groupID int64) ([]View, error)
	UpdateStatus(ctx context.Context, m *Meeting) error
	SetAgenda(ctx context.Context, id int64, agenda string) error
	// FindOverdueIDs lists scheduled meetings whose end time is not after now
	FindOverdueIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)
}

// AttendanceRepository persists attendance rows
type AttendanceRepository interface {
	CreateBatch(ctx context.Context, rows []Attendance) error
	// Upsert inserts or replaces the row keyed on (meeting_id, member_zid)
	Upsert(ctx context.Context, a *Attendance) error
	Find(ctx context.Context, meetingID int64, memberZid string) ([]Attendance, error)
	FindByMeeting(ctx context.Context, meetingID int64) ([]Attendance, error)
}
