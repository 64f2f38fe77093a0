package meeting

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/meeting"
)

// CreateMeetingInput contains the input for scheduling a meeting
type CreateMeetingInput struct {
	GroupID      int64
	AssignmentID *int64
	Start        time.Time
	End          time.Time
	Title        string
	Goal         string
}

// AssignmentRef is the assignment embedded in a meeting listing
type AssignmentRef struct {
	Name    string     `json:"name"`
	DueDate *time.Time `json:"due_date"`
}

// GroupRef is the group embedded in a meeting listing
type GroupRef struct {
	Name string `json:"name"`
}

// MeetingInfo is the public view of a meeting
type MeetingInfo struct {
	ID           int64          `json:"id"`
	GroupID      int64          `json:"group_id"`
	AssignmentID *int64         `json:"assignment_id"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	Status       string         `json:"status"`
	Title        string         `json:"meeting_title"`
	Goal         string         `json:"goal"`
	Agenda       string         `json:"agenda"`
	Assignment   *AssignmentRef `json:"assignment,omitempty"`
	Group        *GroupRef      `json:"group,omitempty"`
}

// AttendanceInput is one member's reported participation
type AttendanceInput struct {
	MeetingID                 int64
	MemberZid                 string
	GroupID                   int64
	JoinTime                  time.Time
	LeaveTime                 time.Time
	MeetingDurationHour       float64
	ParticipationDurationHour float64
}

// AttendanceInfo is the public view of an attendance row
type AttendanceInfo struct {
	MeetingID                 int64     `json:"meeting_id"`
	MemberZid                 string    `json:"member_zid"`
	GroupID                   int64     `json:"group_id"`
	JoinTime                  time.Time `json:"join_time"`
	LeaveTime                 time.Time `json:"leave_time"`
	MeetingDurationHour       float64   `json:"meeting_duration_hour"`
	ParticipationDurationHour float64   `json:"participation_duration_hour"`
	IsPresent                 bool      `json:"is_present"`
}

// AgendaResult is a generated meeting agenda
type AgendaResult struct {
	MeetingID int64  `json:"meeting_id"`
	Agenda    string `json:"agenda"`
}

// ToMeetingInfo converts a domain Meeting to its public view
func ToMeetingInfo(m *meeting.Meeting) MeetingInfo {
	return MeetingInfo{
		ID:           m.ID,
		GroupID:      m.GroupID,
		AssignmentID: m.AssignmentID,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Status:       string(m.Status),
		Title:        m.Title,
		Goal:         m.Goal,
		Agenda:       m.Agenda,
	}
}

func toViewInfo(v *meeting.View) MeetingInfo {
	info := ToMeetingInfo(&v.Meeting)
	if v.AssignmentID != nil {
		info.Assignment = &AssignmentRef{Name: v.AssignmentName, DueDate: v.AssignmentDueDate}
	}
	info.Group = &GroupRef{Name: v.GroupName}
	return info
}

func toAttendanceInfo(a *meeting.Attendance) AttendanceInfo {
	return AttendanceInfo{
		MeetingID:                 a.MeetingID,
		MemberZid:                 a.MemberZid,
		GroupID:                   a.GroupID,
		JoinTime:                  a.JoinTime,
		LeaveTime:                 a.LeaveTime,
		MeetingDurationHour:       a.MeetingDurationHour,
		ParticipationDurationHour: a.ParticipationDurationHour,
		IsPresent:                 a.IsPresent,
	}
}
