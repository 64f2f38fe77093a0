package models

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/meeting"
)

// MeetingModel is the persistence model for meetings
type MeetingModel struct {
	ID           int64     `gorm:"primaryKey"`
	GroupID      int64     `gorm:"not null;index"`
	AssignmentID *int64    `gorm:"index"`
	StartTime    time.Time `gorm:"not null"`
	EndTime      time.Time `gorm:"not null;index"`
	Status       string    `gorm:"type:varchar(20);not null;default:'scheduled';index"`
	Title        string    `gorm:"column:meeting_title;type:varchar(200)"`
	Goal         string    `gorm:"type:text"`
	Agenda       string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MeetingModel) TableName() string { return "meetings" }

// ToDomain converts the model to a domain Meeting
func (m *MeetingModel) ToDomain() *meeting.Meeting {
	return &meeting.Meeting{
		ID:           m.ID,
		GroupID:      m.GroupID,
		AssignmentID: m.AssignmentID,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Status:       meeting.Status(m.Status),
		Title:        m.Title,
		Goal:         m.Goal,
		Agenda:       m.Agenda,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// MeetingModelFromDomain creates a model from a domain Meeting
func MeetingModelFromDomain(m *meeting.Meeting) *MeetingModel {
	return &MeetingModel{
		ID:           m.ID,
		GroupID:      m.GroupID,
		AssignmentID: m.AssignmentID,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Status:       string(m.Status),
		Title:        m.Title,
		Goal:         m.Goal,
		Agenda:       m.Agenda,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// AttendanceModel is the persistence model for meeting attendance
type AttendanceModel struct {
	MeetingID                 int64     `gorm:"primaryKey;autoIncrement:false"`
	MemberZid                 string    `gorm:"type:varchar(50);primaryKey"`
	GroupID                   int64     `gorm:"not null;index"`
	JoinTime                  time.Time `gorm:"not null"`
	LeaveTime                 time.Time `gorm:"not null"`
	MeetingDurationHour       float64   `gorm:"not null;default:0"`
	ParticipationDurationHour float64   `gorm:"not null;default:0"`
	IsPresent                 bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AttendanceModel) TableName() string { return "meeting_attendances" }

// ToDomain converts the model to a domain Attendance
func (m *AttendanceModel) ToDomain() meeting.Attendance {
	return meeting.Attendance{
		MeetingID:                 m.MeetingID,
		MemberZid:                 m.MemberZid,
		GroupID:                   m.GroupID,
		JoinTime:                  m.JoinTime,
		LeaveTime:                 m.LeaveTime,
		MeetingDurationHour:       m.MeetingDurationHour,
		ParticipationDurationHour: m.ParticipationDurationHour,
		IsPresent:                 m.IsPresent,
	}
}

// AttendanceModelFromDomain creates a model from a domain Attendance
func AttendanceModelFromDomain(a *meeting.Attendance) *AttendanceModel {
	return &AttendanceModel{
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
