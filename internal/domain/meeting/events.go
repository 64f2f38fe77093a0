package meeting

import (
	"strconv"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// AggregateTypeMeeting is the aggregate type of meeting events
const AggregateTypeMeeting = "Meeting"

// Meeting event types
const (
	EventTypeMeetingScheduled = "MeetingScheduled"
	EventTypeMeetingCompleted = "MeetingCompleted"
)

// MeetingScheduledEvent is raised when a meeting and its attendance rows are created
type MeetingScheduledEvent struct {
	shared.BaseDomainEvent
	MeetingID int64     `json:"meeting_id"`
	GroupID   int64     `json:"group_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Attendees []string  `json:"attendees"`
}

// NewMeetingScheduledEvent creates a MeetingScheduledEvent
func NewMeetingScheduledEvent(m *Meeting, attendees []string) *MeetingScheduledEvent {
	return &MeetingScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeetingScheduled, AggregateTypeMeeting, strconv.FormatInt(m.ID, 10)),
		MeetingID:       m.ID,
		GroupID:         m.GroupID,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Attendees:       attendees,
	}
}

// MeetingCompletedEvent is raised on the scheduled to completed transition
type MeetingCompletedEvent struct {
	shared.BaseDomainEvent
	MeetingID int64 `json:"meeting_id"`
	GroupID   int64 `json:"group_id"`
	Automatic bool  `json:"automatic"`
}

// NewMeetingCompletedEvent creates a MeetingCompletedEvent
func NewMeetingCompletedEvent(m *Meeting, automatic bool) *MeetingCompletedEvent {
	return &MeetingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeetingCompleted, AggregateTypeMeeting, strconv.FormatInt(m.ID, 10)),
		MeetingID:       m.ID,
		GroupID:         m.GroupID,
		Automatic:       automatic,
	}
}
