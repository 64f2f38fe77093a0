package meeting

import "time"

// PresenceThreshold is the minimum share of the meeting a member must attend
const PresenceThreshold = 0.7

// Attendance is one member's participation in a meeting
type Attendance struct {
	MeetingID                 int64
	MemberZid                 string
	GroupID                   int64
	JoinTime                  time.Time
	LeaveTime                 time.Time
	MeetingDurationHour       float64
	ParticipationDurationHour float64
	IsPresent                 bool
}

// IsPresent applies the presence policy. A zero-length meeting has no present members.
func IsPresent(participationHours, meetingHours float64) bool {
	if meetingHours <= 0 {
		return false
	}
	return participationHours/meetingHours >= PresenceThreshold
}

// InitialAttendance creates the placeholder row written for every member at scheduling
func InitialAttendance(m *Meeting, memberZid string) Attendance {
	return Attendance{
		MeetingID: m.ID,
		MemberZid: memberZid,
		GroupID:   m.GroupID,
		JoinTime:  m.StartTime,
		LeaveTime: m.StartTime,
	}
}

// Recompute derives IsPresent from the durations
func (a *Attendance) Recompute() {
	a.IsPresent = IsPresent(a.ParticipationDurationHour, a.MeetingDurationHour)
}
