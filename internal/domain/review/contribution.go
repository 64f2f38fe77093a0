package review

import "github.com/shopspring/decimal"

// GroupContribution summarises a group for the staff dashboard
type GroupContribution struct {
	GroupID              int64  `json:"group_id"`
	GroupName            string `json:"group_name"`
	TotalFinishedMeeting int64  `json:"total_finished_meeting"`
	TotalGroupTasks      int64  `json:"total_group_tasks"`
	TotalGroupMember     int64  `json:"total_group_member"`
	IsEvaluated          bool   `json:"is_evaluated"`
}

// PrivateContribution is one member's activity inside a group
type PrivateContribution struct {
	Zid                 string           `json:"zid"`
	Name                string           `json:"name"`
	IsLeader            bool             `json:"is_leader"`
	AttendedMeetings    int64            `json:"attended_meetings"`
	ChannelMessageCount int64            `json:"channel_message_count"`
	CompletedTasks      int64            `json:"completed_tasks"`
	TotalGroupTasks     int64            `json:"total_group_tasks"`
	PeerScore           decimal.Decimal  `json:"peer_score"`
	FinalScore          *decimal.Decimal `json:"final_score"`
	IsEvaluated         bool             `json:"is_evaluated"`
}

// MyContribution is a member's rates in one of their groups
type MyContribution struct {
	GroupID           int64   `json:"group_id"`
	MeetingAttendance float64 `json:"meeting_attendance"`
	ChannelActivity   int64   `json:"channel_activity"`
	TaskCompletion    float64 `json:"task_completion"`
}

// AttendanceStat counts the meetings a member was present at
type AttendanceStat struct {
	Attended       int64   `json:"attended"`
	Total          int64   `json:"total"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// TaskStat counts a member's tasks on an assignment. AvgDifficulty is the
// mean description length of the assigned tasks, in characters.
type TaskStat struct {
	Assigned          int64   `json:"assigned"`
	Completed         int64   `json:"completed"`
	DescriptionLength int64   `json:"-"`
	AvgDifficulty     float64 `json:"avg_difficulty"`
	CompletionRate    float64 `json:"completion_rate"`
}

// ChannelStat counts a member's messages in the group's channels
type ChannelStat struct {
	MessageCount int64 `json:"message_count"`
}

// ObjectiveData is the activity evidence sent alongside peer scores
type ObjectiveData struct {
	Attendance      map[string]AttendanceStat `json:"attendance"`
	Tasks           map[string]TaskStat       `json:"tasks"`
	ChannelActivity map[string]ChannelStat    `json:"channel_activity"`
}

// Rate returns part/total rounded to two decimals, or 0 when total is 0.
// It also serves for means, e.g. description length per task.
func Rate(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(part).Div(decimal.NewFromInt(total)).Round(2).Float64()
	return f
}

// Fill sets the derived rates and makes sure every member has an entry
func (o *ObjectiveData) Fill(members []string) {
	if o.Attendance == nil {
		o.Attendance = map[string]AttendanceStat{}
	}
	if o.Tasks == nil {
		o.Tasks = map[string]TaskStat{}
	}
	if o.ChannelActivity == nil {
		o.ChannelActivity = map[string]ChannelStat{}
	}
	for _, zid := range members {
		a := o.Attendance[zid]
		a.AttendanceRate = Rate(a.Attended, a.Total)
		o.Attendance[zid] = a

		t := o.Tasks[zid]
		t.CompletionRate = Rate(t.Completed, t.Assigned)
		t.AvgDifficulty = Rate(t.DescriptionLength, t.Assigned)
		o.Tasks[zid] = t

		o.ChannelActivity[zid] = o.ChannelActivity[zid]
	}
}
