package persistence

import (
	"context"

	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/review"
	"github.com/avocado/teamhub/internal/domain/task"
	"gorm.io/gorm"
)

// GormContributionRepository computes the contribution read models from the
// meeting, task, chat and review tables.
type GormContributionRepository struct {
	db *gorm.DB
}

// NewGormContributionRepository creates a new GormContributionRepository
func NewGormContributionRepository(db *gorm.DB) *GormContributionRepository {
	return &GormContributionRepository{db: db}
}

const groupContributionsSQL = `
SELECT g.id AS group_id,
       g.name AS group_name,
       g.is_evaluated AS is_evaluated,
       (SELECT COUNT(*) FROM meetings m
         WHERE m.group_id = g.id AND m.status = @completed) AS total_finished_meeting,
       (SELECT COUNT(*) FROM tasks t
         WHERE t.group_id = g.id AND t.type = @group_type) AS total_group_tasks,
       (SELECT COUNT(*) FROM group_members gm
         WHERE gm.group_id = g.id) AS total_group_member
  FROM groups g
 WHERE g.course_code = @course
 ORDER BY g.id`

// GroupContributions summarises every group of a course
func (r *GormContributionRepository) GroupContributions(ctx context.Context, courseCode string) ([]review.GroupContribution, error) {
	out := []review.GroupContribution{}
	err := r.db.WithContext(ctx).Raw(groupContributionsSQL, map[string]any{
		"completed":  string(meeting.StatusCompleted),
		"group_type": string(task.TypeGroup),
		"course":     courseCode,
	}).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

const privateContributionsSQL = `
SELECT gm.member_zid AS zid,
       COALESCE(u.name, '') AS name,
       gm.is_leader AS is_leader,
       gm.final_score AS final_score,
       gm.is_evaluated AS is_evaluated,
       (SELECT COUNT(*) FROM meeting_attendances ma
         WHERE ma.group_id = gm.group_id AND ma.member_zid = gm.member_zid
           AND ma.is_present = @present) AS attended_meetings,
       (SELECT COUNT(*) FROM messages msg JOIN channels c ON c.id = msg.channel_id
         WHERE c.group_id = gm.group_id AND msg.sender_zid = gm.member_zid) AS channel_message_count,
       (SELECT COUNT(*) FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id
         WHERE t.group_id = gm.group_id AND ta.assignee_zid = gm.member_zid
           AND t.status_id = @done) AS completed_tasks,
       (SELECT COUNT(*) FROM tasks t
         WHERE t.group_id = gm.group_id AND t.type = @group_type) AS total_group_tasks,
       COALESCE((SELECT AVG(pr.score) FROM peer_reviews pr
         WHERE pr.group_id = gm.group_id AND pr.reviewee_zid = gm.member_zid), 0) AS peer_score
  FROM group_members gm
  LEFT JOIN users u ON u.zid = gm.member_zid
 WHERE gm.group_id = @group
 ORDER BY gm.is_leader DESC, gm.member_zid`

// PrivateContributions lists each member's activity inside a group
func (r *GormContributionRepository) PrivateContributions(ctx context.Context, groupID int64) ([]review.PrivateContribution, error) {
	out := []review.PrivateContribution{}
	err := r.db.WithContext(ctx).Raw(privateContributionsSQL, map[string]any{
		"present":    true,
		"done":       task.StatusDone,
		"group_type": string(task.TypeGroup),
		"group":      groupID,
	}).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].PeerScore = out[i].PeerScore.Round(2)
	}
	return out, nil
}

const myContributionsSQL = `
SELECT gm.group_id AS group_id,
       (SELECT COUNT(*) FROM meeting_attendances ma
         WHERE ma.group_id = gm.group_id AND ma.member_zid = gm.member_zid
           AND ma.is_present = @present) AS attended,
       (SELECT COUNT(*) FROM meetings m
         WHERE m.group_id = gm.group_id AND m.status <> @canceled) AS meetings,
       (SELECT COUNT(*) FROM messages msg JOIN channels c ON c.id = msg.channel_id
         WHERE c.group_id = gm.group_id AND msg.sender_zid = gm.member_zid) AS messages,
       (SELECT COUNT(*) FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id
         WHERE t.group_id = gm.group_id AND ta.assignee_zid = gm.member_zid) AS assigned,
       (SELECT COUNT(*) FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id
         WHERE t.group_id = gm.group_id AND ta.assignee_zid = gm.member_zid
           AND t.status_id = @done) AS completed
  FROM group_members gm
 WHERE gm.member_zid = @zid
 ORDER BY gm.group_id`

// MyContributions returns the user's attendance and completion rates per group
func (r *GormContributionRepository) MyContributions(ctx context.Context, zid string) ([]review.MyContribution, error) {
	var rows []struct {
		GroupID   int64
		Attended  int64
		Meetings  int64
		Messages  int64
		Assigned  int64
		Completed int64
	}
	err := r.db.WithContext(ctx).Raw(myContributionsSQL, map[string]any{
		"present":  true,
		"canceled": string(meeting.StatusCanceled),
		"done":     task.StatusDone,
		"zid":      zid,
	}).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]review.MyContribution, len(rows))
	for i, row := range rows {
		out[i] = review.MyContribution{
			GroupID:           row.GroupID,
			MeetingAttendance: review.Rate(row.Attended, row.Meetings),
			ChannelActivity:   row.Messages,
			TaskCompletion:    review.Rate(row.Completed, row.Assigned),
		}
	}
	return out, nil
}

// ObjectiveData collects the activity evidence for an analysis: present
// meetings of the group, tasks on the assignment and messages in the group's channels.
func (r *GormContributionRepository) ObjectiveData(ctx context.Context, groupID, assignmentID int64, members []string) (*review.ObjectiveData, error) {
	data := &review.ObjectiveData{
		Attendance:      map[string]review.AttendanceStat{},
		Tasks:           map[string]review.TaskStat{},
		ChannelActivity: map[string]review.ChannelStat{},
	}
	db := r.db.WithContext(ctx)

	var totalMeetings int64
	if err := db.Table("meetings").
		Where("group_id = ? AND status <> ?", groupID, string(meeting.StatusCanceled)).
		Count(&totalMeetings).Error; err != nil {
		return nil, err
	}

	var attended []struct {
		MemberZid string
		Count     int64
	}
	if err := db.Table("meeting_attendances").
		Select("meeting_attendances.member_zid AS member_zid, COUNT(*) AS count").
		Joins("JOIN meetings ON meetings.id = meeting_attendances.meeting_id").
		Where("meetings.group_id = ? AND meetings.status <> ? AND meeting_attendances.is_present = ?",
			groupID, string(meeting.StatusCanceled), true).
		Group("meeting_attendances.member_zid").
		Scan(&attended).Error; err != nil {
		return nil, err
	}
	for _, zid := range members {
		data.Attendance[zid] = review.AttendanceStat{Total: totalMeetings}
	}
	for _, a := range attended {
		if s, ok := data.Attendance[a.MemberZid]; ok {
			s.Attended = a.Count
			data.Attendance[a.MemberZid] = s
		}
	}

	var tasks []struct {
		AssigneeZid       string
		Assigned          int64
		Completed         int64
		DescriptionLength int64
	}
	if err := db.Table("task_assignees").
		Select("task_assignees.assignee_zid AS assignee_zid, COUNT(*) AS assigned, "+
			"SUM(CASE WHEN tasks.status_id = ? THEN 1 ELSE 0 END) AS completed, "+
			"COALESCE(SUM(LENGTH(COALESCE(tasks.description, ''))), 0) AS description_length", task.StatusDone).
		Joins("JOIN tasks ON tasks.id = task_assignees.task_id").
		Where("tasks.group_id = ? AND tasks.assignment_id = ?", groupID, assignmentID).
		Group("task_assignees.assignee_zid").
		Scan(&tasks).Error; err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if _, ok := data.Attendance[t.AssigneeZid]; !ok {
			continue
		}
		data.Tasks[t.AssigneeZid] = review.TaskStat{
			Assigned:          t.Assigned,
			Completed:         t.Completed,
			DescriptionLength: t.DescriptionLength,
		}
	}

	var messages []struct {
		SenderZid string
		Count     int64
	}
	if err := db.Table("messages").
		Select("messages.sender_zid AS sender_zid, COUNT(*) AS count").
		Joins("JOIN channels ON channels.id = messages.channel_id").
		Where("channels.group_id = ?", groupID).
		Group("messages.sender_zid").
		Scan(&messages).Error; err != nil {
		return nil, err
	}
	for _, m := range messages {
		if _, ok := data.Attendance[m.SenderZid]; !ok {
			continue
		}
		data.ChannelActivity[m.SenderZid] = review.ChannelStat{MessageCount: m.Count}
	}

	data.Fill(members)
	return data, nil
}

var _ review.ContributionRepository = (*GormContributionRepository)(nil)
