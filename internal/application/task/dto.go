package task

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/task"
)

// TaskInput carries the editable fields of a task
type TaskInput struct {
	Name         string
	Description  string
	StatusID     int64
	Type         string
	GroupID      *int64
	AssignmentID *int64
	DueDate      *time.Time
	ParentTaskID *int64
	AssigneeID   string
}

// TaskInfo is the public view of a task with its assignee
type TaskInfo struct {
	ID           int64      `json:"id"`
	Name         string     `json:"task_name"`
	Description  string     `json:"description"`
	StatusID     int64      `json:"status_id"`
	StatusName   string     `json:"status_name,omitempty"`
	Type         string     `json:"type"`
	GroupID      *int64     `json:"group_id"`
	GroupName    string     `json:"group_name,omitempty"`
	CourseCode   string     `json:"course_code,omitempty"`
	AssignmentID *int64     `json:"assignment_id"`
	DueDate      *time.Time `json:"due_date"`
	ParentTaskID *int64     `json:"parent_task_id"`
	AssigneeID   string     `json:"assignee_id"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toTaskInfo(t *task.Task, assignee string) TaskInfo {
	return TaskInfo{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		StatusID:     t.StatusID,
		Type:         string(t.Type),
		GroupID:      t.GroupID,
		AssignmentID: t.AssignmentID,
		DueDate:      t.DueDate,
		ParentTaskID: t.ParentTaskID,
		AssigneeID:   assignee,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toViewInfos(views []task.View) []TaskInfo {
	out := make([]TaskInfo, 0, len(views))
	for i := range views {
		v := &views[i]
		info := toTaskInfo(&v.Task, v.AssigneeZid)
		info.StatusName = v.StatusName
		info.GroupName = v.GroupName
		info.CourseCode = v.CourseCode
		out = append(out, info)
	}
	return out
}
