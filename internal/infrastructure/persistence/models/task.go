package models

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/task"
)

// TaskModel is the persistence model for tasks
type TaskModel struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"type:varchar(200);not null"`
	Description  string `gorm:"type:text"`
	StatusID     int64  `gorm:"not null"`
	Type         string `gorm:"type:varchar(10);not null"`
	GroupID      *int64 `gorm:"index"`
	AssignmentID *int64 `gorm:"index"`
	DueDate      *time.Time
	ParentTaskID *int64
	CreatedBy    string    `gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string { return "tasks" }

// ToDomain converts the model to a domain Task
func (m *TaskModel) ToDomain() *task.Task {
	return &task.Task{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		StatusID:     m.StatusID,
		Type:         task.Type(m.Type),
		GroupID:      m.GroupID,
		AssignmentID: m.AssignmentID,
		DueDate:      m.DueDate,
		ParentTaskID: m.ParentTaskID,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// TaskModelFromDomain creates a model from a domain Task
func TaskModelFromDomain(t *task.Task) *TaskModel {
	return &TaskModel{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		StatusID:     t.StatusID,
		Type:         string(t.Type),
		GroupID:      t.GroupID,
		AssignmentID: t.AssignmentID,
		DueDate:      t.DueDate,
		ParentTaskID: t.ParentTaskID,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// TaskAssigneeModel is the persistence model for task assignees
type TaskAssigneeModel struct {
	TaskID      int64  `gorm:"primaryKey;autoIncrement:false"`
	AssigneeZid string `gorm:"type:varchar(50);primaryKey;index"`
}

// TableName returns the table name for GORM
func (TaskAssigneeModel) TableName() string { return "task_assignees" }

// TaskViewRow is the scan target of the worklog join
type TaskViewRow struct {
	TaskModel
	AssigneeZid string
	StatusName  string
	CourseCode  string
	GroupName   string
}

// ToDomain converts the row to a task View
func (r *TaskViewRow) ToDomain() task.View {
	return task.View{
		Task:        *r.TaskModel.ToDomain(),
		AssigneeZid: r.AssigneeZid,
		StatusName:  r.StatusName,
		CourseCode:  r.CourseCode,
		GroupName:   r.GroupName,
	}
}
