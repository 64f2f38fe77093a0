package task

import "context"

// TaskRepository persists tasks
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	// Delete returns shared.ErrNotFound when no row was removed
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Task, error)
	FindViewsByAssignee(ctx context.Context, zid string) ([]View, error)
	FindViewsByAssigneeAndCourse(ctx context.Context, zid, courseCode string) ([]View, error)
}

// AssigneeRepository persists task assignees
type AssigneeRepository interface {
	Add(ctx context.Context, a Assignee) error
	// Replace rewrites (taskID, from) to (taskID, to); shared.ErrNotFound if from is absent
	Replace(ctx context.Context, taskID int64, from, to string) error
	// Remove returns shared.ErrNotFound when the row is absent
	Remove(ctx context.Context, taskID int64, zid string) error
}
