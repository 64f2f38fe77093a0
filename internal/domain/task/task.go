package task

import (
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Type decides who may be assigned a task
type Type string

const (
	TypePrivate Type = "Private"
	TypeGroup   Type = "Group"
)

// StatusDone is the seeded id of the "Done" status
const StatusDone int64 = 3

// ParseType validates a task type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePrivate, TypeGroup:
		return Type(s), nil
	}
	return "", shared.ErrInvalidInput.WithMessage("type must be Private or Group")
}

// Task is a unit of work on the worklog
type Task struct {
	ID           int64
	Name         string
	Description  string
	StatusID     int64
	Type         Type
	GroupID      *int64
	AssignmentID *int64
	DueDate      *time.Time
	ParentTaskID *int64
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignee links a task to one user
type Assignee struct {
	TaskID      int64
	AssigneeZid string
}

// View is a task joined with its status, course and group for worklog listings
type View struct {
	Task
	AssigneeZid string
	StatusName  string
	CourseCode  string
	GroupName   string
}

// Validate checks the fields and the type invariant:
// a Group task has a group, a Private task has none.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return shared.ErrMissingFields.WithMessage("Missing required fields: task_name")
	}
	if t.StatusID <= 0 {
		return shared.ErrMissingFields.WithMessage("Missing required fields: status_id")
	}
	switch t.Type {
	case TypeGroup:
		if t.GroupID == nil {
			return shared.ErrInvalidInput.WithMessage("Group tasks require a group_id")
		}
	case TypePrivate:
		if t.GroupID != nil {
			return shared.ErrInvalidInput.WithMessage("Private tasks cannot belong to a group")
		}
	default:
		return shared.ErrInvalidInput.WithMessage("type must be Private or Group")
	}
	if t.ParentTaskID != nil && t.ID != 0 && *t.ParentTaskID == t.ID {
		return shared.ErrInvalidInput.WithMessage("A task cannot be its own parent")
	}
	return nil
}

// ResolveAssignee picks the assignee for a task created or edited by creator.
// Private tasks always belong to the creator. Group tasks need an explicit
// assignee; the caller checks that the assignee is in the group.
func ResolveAssignee(t Type, creator, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	switch t {
	case TypePrivate:
		if requested != "" && requested != creator {
			return "", shared.ErrInvalidInput.WithMessage("Private tasks can only be assigned to their creator")
		}
		return creator, nil
	case TypeGroup:
		if requested == "" {
			return "", shared.ErrMissingFields.WithMessage("Missing required fields: assignee_id")
		}
		return requested, nil
	}
	return "", shared.ErrInvalidInput.WithMessage("type must be Private or Group")
}
