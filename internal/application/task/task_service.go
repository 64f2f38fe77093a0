// Package task contains the worklog application service.
package task

import (
	"context"
	"errors"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/domain/task"
	"go.uber.org/zap"
)

const msgAssigneeNotFound = "Assignee not found for this task"

// TaskService manages worklog tasks and their assignees
type TaskService struct {
	txScope appshared.TransactionScope
	tasks   task.TaskRepository
	logger  *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(txScope appshared.TransactionScope, tasks task.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{txScope: txScope, tasks: tasks, logger: logger}
}

// MyTasks lists every task assigned to zid
func (s *TaskService) MyTasks(ctx context.Context, zid string) ([]TaskInfo, error) {
	views, err := s.tasks.FindViewsByAssignee(ctx, zid)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list tasks", err, zap.String("zid", zid))
	}
	return toViewInfos(views), nil
}

// Tasks lists the tasks assigned to zid within one course
func (s *TaskService) Tasks(ctx context.Context, zid, courseCode string) ([]TaskInfo, error) {
	views, err := s.tasks.FindViewsByAssigneeAndCourse(ctx, zid, courseCode)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list tasks", err, zap.String("zid", zid))
	}
	return toViewInfos(views), nil
}

// Create inserts the task and its assignee row in one transaction.
// creator is the session user.
func (s *TaskService) Create(ctx context.Context, creator string, input TaskInput) (*TaskInfo, error) {
	t := &task.Task{CreatedBy: creator, CreatedAt: time.Now()}
	assignee, err := apply(t, input, creator)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if err := checkRelations(ctx, repos, t, assignee); err != nil {
			return err
		}
		if err := repos.Tasks().Create(ctx, t); err != nil {
			return err
		}
		return repos.Assignees().Add(ctx, task.Assignee{TaskID: t.ID, AssigneeZid: assignee})
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to create task", err, zap.String("created_by", creator))
	}

	s.logger.Info("Task created", zap.Int64("task_id", t.ID), zap.String("assignee", assignee))
	info := toTaskInfo(t, assignee)
	return &info, nil
}

// Update rewrites the task and moves the assignee row from origin to the new assignee
func (s *TaskService) Update(ctx context.Context, taskID int64, origin, editor string, input TaskInput) (*TaskInfo, error) {
	var (
		t        *task.Task
		assignee string
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		var err error
		t, err = repos.Tasks().FindByID(ctx, taskID)
		if err != nil {
			return appshared.NotFound(s.logger, err, "Task not found")
		}

		owner := t.CreatedBy
		if owner == "" {
			owner = editor
		}
		if assignee, err = apply(t, input, owner); err != nil {
			return err
		}
		t.UpdatedAt = time.Now()

		if err := checkRelations(ctx, repos, t, assignee); err != nil {
			return err
		}
		if err := repos.Tasks().Update(ctx, t); err != nil {
			return err
		}
		if err := repos.Assignees().Replace(ctx, taskID, origin, assignee); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrNotFound.WithMessage(msgAssigneeNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to update task", err, zap.Int64("task_id", taskID))
	}

	info := toTaskInfo(t, assignee)
	return &info, nil
}

// Delete removes the assignee row and then the task. A missing task rolls
// the assignee removal back.
func (s *TaskService) Delete(ctx context.Context, taskID int64, assignee string) (*TaskInfo, error) {
	var t *task.Task
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		var err error
		t, err = repos.Tasks().FindByID(ctx, taskID)
		if err != nil {
			return appshared.NotFound(s.logger, err, "Task not found")
		}
		if err := repos.Assignees().Remove(ctx, taskID, assignee); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrNotFound.WithMessage(msgAssigneeNotFound)
			}
			return err
		}
		if err := repos.Tasks().Delete(ctx, taskID); err != nil {
			return appshared.NotFound(s.logger, err, "Task not found")
		}
		return nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to delete task", err, zap.Int64("task_id", taskID))
	}

	s.logger.Info("Task deleted", zap.Int64("task_id", taskID))
	info := toTaskInfo(t, assignee)
	return &info, nil
}

// apply copies input onto t, validates it and resolves the assignee
func apply(t *task.Task, input TaskInput, owner string) (string, error) {
	typ, err := task.ParseType(input.Type)
	if err != nil {
		return "", err
	}
	t.Name = input.Name
	t.Description = input.Description
	t.StatusID = input.StatusID
	t.Type = typ
	t.GroupID = input.GroupID
	t.AssignmentID = input.AssignmentID
	t.DueDate = input.DueDate
	t.ParentTaskID = input.ParentTaskID
	if err := t.Validate(); err != nil {
		return "", err
	}
	return task.ResolveAssignee(typ, owner, input.AssigneeID)
}

// checkRelations enforces the invariants that need the store:
// a group task's assignee is in the group, and the parent task exists.
func checkRelations(ctx context.Context, repos appshared.TxRepositories, t *task.Task, assignee string) error {
	if t.Type == task.TypeGroup {
		ok, err := repos.Members().IsMember(ctx, *t.GroupID, assignee)
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrInvalidInput.WithMessage("Assignee is not a member of the group")
		}
	}
	if t.ParentTaskID != nil {
		if _, err := repos.Tasks().FindByID(ctx, *t.ParentTaskID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrInvalidInput.WithMessage("Parent task not found")
			}
			return err
		}
	}
	return nil
}
