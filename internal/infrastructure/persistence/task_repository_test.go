package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTaskRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*GormTaskRepository, *GormAssigneeRepository, int64, int64) {
		db := newTestDB(t)
		gid := seedGroup(t, db, "COMP9900", "Avocado")
		aid := seedAssignment(t, db, "COMP3900", "Report")
		return NewGormTaskRepository(db), NewGormAssigneeRepository(db), gid, aid
	}

	t.Run("views join status, group and course", func(t *testing.T) {
		tasks, assignees, gid, aid := setup(t)
		now := time.Now()

		groupTask := &task.Task{Name: "Slides", StatusID: 1, Type: task.TypeGroup, GroupID: &gid, CreatedBy: "z1", CreatedAt: now, UpdatedAt: now}
		privateTask := &task.Task{Name: "Notes", StatusID: 3, Type: task.TypePrivate, AssignmentID: &aid, CreatedBy: "z1", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, tasks.Create(ctx, groupTask))
		require.NoError(t, tasks.Create(ctx, privateTask))
		require.NoError(t, assignees.Add(ctx, task.Assignee{TaskID: groupTask.ID, AssigneeZid: "z1"}))
		require.NoError(t, assignees.Add(ctx, task.Assignee{TaskID: privateTask.ID, AssigneeZid: "z1"}))

		views, err := tasks.FindViewsByAssignee(ctx, "z1")
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "To Do", views[0].StatusName)
		assert.Equal(t, "COMP9900", views[0].CourseCode)
		assert.Equal(t, "Avocado", views[0].GroupName)
		assert.Equal(t, "z1", views[0].AssigneeZid)
		assert.Equal(t, "Done", views[1].StatusName)
		assert.Equal(t, "COMP3900", views[1].CourseCode)

		inCourse, err := tasks.FindViewsByAssigneeAndCourse(ctx, "z1", "COMP3900")
		require.NoError(t, err)
		require.Len(t, inCourse, 1)
		assert.Equal(t, privateTask.ID, inCourse[0].ID)
	})

	t.Run("replace assignee", func(t *testing.T) {
		tasks, assignees, gid, _ := setup(t)
		tk := &task.Task{Name: "T", StatusID: 1, Type: task.TypeGroup, GroupID: &gid, CreatedBy: "z1"}
		require.NoError(t, tasks.Create(ctx, tk))
		require.NoError(t, assignees.Add(ctx, task.Assignee{TaskID: tk.ID, AssigneeZid: "z1"}))

		require.NoError(t, assignees.Replace(ctx, tk.ID, "z1", "z2"))
		assert.ErrorIs(t, assignees.Replace(ctx, tk.ID, "z1", "z3"), shared.ErrNotFound)
		require.NoError(t, assignees.Replace(ctx, tk.ID, "z2", "z2"))

		views, err := tasks.FindViewsByAssignee(ctx, "z2")
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})

	t.Run("update and delete", func(t *testing.T) {
		tasks, assignees, gid, _ := setup(t)
		tk := &task.Task{Name: "T", StatusID: 1, Type: task.TypeGroup, GroupID: &gid, CreatedBy: "z1"}
		require.NoError(t, tasks.Create(ctx, tk))

		tk.StatusID = 2
		tk.Description = "halfway"
		require.NoError(t, tasks.Update(ctx, tk))
		found, err := tasks.FindByID(ctx, tk.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), found.StatusID)
		assert.Equal(t, "halfway", found.Description)

		assert.ErrorIs(t, assignees.Remove(ctx, tk.ID, "nobody"), shared.ErrNotFound)
		require.NoError(t, tasks.Delete(ctx, tk.ID))
		assert.ErrorIs(t, tasks.Delete(ctx, tk.ID), shared.ErrNotFound)
		_, err = tasks.FindByID(ctx, tk.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
