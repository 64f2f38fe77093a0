package task

import (
	"context"
	"errors"
	"testing"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/persistence"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"github.com/avocado/teamhub/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTaskService(t *testing.T) (*TaskService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewTaskService(testutil.NewTxScope(db), persistence.NewGormTaskRepository(db), zap.NewNop()), db
}

func TestTaskService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	service, db := newTaskService(t)
	groupID := testutil.SeedTeam(t, db, "Alpha", "z1", "z2")
	assignmentID := testutil.SeedAssignment(t, db, testutil.CourseProject, "Essay")

	groupTask, err := service.Create(ctx, "z1", TaskInput{
		Name: "Slides", StatusID: 1, Type: "Group", GroupID: &groupID, AssigneeID: "z2",
	})
	require.NoError(t, err)
	assert.Equal(t, "z2", groupTask.AssigneeID)
	assert.Equal(t, "z1", groupTask.CreatedBy)

	privateTask, err := service.Create(ctx, "z2", TaskInput{
		Name: "Read notes", StatusID: 2, Type: "Private", AssignmentID: &assignmentID,
	})
	require.NoError(t, err)
	assert.Equal(t, "z2", privateTask.AssigneeID, "private tasks belong to their creator")

	mine, err := service.MyTasks(ctx, "z2")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Slides", mine[0].Name)
	assert.Equal(t, "To Do", mine[0].StatusName)
	assert.Equal(t, testutil.CourseCapstone, mine[0].CourseCode)
	assert.Equal(t, "Alpha", mine[0].GroupName)

	capstone, err := service.Tasks(ctx, "z2", testutil.CourseCapstone)
	require.NoError(t, err)
	require.Len(t, capstone, 1)
	assert.Equal(t, groupTask.ID, capstone[0].ID)

	project, err := service.Tasks(ctx, "z2", testutil.CourseProject)
	require.NoError(t, err)
	require.Len(t, project, 1)
	assert.Equal(t, privateTask.ID, project[0].ID)

	none, err := service.MyTasks(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTaskService_Create_Invariants(t *testing.T) {
	ctx := context.Background()
	service, db := newTaskService(t)
	groupID := testutil.SeedTeam(t, db, "Alpha", "z1")
	otherGroup := testutil.SeedTeam(t, db, "Beta", "z9")

	tests := []struct {
		name  string
		input TaskInput
	}{
		{"group task without group", TaskInput{Name: "A", StatusID: 1, Type: "Group", AssigneeID: "z1"}},
		{"private task with group", TaskInput{Name: "A", StatusID: 1, Type: "Private", GroupID: &groupID}},
		{"private task for someone else", TaskInput{Name: "A", StatusID: 1, Type: "Private", AssigneeID: "z9"}},
		{"assignee outside the group", TaskInput{Name: "A", StatusID: 1, Type: "Group", GroupID: &groupID, AssigneeID: "z9"}},
		{"unknown parent", TaskInput{Name: "A", StatusID: 1, Type: "Private", ParentTaskID: testutil.Ptr(int64(77))}},
		{"unknown type", TaskInput{Name: "A", StatusID: 1, Type: "Team"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "z1", tt.input)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput), "got %v", err)
		})
	}

	_, err := service.Create(ctx, "z1", TaskInput{StatusID: 1, Type: "Private"})
	assert.True(t, errors.Is(err, shared.ErrMissingFields))

	_, err = service.Create(ctx, "z9", TaskInput{Name: "B", StatusID: 1, Type: "Group", GroupID: &otherGroup, AssigneeID: "z9"})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.TaskModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	service, db := newTaskService(t)
	groupID := testutil.SeedTeam(t, db, "Alpha", "z1", "z2")

	created, err := service.Create(ctx, "z1", TaskInput{Name: "Draft", StatusID: 1, Type: "Group", GroupID: &groupID, AssigneeID: "z1"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, "z1", "z1", TaskInput{
		Name: "Final draft", StatusID: 3, Type: "Group", GroupID: &groupID, AssigneeID: "z2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Final draft", updated.Name)
	assert.Equal(t, "z2", updated.AssigneeID)

	z1, err := service.MyTasks(ctx, "z1")
	require.NoError(t, err)
	assert.Empty(t, z1)
	z2, err := service.MyTasks(ctx, "z2")
	require.NoError(t, err)
	require.Len(t, z2, 1)
	assert.Equal(t, "Done", z2[0].StatusName)

	t.Run("unknown origin assignee rolls back", func(t *testing.T) {
		_, err := service.Update(ctx, created.ID, "z1", "z1", TaskInput{Name: "Renamed", StatusID: 1, Type: "Group", GroupID: &groupID, AssigneeID: "z1"})
		require.Error(t, err)
		assert.Equal(t, msgAssigneeNotFound, err.Error())

		var m models.TaskModel
		require.NoError(t, db.First(&m, "id = ?", created.ID).Error)
		assert.Equal(t, "Final draft", m.Name)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := service.Update(ctx, 999, "z1", "z1", TaskInput{Name: "X", StatusID: 1, Type: "Private"})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	service, db := newTaskService(t)
	testutil.SeedTeam(t, db, "Alpha", "z1")

	created, err := service.Create(ctx, "z1", TaskInput{Name: "Read", StatusID: 1, Type: "Private"})
	require.NoError(t, err)

	_, err = service.Delete(ctx, created.ID, "z2")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	deleted, err := service.Delete(ctx, created.ID, "z1")
	require.NoError(t, err)
	assert.Equal(t, "Read", deleted.Name)

	_, err = service.Delete(ctx, created.ID, "z1")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	var n int64
	require.NoError(t, db.Model(&models.TaskAssigneeModel{}).Count(&n).Error)
	assert.Zero(t, n)
}
