package persistence

import (
	"context"

	"github.com/avocado/teamhub/internal/domain/task"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts the task and sets its id
func (r *GormTaskRepository) Create(ctx context.Context, t *task.Task) error {
	model := models.TaskModelFromDomain(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes every mutable column, nulls included
func (r *GormTaskRepository) Update(ctx context.Context, t *task.Task) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"name":           t.Name,
			"description":    t.Description,
			"status_id":      t.StatusID,
			"type":           string(t.Type),
			"group_id":       t.GroupID,
			"assignment_id":  t.AssignmentID,
			"due_date":       t.DueDate,
			"parent_task_id": t.ParentTaskID,
			"updated_at":     t.UpdatedAt,
		}))
}

// Delete removes a task by id
func (r *GormTaskRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&models.TaskModel{}, "id = ?", id))
}

// FindByID finds a task by id
func (r *GormTaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindViewsByAssignee returns the worklog rows assigned to a user
func (r *GormTaskRepository) FindViewsByAssignee(ctx context.Context, zid string) ([]task.View, error) {
	return r.findViews(r.viewQuery(ctx).Where("task_assignees.assignee_zid = ?", zid))
}

// FindViewsByAssigneeAndCourse narrows the worklog to one course. A task belongs
// to the course of its group, or of its assignment when it has no group.
func (r *GormTaskRepository) FindViewsByAssigneeAndCourse(ctx context.Context, zid, courseCode string) ([]task.View, error) {
	return r.findViews(r.viewQuery(ctx).
		Where("task_assignees.assignee_zid = ?", zid).
		Where("COALESCE(groups.course_code, assignments.course_code) = ?", courseCode))
}

func (r *GormTaskRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("tasks").
		Select(`tasks.*,
			task_assignees.assignee_zid AS assignee_zid,
			COALESCE(statuses.name, '') AS status_name,
			COALESCE(groups.course_code, assignments.course_code, '') AS course_code,
			COALESCE(groups.name, '') AS group_name`).
		Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
		Joins("LEFT JOIN statuses ON statuses.id = tasks.status_id").
		Joins("LEFT JOIN groups ON groups.id = tasks.group_id").
		Joins("LEFT JOIN assignments ON assignments.id = tasks.assignment_id")
}

func (r *GormTaskRepository) findViews(q *gorm.DB) ([]task.View, error) {
	var rows []models.TaskViewRow
	if err := q.Order("tasks.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]task.View, len(rows))
	for i := range rows {
		views[i] = rows[i].ToDomain()
	}
	return views, nil
}

// GormAssigneeRepository implements AssigneeRepository using GORM
type GormAssigneeRepository struct {
	db *gorm.DB
}

// NewGormAssigneeRepository creates a new GormAssigneeRepository
func NewGormAssigneeRepository(db *gorm.DB) *GormAssigneeRepository {
	return &GormAssigneeRepository{db: db}
}

// Add assigns a user to a task
func (r *GormAssigneeRepository) Add(ctx context.Context, a task.Assignee) error {
	return translateError(r.db.WithContext(ctx).Create(&models.TaskAssigneeModel{
		TaskID:      a.TaskID,
		AssigneeZid: a.AssigneeZid,
	}).Error)
}

// Replace moves the assignee row from one user to another.
// Returns ErrNotFound when the origin row does not exist.
func (r *GormAssigneeRepository) Replace(ctx context.Context, taskID int64, from, to string) error {
	if from == to {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.TaskAssigneeModel{}).
			Where("task_id = ? AND assignee_zid = ?", taskID, from).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return translateError(gorm.ErrRecordNotFound)
		}
		return nil
	}
	return affected(r.db.WithContext(ctx).
		Model(&models.TaskAssigneeModel{}).
		Where("task_id = ? AND assignee_zid = ?", taskID, from).
		Update("assignee_zid", to))
}

// Remove deletes one assignee row
func (r *GormAssigneeRepository) Remove(ctx context.Context, taskID int64, zid string) error {
	return affected(r.db.WithContext(ctx).
		Where("task_id = ? AND assignee_zid = ?", taskID, zid).
		Delete(&models.TaskAssigneeModel{}))
}

var (
	_ task.TaskRepository     = (*GormTaskRepository)(nil)
	_ task.AssigneeRepository = (*GormAssigneeRepository)(nil)
)
