package persistence

import (
	"context"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCourseRepository implements CourseRepository using GORM
type GormCourseRepository struct {
	db *gorm.DB
}

// NewGormCourseRepository creates a new GormCourseRepository
func NewGormCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

// FindAll returns every course ordered by code
func (r *GormCourseRepository) FindAll(ctx context.Context) ([]course.Course, error) {
	var rows []models.CourseModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]course.Course, len(rows))
	for i, m := range rows {
		out[i] = course.Course{Code: m.Code, Name: m.Name}
	}
	return out, nil
}

// Exists reports whether a course code is known
func (r *GormCourseRepository) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CourseModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormStatusRepository implements StatusRepository using GORM
type GormStatusRepository struct {
	db *gorm.DB
}

// NewGormStatusRepository creates a new GormStatusRepository
func NewGormStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

// FindAll returns the task statuses ordered by id
func (r *GormStatusRepository) FindAll(ctx context.Context) ([]course.Status, error) {
	var rows []models.StatusModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]course.Status, len(rows))
	for i, m := range rows {
		out[i] = course.Status{ID: m.ID, Name: m.Name}
	}
	return out, nil
}

// GormAssignmentRepository implements AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create inserts the assignment and sets its id
func (r *GormAssignmentRepository) Create(ctx context.Context, a *course.Assignment) error {
	model := models.AssignmentModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	return nil
}

// Update writes the mutable fields
func (r *GormAssignmentRepository) Update(ctx context.Context, a *course.Assignment) error {
	result := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"name":        a.Name,
			"description": a.Description,
			"due_date":    a.DueDate,
			"file_key":    a.FileKey,
		})
	return affected(result)
}

// Delete removes an assignment by id
func (r *GormAssignmentRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&models.AssignmentModel{}, "id = ?", id))
}

// FindByID finds an assignment by id
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id int64) (*course.Assignment, error) {
	var model models.AssignmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	a := model.ToDomain()
	return &a, nil
}

// FindAll returns every assignment ordered by id
func (r *GormAssignmentRepository) FindAll(ctx context.Context) ([]course.Assignment, error) {
	var rows []models.AssignmentModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAssignments(rows), nil
}

// FindByCourse returns the assignments of one course
func (r *GormAssignmentRepository) FindByCourse(ctx context.Context, courseCode string) ([]course.Assignment, error) {
	var rows []models.AssignmentModel
	if err := r.db.WithContext(ctx).
		Where("course_code = ?", courseCode).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAssignments(rows), nil
}

func toAssignments(rows []models.AssignmentModel) []course.Assignment {
	out := make([]course.Assignment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var (
	_ course.CourseRepository     = (*GormCourseRepository)(nil)
	_ course.StatusRepository     = (*GormStatusRepository)(nil)
	_ course.AssignmentRepository = (*GormAssignmentRepository)(nil)
)
