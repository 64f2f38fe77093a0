package course

import (
	"path"
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Course is a unit of study identified by its code
type Course struct {
	Code string
	Name string
}

// Status is a task workflow state
type Status struct {
	ID   int64
	Name string
}

// Assignment is a course deliverable; FileKey points at the brief in object storage
type Assignment struct {
	ID          int64
	CourseCode  string
	Name        string
	Description string
	DueDate     *time.Time
	FileKey     string
	CreatedAt   time.Time
}

// NewAssignment validates the required fields
func NewAssignment(courseCode, name, description string, due *time.Time) (*Assignment, error) {
	courseCode = strings.TrimSpace(courseCode)
	name = strings.TrimSpace(name)
	if courseCode == "" || name == "" {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: course_code, name")
	}
	return &Assignment{
		CourseCode:  courseCode,
		Name:        name,
		Description: description,
		DueDate:     due,
		CreatedAt:   time.Now(),
	}, nil
}

// Update replaces the editable fields
func (a *Assignment) Update(name, description string, due *time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrMissingFields.WithMessage("Missing required fields: name")
	}
	a.Name = name
	a.Description = description
	a.DueDate = due
	return nil
}

// AssignmentObjectKey returns the storage key "{course_code}/{file}".
// Only the base name of the uploaded file is kept.
func AssignmentObjectKey(courseCode, filename string) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." || strings.TrimSpace(base) == "" {
		return "", shared.ErrInvalidInput.WithMessage("invalid file name")
	}
	if !strings.EqualFold(path.Ext(base), ".pdf") {
		return "", shared.ErrInvalidInput.WithMessage("only PDF files are accepted")
	}
	return courseCode + "/" + base, nil
}
