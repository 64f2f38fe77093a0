package course

import (
	"context"
	"errors"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// AssignmentService manages assignments and their PDF briefs in object storage
type AssignmentService struct {
	assignments course.AssignmentRepository
	courses     course.CourseRepository
	files       course.FileStore
	cache       appshared.LookupCache
	logger      *zap.Logger
}

// NewAssignmentService creates a new assignment service. cache may be nil.
func NewAssignmentService(
	assignments course.AssignmentRepository,
	courses course.CourseRepository,
	files course.FileStore,
	cache appshared.LookupCache,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		courses:     courses,
		files:       files,
		cache:       cache,
		logger:      logger,
	}
}

// Create stores the brief (if any) and then the row. The object is removed
// again when the row cannot be written.
func (s *AssignmentService) Create(ctx context.Context, input CreateAssignmentInput) (*AssignmentInfo, error) {
	a, err := course.NewAssignment(input.CourseCode, input.Name, input.Description, input.DueDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.courses.Exists(ctx, a.CourseCode)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to check course", err)
	}
	if !exists {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown course_code " + a.CourseCode)
	}

	if input.File != nil {
		key, err := s.upload(ctx, a.CourseCode, input.File)
		if err != nil {
			return nil, err
		}
		a.FileKey = key
	}

	if err := s.assignments.Create(ctx, a); err != nil {
		s.discard(ctx, a.FileKey)
		return nil, appshared.Internal(s.logger, "Failed to create assignment", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Assignment created", zap.Int64("assignment_id", a.ID), zap.String("course_code", a.CourseCode))
	info := ToAssignmentInfo(a)
	return &info, nil
}

// Update replaces the editable fields and, when a new file is given, the brief
func (s *AssignmentService) Update(ctx context.Context, id int64, input UpdateAssignmentInput) (*AssignmentInfo, error) {
	a, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, appshared.NotFound(s.logger, err, "Assignment not found")
	}
	if err := a.Update(input.Name, input.Description, input.DueDate); err != nil {
		return nil, err
	}

	previousKey := a.FileKey
	if input.File != nil {
		key, err := s.upload(ctx, a.CourseCode, input.File)
		if err != nil {
			return nil, err
		}
		a.FileKey = key
	}

	if err := s.assignments.Update(ctx, a); err != nil {
		if a.FileKey != previousKey {
			s.discard(ctx, a.FileKey)
		}
		return nil, appshared.NotFound(s.logger, err, "Assignment not found")
	}
	if previousKey != "" && previousKey != a.FileKey {
		s.discard(ctx, previousKey)
	}

	s.invalidate(ctx)
	info := ToAssignmentInfo(a)
	return &info, nil
}

// Delete removes the row and then its brief
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	a, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return appshared.NotFound(s.logger, err, "Assignment not found")
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return appshared.NotFound(s.logger, err, "Assignment not found")
	}
	s.discard(ctx, a.FileKey)
	s.invalidate(ctx)
	s.logger.Info("Assignment deleted", zap.Int64("assignment_id", id))
	return nil
}

// FileURL returns a presigned download link for the brief
func (s *AssignmentService) FileURL(ctx context.Context, id int64) (*FileURL, error) {
	a, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, appshared.NotFound(s.logger, err, "Assignment not found")
	}
	if a.FileKey == "" {
		return nil, shared.ErrNotFound.WithMessage("Assignment has no file")
	}
	url, expiresAt, err := s.files.PresignDownload(ctx, a.FileKey)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to presign download", err, zap.String("key", a.FileKey))
	}
	return &FileURL{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *AssignmentService) upload(ctx context.Context, courseCode string, file *FileUpload) (string, error) {
	key, err := course.AssignmentObjectKey(courseCode, file.Filename)
	if err != nil {
		return "", err
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if err := s.files.Upload(ctx, key, contentType, file.Body, file.Size); err != nil {
		return "", appshared.Internal(s.logger, "Failed to upload assignment file", err, zap.String("key", key))
	}
	return key, nil
}

// discard deletes an object on a best-effort basis
func (s *AssignmentService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, shared.ErrStorageUnavailable) {
		s.logger.Warn("Failed to delete assignment file", zap.String("key", key), zap.Error(err))
	}
}

func (s *AssignmentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, appshared.LookupAssignments); err != nil {
		s.logger.Warn("Lookup cache invalidation failed", zap.String("lookup", appshared.LookupAssignments), zap.Error(err))
	}
}
