package course

import (
	"context"
	"io"
	"time"
)

// CourseRepository reads the course catalogue
type CourseRepository interface {
	FindAll(ctx context.Context) ([]Course, error)
	Exists(ctx context.Context, code string) (bool, error)
}

// StatusRepository reads task statuses
type StatusRepository interface {
	FindAll(ctx context.Context) ([]Status, error)
}

// GroupRepository persists groups
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	FindByID(ctx context.Context, id int64) (*Group, error)
	// FindByIDForUpdate locks the group row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id int64) (*Group, error)
	FindAll(ctx context.Context) ([]Group, error)
	FindByCourse(ctx context.Context, courseCode string) ([]Group, error)
	FindByMemberAndCourse(ctx context.Context, zid, courseCode string) (*Group, error)
	FindByMember(ctx context.Context, zid string) ([]Group, error)
	SetEvaluated(ctx context.Context, id int64, evaluated bool) error
}

// MemberRepository persists group memberships
type MemberRepository interface {
	Add(ctx context.Context, m *GroupMember) error
	FindByGroup(ctx context.Context, groupID int64) ([]GroupMember, error)
	Find(ctx context.Context, groupID int64, zid string) (*GroupMember, error)
	UpdateEvaluation(ctx context.Context, m *GroupMember) error
	// FirstGroupID returns the group id of the user's earliest membership, or nil
	FirstGroupID(ctx context.Context, zid string) (*int64, error)
	IsMember(ctx context.Context, groupID int64, zid string) (bool, error)
}

// AssignmentRepository persists assignments
type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Assignment, error)
	FindAll(ctx context.Context) ([]Assignment, error)
	FindByCourse(ctx context.Context, courseCode string) ([]Assignment, error)
}

// FileStore stores assignment files in object storage
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}
