package models

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/shopspring/decimal"
)

// CourseModel is the persistence model for courses
type CourseModel struct {
	Code string `gorm:"type:varchar(20);primaryKey"`
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (CourseModel) TableName() string { return "courses" }

// StatusModel is the persistence model for task statuses
type StatusModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (StatusModel) TableName() string { return "statuses" }

// GroupModel is the persistence model for groups
type GroupModel struct {
	ID          int64     `gorm:"primaryKey"`
	CourseCode  string    `gorm:"type:varchar(20);not null;index;uniqueIndex:uq_groups_course_name,priority:1"`
	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_groups_course_name,priority:2"`
	IsEvaluated bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GroupModel) TableName() string { return "groups" }

// ToDomain converts the model to a domain Group
func (m *GroupModel) ToDomain() *course.Group {
	return &course.Group{
		ID:          m.ID,
		CourseCode:  m.CourseCode,
		Name:        m.Name,
		IsEvaluated: m.IsEvaluated,
	}
}

// GroupMemberModel is the persistence model for group memberships
type GroupMemberModel struct {
	GroupID     int64            `gorm:"primaryKey;autoIncrement:false"`
	MemberZid   string           `gorm:"type:varchar(50);primaryKey;index"`
	IsLeader    bool             `gorm:"not null;default:false"`
	FinalScore  *decimal.Decimal `gorm:"type:numeric(6,2)"`
	IsEvaluated bool             `gorm:"not null;default:false"`
	JoinedAt    time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GroupMemberModel) TableName() string { return "group_members" }

// ToDomain converts the model to a domain GroupMember
func (m *GroupMemberModel) ToDomain() course.GroupMember {
	return course.GroupMember{
		GroupID:     m.GroupID,
		MemberZid:   m.MemberZid,
		IsLeader:    m.IsLeader,
		FinalScore:  m.FinalScore,
		IsEvaluated: m.IsEvaluated,
	}
}

// AssignmentModel is the persistence model for assignments
type AssignmentModel struct {
	ID          int64  `gorm:"primaryKey"`
	CourseCode  string `gorm:"type:varchar(20);not null;index"`
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
	DueDate     *time.Time
	FileKey     string    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string { return "assignments" }

// ToDomain converts the model to a domain Assignment
func (m *AssignmentModel) ToDomain() course.Assignment {
	return course.Assignment{
		ID:          m.ID,
		CourseCode:  m.CourseCode,
		Name:        m.Name,
		Description: m.Description,
		DueDate:     m.DueDate,
		FileKey:     m.FileKey,
		CreatedAt:   m.CreatedAt,
	}
}

// AssignmentModelFromDomain creates a model from a domain Assignment
func AssignmentModelFromDomain(a *course.Assignment) *AssignmentModel {
	return &AssignmentModel{
		ID:          a.ID,
		CourseCode:  a.CourseCode,
		Name:        a.Name,
		Description: a.Description,
		DueDate:     a.DueDate,
		FileKey:     a.FileKey,
		CreatedAt:   a.CreatedAt,
	}
}
