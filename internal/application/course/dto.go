package course

import (
	"io"
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/shopspring/decimal"
)

// CourseInfo is a row of the courses lookup
type CourseInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GroupInfo is a row of the groups lookup
type GroupInfo struct {
	ID         int64  `json:"id"`
	CourseCode string `json:"course_code"`
	Name       string `json:"name"`
}

// StatusInfo is a row of the statuses lookup
type StatusInfo struct {
	StatusID   int64  `json:"status_id"`
	StatusName string `json:"status_name"`
}

// AssignmentInfo is the public view of an assignment
type AssignmentInfo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	CourseCode  string     `json:"course_code"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	HasFile     bool       `json:"has_file"`
}

// MemberInfo is a member of a group listing
type MemberInfo struct {
	Zid      string `json:"zid"`
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
}

// TeamMemberInfo is a member of the team-members listing
type TeamMemberInfo struct {
	Zid      string `json:"zid"`
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
	GroupID  int64  `json:"group_id"`
}

// GroupMembersResult lists the members of a group
type GroupMembersResult struct {
	GroupID int64        `json:"group_id"`
	Members []MemberInfo `json:"members"`
}

// TeamMembersResult lists the members of a team
type TeamMembersResult struct {
	GroupID int64            `json:"group_id"`
	Members []TeamMemberInfo `json:"members"`
}

// ReleaseEvaluationInput sets a member's final score and release flag
type ReleaseEvaluationInput struct {
	GroupID     int64
	MemberZid   string
	FinalScore  *decimal.Decimal
	IsEvaluated bool
}

// ReleaseEvaluationResult reports whether every member of the group is now evaluated
type ReleaseEvaluationResult struct {
	GroupDone bool
}

// RecomputeInput names the group to recompute. ClientValue is what the
// caller believes the flag should be; it is only compared, never written.
type RecomputeInput struct {
	GroupID     int64
	ClientValue *bool
}

// FileUpload is an uploaded assignment brief
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateAssignmentInput contains the input for creating an assignment
type CreateAssignmentInput struct {
	CourseCode  string
	Name        string
	Description string
	DueDate     *time.Time
	File        *FileUpload
}

// UpdateAssignmentInput contains the input for updating an assignment.
// A nil File keeps the stored brief.
type UpdateAssignmentInput struct {
	Name        string
	Description string
	DueDate     *time.Time
	File        *FileUpload
}

// FileURL is a time-limited download link
type FileURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToAssignmentInfo converts a domain Assignment to its public view
func ToAssignmentInfo(a *course.Assignment) AssignmentInfo {
	return AssignmentInfo{
		ID:          a.ID,
		Name:        a.Name,
		CourseCode:  a.CourseCode,
		Description: a.Description,
		DueDate:     a.DueDate,
		HasFile:     a.FileKey != "",
	}
}
