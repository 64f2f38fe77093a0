package course

import (
	"strings"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// MaxGroupNameRunes is the stored length limit of a group name
const MaxGroupNameRunes = 50

// Group is a team of students within a course.
// IsEvaluated is derived from the members and is only written together with them.
type Group struct {
	ID          int64
	CourseCode  string
	Name        string
	IsEvaluated bool
}

// GroupMember is a user's membership in a group
type GroupMember struct {
	GroupID     int64
	MemberZid   string
	Name        string // read-only, joined from users
	IsLeader    bool
	FinalScore  *decimal.Decimal
	IsEvaluated bool
}

// NewGroup creates a group with a normalised name
func NewGroup(courseCode, name string) (*Group, error) {
	normalized := NormalizeGroupName(name)
	if normalized == "" {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: group_name")
	}
	if strings.TrimSpace(courseCode) == "" {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: course_code")
	}
	return &Group{CourseCode: courseCode, Name: normalized}, nil
}

// NormalizeGroupName trims, NFC-normalises and truncates to MaxGroupNameRunes runes
func NormalizeGroupName(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	runes := []rune(s)
	if len(runes) > MaxGroupNameRunes {
		s = strings.TrimSpace(string(runes[:MaxGroupNameRunes]))
	}
	return s
}

// BelongsTo reports whether the group is part of the course
func (g *Group) BelongsTo(courseCode string) bool {
	return g.CourseCode == courseCode
}

// AllEvaluated is the group "done" predicate: the AND of every member's flag.
// A group with no members is done.
func AllEvaluated(members []GroupMember) bool {
	for _, m := range members {
		if !m.IsEvaluated {
			return false
		}
	}
	return true
}

// ApplyEvaluation sets the final score and release flag.
// Releasing requires a score; withdrawing keeps whatever score is given.
func (m *GroupMember) ApplyEvaluation(score *decimal.Decimal, evaluated bool) error {
	if evaluated && score == nil {
		return shared.ErrInvalidState.WithMessage("A final score is required before releasing the evaluation")
	}
	if score != nil && score.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("final_score cannot be negative")
	}
	m.FinalScore = score
	m.IsEvaluated = evaluated
	return nil
}
