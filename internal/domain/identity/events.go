package identity

import (
	"github.com/avocado/teamhub/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type of user events
const AggregateTypeUser = "User"

// EventTypeUserRegistered is raised when registration commits
const EventTypeUserRegistered = "UserRegistered"

// UserRegisteredEvent carries the registration outcome
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Zid        string `json:"zid"`
	Name       string `json:"name"`
	RoleID     int64  `json:"role_id"`
	GroupID    int64  `json:"group_id"`
	CourseCode string `json:"course_code"`
	NewGroup   bool   `json:"new_group"`
	IsLeader   bool   `json:"is_leader"`
}

// NewUserRegisteredEvent creates a UserRegisteredEvent
func NewUserRegisteredEvent(u *User, groupID int64, courseCode string, newGroup, isLeader bool) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, u.Zid),
		Zid:             u.Zid,
		Name:            u.Name,
		RoleID:          u.RoleID,
		GroupID:         groupID,
		CourseCode:      courseCode,
		NewGroup:        newGroup,
		IsLeader:        isLeader,
	}
}
