package course

import (
	"strconv"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeGroup is the aggregate type of group events
const AggregateTypeGroup = "Group"

// Group event types
const (
	EventTypeMemberEvaluationReleased = "MemberEvaluationReleased"
	EventTypeGroupEvaluationChanged   = "GroupEvaluationChanged"
)

// MemberEvaluationReleasedEvent is raised when a member's evaluation is toggled
type MemberEvaluationReleasedEvent struct {
	shared.BaseDomainEvent
	GroupID     int64            `json:"group_id"`
	MemberZid   string           `json:"member_zid"`
	FinalScore  *decimal.Decimal `json:"final_score"`
	IsEvaluated bool             `json:"is_evaluated"`
	GroupDone   bool             `json:"group_done"`
}

// NewMemberEvaluationReleasedEvent creates a MemberEvaluationReleasedEvent
func NewMemberEvaluationReleasedEvent(m *GroupMember, groupDone bool) *MemberEvaluationReleasedEvent {
	return &MemberEvaluationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberEvaluationReleased, AggregateTypeGroup, strconv.FormatInt(m.GroupID, 10)),
		GroupID:         m.GroupID,
		MemberZid:       m.MemberZid,
		FinalScore:      m.FinalScore,
		IsEvaluated:     m.IsEvaluated,
		GroupDone:       groupDone,
	}
}

// GroupEvaluationChangedEvent is raised when the derived group flag flips
type GroupEvaluationChangedEvent struct {
	shared.BaseDomainEvent
	GroupID     int64 `json:"group_id"`
	IsEvaluated bool  `json:"is_evaluated"`
}

// NewGroupEvaluationChangedEvent creates a GroupEvaluationChangedEvent
func NewGroupEvaluationChangedEvent(groupID int64, evaluated bool) *GroupEvaluationChangedEvent {
	return &GroupEvaluationChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGroupEvaluationChanged, AggregateTypeGroup, strconv.FormatInt(groupID, 10)),
		GroupID:         groupID,
		IsEvaluated:     evaluated,
	}
}
