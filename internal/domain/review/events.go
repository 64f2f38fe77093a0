package review

import (
	"fmt"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// AggregateTypeReviewSet is the aggregate type of review events
const AggregateTypeReviewSet = "PeerReviewSet"

// EventTypePeerReviewsSubmitted is raised when a reviewer's set is replaced
const EventTypePeerReviewsSubmitted = "PeerReviewsSubmitted"

// PeerReviewsSubmittedEvent carries the replaced set's identity and size
type PeerReviewsSubmittedEvent struct {
	shared.BaseDomainEvent
	GroupID      int64  `json:"group_id"`
	AssignmentID int64  `json:"assignment_id"`
	ReviewerZid  string `json:"reviewer_zid"`
	Count        int    `json:"count"`
}

// NewPeerReviewsSubmittedEvent creates a PeerReviewsSubmittedEvent
func NewPeerReviewsSubmittedEvent(s *Submission) *PeerReviewsSubmittedEvent {
	aggID := fmt.Sprintf("%d:%d:%s", s.GroupID, s.AssignmentID, s.ReviewerZid)
	return &PeerReviewsSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeerReviewsSubmitted, AggregateTypeReviewSet, aggID),
		GroupID:         s.GroupID,
		AssignmentID:    s.AssignmentID,
		ReviewerZid:     s.ReviewerZid,
		Count:           len(s.Entries),
	}
}
