package review

import (
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Score bounds of a peer review
const (
	MinScore = 0
	MaxScore = 10
)

// PeerReview is one reviewer's score for one reviewee on an assignment
type PeerReview struct {
	ID           int64
	GroupID      int64
	AssignmentID int64
	ReviewerZid  string
	RevieweeZid  string
	Score        int
	Comment      string
	CreatedAt    time.Time
}

// Entry is one reviewee's score inside a submission
type Entry struct {
	RevieweeZid string
	Score       int
	Comment     string
}

// Submission is the full set of reviews from one reviewer for one
// (group, assignment). Storing it replaces the reviewer's previous set.
type Submission struct {
	GroupID      int64
	AssignmentID int64
	ReviewerZid  string
	Entries      []Entry
}

// Validate checks ids, score bounds and that each reviewee appears once
func (s *Submission) Validate() error {
	if s.GroupID <= 0 || s.AssignmentID <= 0 || strings.TrimSpace(s.ReviewerZid) == "" {
		return shared.ErrMissingFields.WithMessage("Missing required fields")
	}
	if len(s.Entries) == 0 {
		return shared.ErrMissingFields.WithMessage("Missing required fields: reviews")
	}
	seen := make(map[string]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		if strings.TrimSpace(e.RevieweeZid) == "" {
			return shared.ErrMissingFields.WithMessage("Missing required fields: reviewee_zid")
		}
		if e.Score < MinScore || e.Score > MaxScore {
			return shared.ErrInvalidInput.WithMessage("Score must be a number between 0 and 10")
		}
		if _, dup := seen[e.RevieweeZid]; dup {
			return shared.ErrInvalidInput.WithMessage("Duplicate reviewee " + e.RevieweeZid)
		}
		seen[e.RevieweeZid] = struct{}{}
	}
	return nil
}

// Reviews expands the submission into rows
func (s *Submission) Reviews(now time.Time) []PeerReview {
	out := make([]PeerReview, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, PeerReview{
			GroupID:      s.GroupID,
			AssignmentID: s.AssignmentID,
			ReviewerZid:  s.ReviewerZid,
			RevieweeZid:  e.RevieweeZid,
			Score:        e.Score,
			Comment:      e.Comment,
			CreatedAt:    now,
		})
	}
	return out
}
