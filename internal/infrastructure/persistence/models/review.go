package models

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/review"
)

// PeerReviewModel is the persistence model for peer reviews
type PeerReviewModel struct {
	ID           int64     `gorm:"primaryKey"`
	GroupID      int64     `gorm:"not null;uniqueIndex:uq_peer_review,priority:1"`
	AssignmentID int64     `gorm:"not null;uniqueIndex:uq_peer_review,priority:2"`
	ReviewerZid  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_peer_review,priority:3"`
	RevieweeZid  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_peer_review,priority:4;index"`
	Score        int       `gorm:"not null"`
	Comment      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PeerReviewModel) TableName() string { return "peer_reviews" }

// ToDomain converts the model to a domain PeerReview
func (m *PeerReviewModel) ToDomain() review.PeerReview {
	return review.PeerReview{
		ID:           m.ID,
		GroupID:      m.GroupID,
		AssignmentID: m.AssignmentID,
		ReviewerZid:  m.ReviewerZid,
		RevieweeZid:  m.RevieweeZid,
		Score:        m.Score,
		Comment:      m.Comment,
		CreatedAt:    m.CreatedAt,
	}
}

// PeerReviewModelFromDomain creates a model from a domain PeerReview
func PeerReviewModelFromDomain(r *review.PeerReview) *PeerReviewModel {
	return &PeerReviewModel{
		ID:           r.ID,
		GroupID:      r.GroupID,
		AssignmentID: r.AssignmentID,
		ReviewerZid:  r.ReviewerZid,
		RevieweeZid:  r.RevieweeZid,
		Score:        r.Score,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}

// ContributionAnalysisModel is the persistence model for analysis runs.
// JSON columns use gorm's json serializer so the model also works on sqlite.
type ContributionAnalysisModel struct {
	ID                   int64              `gorm:"primaryKey"`
	GroupID              int64              `gorm:"not null;index:idx_analysis_group_assignment,priority:1"`
	AssignmentID         int64              `gorm:"not null;index:idx_analysis_group_assignment,priority:2"`
	Summary              string             `gorm:"type:text"`
	Fairness             bool               `gorm:"not null;default:true"`
	FairnessIssues       []any              `gorm:"type:jsonb;serializer:json"`
	SuggestedAdjustments map[string]any     `gorm:"type:jsonb;serializer:json"`
	AverageScores        map[string]float64 `gorm:"type:jsonb;serializer:json"`
	HasOutliers          bool               `gorm:"not null;default:false"`
	OutlierZids          []string           `gorm:"type:jsonb;serializer:json"`
	RawResponse          string             `gorm:"type:text"`
	CreatedAt            time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContributionAnalysisModel) TableName() string { return "contribution_analyses" }

// ToDomain converts the model to a domain ContributionAnalysis
func (m *ContributionAnalysisModel) ToDomain() review.ContributionAnalysis {
	return review.ContributionAnalysis{
		ID:                   m.ID,
		GroupID:              m.GroupID,
		AssignmentID:         m.AssignmentID,
		Summary:              m.Summary,
		Fairness:             m.Fairness,
		FairnessIssues:       m.FairnessIssues,
		SuggestedAdjustments: m.SuggestedAdjustments,
		AverageScores:        m.AverageScores,
		HasOutliers:          m.HasOutliers,
		OutlierZids:          m.OutlierZids,
		RawResponse:          m.RawResponse,
		CreatedAt:            m.CreatedAt,
	}
}

// ContributionAnalysisModelFromDomain creates a model from a domain ContributionAnalysis
func ContributionAnalysisModelFromDomain(a *review.ContributionAnalysis) *ContributionAnalysisModel {
	return &ContributionAnalysisModel{
		ID:                   a.ID,
		GroupID:              a.GroupID,
		AssignmentID:         a.AssignmentID,
		Summary:              a.Summary,
		Fairness:             a.Fairness,
		FairnessIssues:       a.FairnessIssues,
		SuggestedAdjustments: a.SuggestedAdjustments,
		AverageScores:        a.AverageScores,
		HasOutliers:          a.HasOutliers,
		OutlierZids:          a.OutlierZids,
		RawResponse:          a.RawResponse,
		CreatedAt:            a.CreatedAt,
	}
}
