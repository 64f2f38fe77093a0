package review

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/review"
)

// ReviewEntry is one score in a submission
type ReviewEntry struct {
	RevieweeZid string
	Score       int
	Comment     string
}

// SubmitInput is a reviewer's full set of reviews for one assignment
type SubmitInput struct {
	GroupID      int64
	AssignmentID int64
	ReviewerZid  string
	Reviews      []ReviewEntry
}

// ReviewInfo is the public view of a peer review
type ReviewInfo struct {
	ID           int64     `json:"id"`
	GroupID      int64     `json:"group_id"`
	AssignmentID int64     `json:"assignment_id"`
	ReviewerZid  string    `json:"reviewer_zid"`
	RevieweeZid  string    `json:"reviewee_zid"`
	Score        int       `json:"score"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalysisInfo is the public view of a stored analysis run
type AnalysisInfo struct {
	ID                   int64              `json:"id"`
	GroupID              int64              `json:"group_id"`
	AssignmentID         int64              `json:"assignment_id"`
	Summary              string             `json:"summary"`
	Fairness             bool               `json:"fairness"`
	FairnessIssues       []any              `json:"fairness_issues"`
	SuggestedAdjustments map[string]any     `json:"suggested_adjustments"`
	AverageScores        map[string]float64 `json:"average_scores"`
	HasOutliers          bool               `json:"has_outliers"`
	OutlierZids          []string           `json:"outlier_zids"`
	CreatedAt            time.Time          `json:"created_at"`
}

// AnalyzeResult is returned by a fairness analysis
type AnalyzeResult struct {
	Analysis      AnalysisInfo         `json:"analysis"`
	AverageScores map[string]float64   `json:"average_scores"`
	HasOutliers   bool                 `json:"has_outliers"`
	OutlierZids   []string             `json:"outlier_zids"`
	ObjectiveData review.ObjectiveData `json:"objective_data"`
}

func toReviewInfos(rows []review.PeerReview) []ReviewInfo {
	out := make([]ReviewInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReviewInfo{
			ID:           r.ID,
			GroupID:      r.GroupID,
			AssignmentID: r.AssignmentID,
			ReviewerZid:  r.ReviewerZid,
			RevieweeZid:  r.RevieweeZid,
			Score:        r.Score,
			Comment:      r.Comment,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}

func toAnalysisInfo(a *review.ContributionAnalysis) AnalysisInfo {
	info := AnalysisInfo{
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
		CreatedAt:            a.CreatedAt,
	}
	if info.FairnessIssues == nil {
		info.FairnessIssues = []any{}
	}
	if info.SuggestedAdjustments == nil {
		info.SuggestedAdjustments = map[string]any{}
	}
	if info.AverageScores == nil {
		info.AverageScores = map[string]float64{}
	}
	if info.OutlierZids == nil {
		info.OutlierZids = []string{}
	}
	return info
}
