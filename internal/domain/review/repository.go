package review

import "context"

// ReviewRepository persists peer reviews
type ReviewRepository interface {
	// ReplaceForReviewer deletes the reviewer's rows for (group, assignment) and inserts reviews
	ReplaceForReviewer(ctx context.Context, groupID, assignmentID int64, reviewerZid string, reviews []PeerReview) error
	FindByGroupAssignment(ctx context.Context, groupID, assignmentID int64) ([]PeerReview, error)
	FindByReviewer(ctx context.Context, zid string) ([]PeerReview, error)
	FindByReviewee(ctx context.Context, zid string) ([]PeerReview, error)
}

// AnalysisRepository persists analysis runs
type AnalysisRepository interface {
	Create(ctx context.Context, a *ContributionAnalysis) error
	// FindByGroupAssignment returns runs newest first
	FindByGroupAssignment(ctx context.Context, groupID, assignmentID int64) ([]ContributionAnalysis, error)
}

// ContributionRepository runs the read-side aggregate queries
type ContributionRepository interface {
	GroupContributions(ctx context.Context, courseCode string) ([]GroupContribution, error)
	PrivateContributions(ctx context.Context, groupID int64) ([]PrivateContribution, error)
	MyContributions(ctx context.Context, zid string) ([]MyContribution, error)
	ObjectiveData(ctx context.Context, groupID, assignmentID int64, members []string) (*ObjectiveData, error)
}
