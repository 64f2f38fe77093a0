package persistence

import (
	"context"

	"github.com/avocado/teamhub/internal/domain/review"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// ReplaceForReviewer deletes the reviewer's rows for (group, assignment) and
// inserts the new set. Call it on a transaction handle so the swap is atomic.
func (r *GormReviewRepository) ReplaceForReviewer(ctx context.Context, groupID, assignmentID int64, reviewerZid string, reviews []review.PeerReview) error {
	db := r.db.WithContext(ctx)
	if err := db.
		Where("group_id = ? AND assignment_id = ? AND reviewer_zid = ?", groupID, assignmentID, reviewerZid).
		Delete(&models.PeerReviewModel{}).Error; err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}

	batch := make([]*models.PeerReviewModel, len(reviews))
	for i := range reviews {
		batch[i] = models.PeerReviewModelFromDomain(&reviews[i])
		batch[i].ID = 0
	}
	if err := db.Create(&batch).Error; err != nil {
		return translateError(err)
	}
	for i := range batch {
		reviews[i].ID = batch[i].ID
	}
	return nil
}

// FindByGroupAssignment returns every review of a group on an assignment
func (r *GormReviewRepository) FindByGroupAssignment(ctx context.Context, groupID, assignmentID int64) ([]review.PeerReview, error) {
	var rows []models.PeerReviewModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND assignment_id = ?", groupID, assignmentID).
		Order("reviewer_zid ASC, reviewee_zid ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReviews(rows), nil
}

// FindByReviewer returns the reviews a user wrote, newest first
func (r *GormReviewRepository) FindByReviewer(ctx context.Context, zid string) ([]review.PeerReview, error) {
	var rows []models.PeerReviewModel
	if err := r.db.WithContext(ctx).
		Where("reviewer_zid = ?", zid).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReviews(rows), nil
}

// FindByReviewee returns the reviews a user received, newest first
func (r *GormReviewRepository) FindByReviewee(ctx context.Context, zid string) ([]review.PeerReview, error) {
	var rows []models.PeerReviewModel
	if err := r.db.WithContext(ctx).
		Where("reviewee_zid = ?", zid).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReviews(rows), nil
}

func toReviews(rows []models.PeerReviewModel) []review.PeerReview {
	out := make([]review.PeerReview, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormAnalysisRepository implements AnalysisRepository using GORM
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository creates a new GormAnalysisRepository
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// Create stores an analysis run and sets its id
func (r *GormAnalysisRepository) Create(ctx context.Context, a *review.ContributionAnalysis) error {
	model := models.ContributionAnalysisModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	return nil
}

// FindByGroupAssignment returns the stored runs, newest first
func (r *GormAnalysisRepository) FindByGroupAssignment(ctx context.Context, groupID, assignmentID int64) ([]review.ContributionAnalysis, error) {
	var rows []models.ContributionAnalysisModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND assignment_id = ?", groupID, assignmentID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]review.ContributionAnalysis, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ review.ReviewRepository   = (*GormReviewRepository)(nil)
	_ review.AnalysisRepository = (*GormAnalysisRepository)(nil)
)
