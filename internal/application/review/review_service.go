// Package review contains the peer review, contribution and fairness
// analysis application services.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/review"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewService stores peer reviews and runs fairness analyses over them
type ReviewService struct {
	txScope       appshared.TransactionScope
	reviews       review.ReviewRepository
	analyses      review.AnalysisRepository
	contributions review.ContributionRepository
	members       course.MemberRepository
	completer     shared.Completer
	recorder      AnalysisRecorder
	logger        *zap.Logger
}

// AnalysisRecorder observes fairness analysis runs
type AnalysisRecorder interface {
	RecordAnalysis(ctx context.Context, outcome string, hasOutliers bool, latency time.Duration)
}

// SetRecorder sets the analysis recorder
func (s *ReviewService) SetRecorder(recorder AnalysisRecorder) {
	s.recorder = recorder
}

func (s *ReviewService) record(ctx context.Context, outcome string, hasOutliers bool, started time.Time) {
	if s.recorder != nil {
		s.recorder.RecordAnalysis(ctx, outcome, hasOutliers, time.Since(started))
	}
}

// NewReviewService creates a new review service
func NewReviewService(
	txScope appshared.TransactionScope,
	reviews review.ReviewRepository,
	analyses review.AnalysisRepository,
	contributions review.ContributionRepository,
	members course.MemberRepository,
	completer shared.Completer,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		txScope:       txScope,
		reviews:       reviews,
		analyses:      analyses,
		contributions: contributions,
		members:       members,
		completer:     completer,
		logger:        logger,
	}
}

// Submit replaces the reviewer's reviews for (group, assignment) with the given set
func (s *ReviewService) Submit(ctx context.Context, input SubmitInput) (int, error) {
	sub := &review.Submission{
		GroupID:      input.GroupID,
		AssignmentID: input.AssignmentID,
		ReviewerZid:  input.ReviewerZid,
	}
	for _, r := range input.Reviews {
		sub.Entries = append(sub.Entries, review.Entry{RevieweeZid: r.RevieweeZid, Score: r.Score, Comment: r.Comment})
	}
	if err := sub.Validate(); err != nil {
		return 0, err
	}

	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		members, err := repos.Members().FindByGroup(ctx, sub.GroupID)
		if err != nil {
			return err
		}
		inGroup := make(map[string]bool, len(members))
		for _, m := range members {
			inGroup[m.MemberZid] = true
		}
		if !inGroup[sub.ReviewerZid] {
			return shared.ErrForbidden.WithMessage("Reviewer is not a member of the group")
		}
		for _, e := range sub.Entries {
			if !inGroup[e.RevieweeZid] {
				return shared.ErrInvalidInput.WithMessage("Reviewee " + e.RevieweeZid + " is not a member of the group")
			}
		}

		if err := repos.Reviews().ReplaceForReviewer(ctx, sub.GroupID, sub.AssignmentID, sub.ReviewerZid, sub.Reviews(time.Now())); err != nil {
			return err
		}
		return repos.Events().Save(ctx, review.NewPeerReviewsSubmittedEvent(sub))
	})
	if err != nil {
		return 0, appshared.Internal(s.logger, "Failed to submit peer reviews", err,
			zap.Int64("group_id", input.GroupID),
			zap.String("reviewer_zid", input.ReviewerZid))
	}

	s.logger.Info("Peer reviews submitted",
		zap.Int64("group_id", sub.GroupID),
		zap.Int64("assignment_id", sub.AssignmentID),
		zap.String("reviewer_zid", sub.ReviewerZid),
		zap.Int("count", len(sub.Entries)))
	return len(sub.Entries), nil
}

// GroupReviews lists every review of a group for an assignment
func (s *ReviewService) GroupReviews(ctx context.Context, groupID, assignmentID int64) ([]ReviewInfo, error) {
	rows, err := s.reviews.FindByGroupAssignment(ctx, groupID, assignmentID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list group reviews", err)
	}
	return toReviewInfos(rows), nil
}

// MemberReviews lists the reviews written by zid, or received when asReviewer is false
func (s *ReviewService) MemberReviews(ctx context.Context, zid string, asReviewer bool) ([]ReviewInfo, error) {
	var (
		rows []review.PeerReview
		err  error
	)
	if asReviewer {
		rows, err = s.reviews.FindByReviewer(ctx, zid)
	} else {
		rows, err = s.reviews.FindByReviewee(ctx, zid)
	}
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list member reviews", err, zap.String("zid", zid))
	}
	return toReviewInfos(rows), nil
}

// AverageScores returns the mean received score of every member
func (s *ReviewService) AverageScores(ctx context.Context, groupID, assignmentID int64) (map[string]float64, error) {
	zids, rows, err := s.load(ctx, groupID, assignmentID)
	if err != nil {
		return nil, err
	}
	return review.Aggregate(zids, rows), nil
}

// Analyze combines the peer scores with the objective activity data, asks the
// language model for a fairness assessment and stores the run.
func (s *ReviewService) Analyze(ctx context.Context, groupID, assignmentID int64) (*AnalyzeResult, error) {
	zids, rows, err := s.load(ctx, groupID, assignmentID)
	if err != nil {
		return nil, err
	}
	if len(zids) == 0 {
		return nil, shared.ErrNotFound.WithMessage("No members found in this group")
	}

	averages := review.Aggregate(zids, rows)
	received := review.ReviewsByReviewee(rows)
	hasOutliers, outliers := review.DetectOutliers(averages)

	objective, err := s.contributions.ObjectiveData(ctx, groupID, assignmentID, zids)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to collect objective data", err, zap.Int64("group_id", groupID))
	}

	prompt, err := analysisPrompt(zids, averages, received, outliers, objective)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to build analysis prompt", err)
	}
	started := time.Now()
	reply, err := s.completer.Complete(ctx, shared.PurposeAnalysis, prompt)
	if err != nil {
		s.record(ctx, "request_failed", hasOutliers, started)
		return nil, appshared.Internal(s.logger, "Fairness analysis request failed", err, zap.Int64("group_id", groupID))
	}

	parsed, err := review.ParseAnalysis(reply)
	if err != nil {
		s.record(ctx, "unparseable", hasOutliers, started)
		s.logger.Warn("Unparseable analysis reply",
			zap.Int64("group_id", groupID),
			zap.Int("reply_length", len(reply)),
			zap.Error(err))
		return nil, err
	}
	s.record(ctx, "ok", hasOutliers, started)

	run := &review.ContributionAnalysis{
		GroupID:              groupID,
		AssignmentID:         assignmentID,
		Summary:              parsed.Summary,
		Fairness:             parsed.Fairness,
		FairnessIssues:       parsed.FairnessIssues,
		SuggestedAdjustments: parsed.SuggestedAdjustments,
		AverageScores:        averages,
		HasOutliers:          hasOutliers,
		OutlierZids:          outliers,
		RawResponse:          reply,
		CreatedAt:            time.Now(),
	}
	if err := s.analyses.Create(ctx, run); err != nil {
		return nil, appshared.Internal(s.logger, "Failed to store analysis", err, zap.Int64("group_id", groupID))
	}

	s.logger.Info("Contribution analysis stored",
		zap.Int64("analysis_id", run.ID),
		zap.Int64("group_id", groupID),
		zap.Bool("fairness", run.Fairness),
		zap.Bool("has_outliers", hasOutliers))
	return &AnalyzeResult{
		Analysis:      toAnalysisInfo(run),
		AverageScores: averages,
		HasOutliers:   hasOutliers,
		OutlierZids:   outliers,
		ObjectiveData: *objective,
	}, nil
}

// AnalysisResults lists stored runs, newest first
func (s *ReviewService) AnalysisResults(ctx context.Context, groupID, assignmentID int64) ([]AnalysisInfo, error) {
	runs, err := s.analyses.FindByGroupAssignment(ctx, groupID, assignmentID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list analyses", err)
	}
	out := make([]AnalysisInfo, 0, len(runs))
	for i := range runs {
		out = append(out, toAnalysisInfo(&runs[i]))
	}
	return out, nil
}

// GroupContributions summarises every group of a course
func (s *ReviewService) GroupContributions(ctx context.Context, courseCode string) ([]review.GroupContribution, error) {
	rows, err := s.contributions.GroupContributions(ctx, courseCode)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load group contributions", err, zap.String("course_code", courseCode))
	}
	if rows == nil {
		rows = []review.GroupContribution{}
	}
	return rows, nil
}

// PrivateContributions lists each member's activity in a group
func (s *ReviewService) PrivateContributions(ctx context.Context, groupID int64) ([]review.PrivateContribution, error) {
	rows, err := s.contributions.PrivateContributions(ctx, groupID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load member contributions", err, zap.Int64("group_id", groupID))
	}
	if rows == nil {
		rows = []review.PrivateContribution{}
	}
	return rows, nil
}

// MyContributions returns the user's rates per group
func (s *ReviewService) MyContributions(ctx context.Context, zid string) ([]review.MyContribution, error) {
	rows, err := s.contributions.MyContributions(ctx, zid)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load contributions", err, zap.String("zid", zid))
	}
	if rows == nil {
		rows = []review.MyContribution{}
	}
	return rows, nil
}

func (s *ReviewService) load(ctx context.Context, groupID, assignmentID int64) ([]string, []review.PeerReview, error) {
	members, err := s.members.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, appshared.Internal(s.logger, "Failed to load group members", err, zap.Int64("group_id", groupID))
	}
	zids := make([]string, 0, len(members))
	for _, m := range members {
		zids = append(zids, m.MemberZid)
	}
	rows, err := s.reviews.FindByGroupAssignment(ctx, groupID, assignmentID)
	if err != nil {
		return nil, nil, appshared.Internal(s.logger, "Failed to load reviews", err, zap.Int64("group_id", groupID))
	}
	return zids, rows, nil
}

const analysisInstructions = `You are a teaching assistant reviewing how fairly work was shared in a student group project.
You receive each member's average peer score (0 to 10), every score and comment they received with the reviewer's zid,
and objective activity data:
meeting attendance, task completion on the assignment and channel message counts.
Reply with a single JSON object and nothing else, using exactly these keys:
{"summary": string, "fairness": boolean, "fairness_issues": [string], "suggested_adjustments": {"<zid>": number}}
Only suggest adjustments for members whose peer score disagrees with the objective data.`

func analysisPrompt(zids []string, averages map[string]float64, received map[string][]review.ReceivedReview, outliers []string, objective *review.ObjectiveData) ([]shared.ChatMessage, error) {
	sorted := append([]string(nil), zids...)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString("Members, average peer scores and the reviews they received:\n")
	for _, zid := range sorted {
		fmt.Fprintf(&b, "- %s: average %.2f\n", zid, averages[zid])
		for _, r := range received[zid] {
			fmt.Fprintf(&b, "  from %s: score %d", r.From, r.Score)
			if r.Comment != "" {
				fmt.Fprintf(&b, ", comment %q", r.Comment)
			}
			b.WriteString("\n")
		}
	}
	if len(outliers) > 0 {
		fmt.Fprintf(&b, "Statistical outliers by z-score: %s\n", strings.Join(outliers, ", "))
	}

	data, err := json.MarshalIndent(objective, "", "  ")
	if err != nil {
		return nil, err
	}
	b.WriteString("Objective data:\n")
	b.Write(data)

	return []shared.ChatMessage{
		{Role: shared.RoleSystem, Content: analysisInstructions},
		{Role: shared.RoleUser, Content: b.String()},
	}, nil
}
