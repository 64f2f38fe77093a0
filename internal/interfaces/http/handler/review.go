package handler

import (
	"github.com/avocado/teamhub/internal/application/review"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles peer reviews, fairness analysis and contribution views
type ReviewHandler struct {
	BaseHandler
	reviewService *review.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewEntryRequest is one score in a submission
type ReviewEntryRequest struct {
	RevieweeZid string `json:"reviewee_zid" binding:"required"`
	Score       *int   `json:"score" binding:"required,min=0,max=10"`
	Comment     string `json:"comment" binding:"max=2000"`
}

// SubmitReviewsRequest replaces the reviewer's set for one assignment.
// reviewer_zid defaults to the caller.
type SubmitReviewsRequest struct {
	GroupID      int64                `json:"group_id" binding:"required,min=1"`
	AssignmentID int64                `json:"assignment_id" binding:"required,min=1"`
	ReviewerZid  string               `json:"reviewer_zid"`
	Reviews      []ReviewEntryRequest `json:"reviews" binding:"required,dive"`
}

// AnalyzeRequest names the group and assignment to analyse
type AnalyzeRequest struct {
	GroupID      int64 `json:"group_id" binding:"required,min=1"`
	AssignmentID int64 `json:"assignment_id" binding:"required,min=1"`
}

// MemberReviewsQuery chooses the given or received side
type MemberReviewsQuery struct {
	AsReviewer bool `form:"as_reviewer"`
}

// Submit godoc
// @Summary      Submit peer reviews
// @Description  Replaces the reviewer's previous set for the assignment. reviewer_zid defaults to the caller.
// @Tags         peer-reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubmitReviewsRequest true "Reviews"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/peer-reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req SubmitReviewsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reviewer, ok := h.ActingAs(c, req.ReviewerZid)
	if !ok {
		return
	}

	entries := make([]review.ReviewEntry, 0, len(req.Reviews))
	for _, r := range req.Reviews {
		entries = append(entries, review.ReviewEntry{RevieweeZid: r.RevieweeZid, Score: *r.Score, Comment: r.Comment})
	}
	count, err := h.reviewService.Submit(c.Request.Context(), review.SubmitInput{
		GroupID:      req.GroupID,
		AssignmentID: req.AssignmentID,
		ReviewerZid:  reviewer,
		Reviews:      entries,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, gin.H{"submitted": count})
}

// GroupReviews godoc
// @Summary      Reviews in a group for an assignment
// @Tags         peer-reviews
// @Produce      json
// @Security     BearerAuth
// @Param        group_id path int true "Group ID"
// @Param        assignment_id path int true "Assignment ID"
// @Success      200 {object} dto.Response{data=[]review.ReviewInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/peer-reviews/group/{group_id}/assignment/{assignment_id} [get]
func (h *ReviewHandler) GroupReviews(c *gin.Context) {
	groupID, assignmentID, ok := h.groupAssignment(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.GroupReviews(c.Request.Context(), groupID, assignmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}

// MemberReviews godoc
// @Summary      Reviews given or received by a member
// @Tags         peer-reviews
// @Produce      json
// @Security     BearerAuth
// @Param        zid path string true "Member zid"
// @Param        as_reviewer query bool false "List reviews the member gave"
// @Success      200 {object} dto.Response{data=[]review.ReviewInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/peer-reviews/member/{zid} [get]
func (h *ReviewHandler) MemberReviews(c *gin.Context) {
	var q MemberReviewsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	reviews, err := h.reviewService.MemberReviews(c.Request.Context(), c.Param("zid"), q.AsReviewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}

// AverageScores godoc
// @Summary      Average received score per member
// @Tags         peer-reviews
// @Produce      json
// @Security     BearerAuth
// @Param        group_id path int true "Group ID"
// @Param        assignment_id path int true "Assignment ID"
// @Success      200 {object} dto.Response{data=map[string]number}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/peer-reviews/scores/group/{group_id}/assignment/{assignment_id} [get]
func (h *ReviewHandler) AverageScores(c *gin.Context) {
	groupID, assignmentID, ok := h.groupAssignment(c)
	if !ok {
		return
	}

	scores, err := h.reviewService.AverageScores(c.Request.Context(), groupID, assignmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, scores)
}

// Analyze godoc
// @Summary      Analyse contribution fairness
// @Description  Combines peer scores, individual reviews and activity data, asks the language model for an assessment and stores the run.
// @Tags         peer-reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AnalyzeRequest true "Group and assignment"
// @Success      200 {object} dto.Response{data=review.AnalyzeResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /api/peer-reviews/analyze [post]
func (h *ReviewHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.reviewService.Analyze(c.Request.Context(), req.GroupID, req.AssignmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AnalysisResults godoc
// @Summary      Stored analysis runs
// @Description  Newest first.
// @Tags         peer-reviews
// @Produce      json
// @Security     BearerAuth
// @Param        group_id path int true "Group ID"
// @Param        assignment_id path int true "Assignment ID"
// @Success      200 {object} dto.Response{data=[]review.AnalysisInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/peer-reviews/analysis-results/group/{group_id}/assignment/{assignment_id} [get]
func (h *ReviewHandler) AnalysisResults(c *gin.Context) {
	groupID, assignmentID, ok := h.groupAssignment(c)
	if !ok {
		return
	}

	results, err := h.reviewService.AnalysisResults(c.Request.Context(), groupID, assignmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// GroupContributions godoc
// @Summary      Contribution summary per group
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        course_code query string true "Course code"
// @Success      200 {object} dto.Response{data=[]object}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /group-contributions [get]
func (h *ReviewHandler) GroupContributions(c *gin.Context) {
	var q CourseCodeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	rows, err := h.reviewService.GroupContributions(c.Request.Context(), q.CourseCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// PrivateContributions godoc
// @Summary      Contribution of each member of a group
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        group_id path int true "Group ID"
// @Success      200 {object} dto.Response{data=[]object}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /private-contributions/{group_id} [get]
func (h *ReviewHandler) PrivateContributions(c *gin.Context) {
	groupID, ok := h.ParamID(c, "group_id")
	if !ok {
		return
	}

	rows, err := h.reviewService.PrivateContributions(c.Request.Context(), groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// MyContributions godoc
// @Summary      A member's rates in each of their groups
// @Tags         contributions
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string true "Member zid"
// @Success      200 {object} dto.Response{data=[]object}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /my-contributions [get]
func (h *ReviewHandler) MyContributions(c *gin.Context) {
	var q ZidQuery
	if !h.BindQuery(c, &q) {
		return
	}

	rows, err := h.reviewService.MyContributions(c.Request.Context(), q.Zid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

func (h *ReviewHandler) groupAssignment(c *gin.Context) (int64, int64, bool) {
	groupID, ok := h.ParamID(c, "group_id")
	if !ok {
		return 0, 0, false
	}
	assignmentID, ok := h.ParamID(c, "assignment_id")
	if !ok {
		return 0, 0, false
	}
	return groupID, assignmentID, true
}
