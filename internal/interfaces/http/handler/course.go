package handler

import (
	"net/http"

	"github.com/avocado/teamhub/internal/application/course"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CourseHandler serves the catalogue lookups, group membership and
// evaluation release
type CourseHandler struct {
	BaseHandler
	lookups     *course.LookupService
	evaluations *course.EvaluationService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(lookups *course.LookupService, evaluations *course.EvaluationService) *CourseHandler {
	return &CourseHandler{
		lookups:     lookups,
		evaluations: evaluations,
	}
}

// CourseCodeQuery selects a course
type CourseCodeQuery struct {
	CourseCode string `form:"course_code" binding:"required"`
}

// GroupIDQuery is the lookup key of /group-id
type GroupIDQuery struct {
	Zid        string `form:"zid" binding:"required"`
	CourseCode string `form:"course_code" binding:"required"`
}

// TeamMembersQuery selects a group by its camel-cased parameter
type TeamMembersQuery struct {
	GroupID int64 `form:"groupId" binding:"required,min=1"`
}

// GroupMembersQuery selects a group
type GroupMembersQuery struct {
	GroupID int64 `form:"group_id" binding:"required,min=1"`
}

// ReleaseEvaluationRequest sets one member's final score and release flag
type ReleaseEvaluationRequest struct {
	GroupID     int64            `json:"group_id" binding:"required,min=1"`
	MemberZid   string           `json:"member_zid" binding:"required"`
	FinalScore  *decimal.Decimal `json:"final_score"`
	IsEvaluated *bool            `json:"is_evaluated" binding:"required"`
}

// RecomputeEvaluationRequest names the group whose flag is recomputed
type RecomputeEvaluationRequest struct {
	GroupID     int64 `json:"group_id" binding:"required,min=1"`
	IsEvaluated *bool `json:"is_evaluated"`
}

// ReleaseEvaluationResponse reports the group flag after a release
type ReleaseEvaluationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	GroupDone bool   `json:"group_done"`
}

// RecomputeEvaluationResponse reports the recomputed group flag
type RecomputeEvaluationResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IsEvaluated bool   `json:"is_evaluated"`
}

// Courses godoc
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Success      200 {array} course.CourseInfo
// @Failure      500 {object} dto.Response
// @Router       /courses [get]
func (h *CourseHandler) Courses(c *gin.Context) {
	courses, err := h.lookups.Courses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// Groups godoc
// @Summary      List groups
// @Tags         courses
// @Produce      json
// @Success      200 {array} course.GroupInfo
// @Failure      500 {object} dto.Response
// @Router       /groups [get]
func (h *CourseHandler) Groups(c *gin.Context) {
	groups, err := h.lookups.Groups(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// Statuses godoc
// @Summary      List task statuses
// @Tags         courses
// @Produce      json
// @Success      200 {array} course.StatusInfo
// @Failure      500 {object} dto.Response
// @Router       /statuses [get]
func (h *CourseHandler) Statuses(c *gin.Context) {
	statuses, err := h.lookups.Statuses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// Assignments godoc
// @Summary      List assignments
// @Tags         courses
// @Produce      json
// @Success      200 {array} course.AssignmentInfo
// @Failure      500 {object} dto.Response
// @Router       /assignments [get]
func (h *CourseHandler) Assignments(c *gin.Context) {
	assignments, err := h.lookups.Assignments(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// AssignmentsByCourse godoc
// @Summary      List the assignments of a course
// @Tags         courses
// @Produce      json
// @Param        course_code query string true "Course code"
// @Success      200 {array} course.AssignmentInfo
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /assignments-Course-Based [get]
func (h *CourseHandler) AssignmentsByCourse(c *gin.Context) {
	var q CourseCodeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	assignments, err := h.lookups.AssignmentsByCourse(c.Request.Context(), q.CourseCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// GroupID godoc
// @Summary      Group of a user in a course
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string true "User zid"
// @Param        course_code query string true "Course code"
// @Success      200 {object} map[string]int64
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /group-id [get]
func (h *CourseHandler) GroupID(c *gin.Context) {
	var q GroupIDQuery
	if !h.BindQuery(c, &q) {
		return
	}

	id, err := h.lookups.GroupID(c.Request.Context(), q.Zid, q.CourseCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_id": id})
}

// TeamMembers godoc
// @Summary      Members of a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        groupId query int true "Group ID"
// @Success      200 {object} dto.Response{data=course.TeamMembersResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /team-members [get]
func (h *CourseHandler) TeamMembers(c *gin.Context) {
	var q TeamMembersQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.lookups.TeamMembers(c.Request.Context(), q.GroupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GroupMembers godoc
// @Summary      Members of a group with leader flags
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        group_id query int true "Group ID"
// @Success      200 {object} course.GroupMembersResult
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /group-members [get]
func (h *CourseHandler) GroupMembers(c *gin.Context) {
	var q GroupMembersQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.lookups.GroupMembers(c.Request.Context(), q.GroupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReleaseMemberEvaluation godoc
// @Summary      Release a member's evaluation
// @Description  Staff only. The group flag is recomputed from its members under a row lock.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ReleaseEvaluationRequest true "Member evaluation"
// @Success      200 {object} ReleaseEvaluationResponse
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /group-members/evaluation [patch]
func (h *CourseHandler) ReleaseMemberEvaluation(c *gin.Context) {
	var req ReleaseEvaluationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.evaluations.ReleaseMemberEvaluation(c.Request.Context(), course.ReleaseEvaluationInput{
		GroupID:     req.GroupID,
		MemberZid:   req.MemberZid,
		FinalScore:  req.FinalScore,
		IsEvaluated: *req.IsEvaluated,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReleaseEvaluationResponse{
		Success:   true,
		Message:   "Group member evaluation updated",
		GroupDone: result.GroupDone,
	})
}

// RecomputeGroupEvaluation godoc
// @Summary      Recompute a group's evaluation flag
// @Description  Staff only. A client is_evaluated that disagrees with the members is ignored.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RecomputeEvaluationRequest true "Group"
// @Success      200 {object} RecomputeEvaluationResponse
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /groups/evaluation [patch]
func (h *CourseHandler) RecomputeGroupEvaluation(c *gin.Context) {
	var req RecomputeEvaluationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	done, err := h.evaluations.RecomputeGroupEvaluation(c.Request.Context(), course.RecomputeInput{
		GroupID:     req.GroupID,
		ClientValue: req.IsEvaluated,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecomputeEvaluationResponse{
		Success:     true,
		Message:     "Group evaluation status updated",
		IsEvaluated: done,
	})
}
