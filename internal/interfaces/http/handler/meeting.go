package handler

import (
	"net/http"
	"time"

	"github.com/avocado/teamhub/internal/application/meeting"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// MeetingHandler handles meetings, attendance and agendas
type MeetingHandler struct {
	BaseHandler
	meetingService *meeting.MeetingService
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *meeting.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

// CreateMeetingRequest schedules a meeting for a group
type CreateMeetingRequest struct {
	GroupID      int64      `json:"group_id" binding:"required,min=1"`
	AssignmentID *int64     `json:"assignment_id" binding:"omitempty,min=1"`
	Start        *time.Time `json:"start" binding:"required"`
	End          *time.Time `json:"end" binding:"required"`
	Goal         string     `json:"goal" binding:"max=2000"`
	Title        string     `json:"meeting_title" binding:"max=255"`
}

// ListMeetingsQuery selects the group whose meetings are listed
type ListMeetingsQuery struct {
	GroupID int64 `form:"groupId" binding:"required,min=1"`
}

// UpdateMeetingStatusRequest is the new meeting status
type UpdateMeetingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AttendanceRequest is one member's reported participation
type AttendanceRequest struct {
	MeetingID                 int64     `json:"meeting_id" binding:"required,min=1"`
	MemberZid                 string    `json:"member_zid" binding:"required"`
	GroupID                   int64     `json:"group_id" binding:"required,min=1"`
	JoinTime                  time.Time `json:"join_time"`
	LeaveTime                 time.Time `json:"leave_time"`
	MeetingDurationHour       float64   `json:"meeting_duration_hour" binding:"min=0"`
	ParticipationDurationHour float64   `json:"participation_duration_hour" binding:"min=0"`
}

// AttendanceQuery selects one member's attendance at a meeting
type AttendanceQuery struct {
	MeetingID int64  `form:"meeting_id" binding:"required,min=1"`
	MemberZid string `form:"member_zid" binding:"required"`
}

// Create godoc
// @Summary      Schedule a meeting
// @Description  Creates the meeting and an attendance row per group member in one transaction.
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateMeetingRequest true "Meeting"
// @Success      201 {object} dto.Response{data=meeting.MeetingInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /new-meetings [post]
func (h *MeetingHandler) Create(c *gin.Context) {
	var req CreateMeetingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	info, err := h.meetingService.Create(c.Request.Context(), meeting.CreateMeetingInput{
		GroupID:      req.GroupID,
		AssignmentID: req.AssignmentID,
		Start:        *req.Start,
		End:          *req.End,
		Title:        req.Title,
		Goal:         req.Goal,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List godoc
// @Summary      List a group's meetings
// @Tags         meetings
// @Produce      json
// @Security     BearerAuth
// @Param        groupId query int true "Group ID"
// @Success      200 {object} dto.Response{data=[]meeting.MeetingInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	var q ListMeetingsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	meetings, err := h.meetingService.List(c.Request.Context(), q.GroupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meetings)
}

// UpdateStatus godoc
// @Summary      Change a meeting's status
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meeting ID"
// @Param        request body UpdateMeetingStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=meeting.MeetingInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /meetings/{id}/status [patch]
func (h *MeetingHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateMeetingStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	info, err := h.meetingService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Status:  dto.StatusSuccess,
		Message: "Meeting status updated",
		Data:    info,
	})
}

// UpsertAttendance godoc
// @Summary      Record a member's attendance
// @Description  Presence is derived from the participation ratio.
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AttendanceRequest true "Attendance"
// @Success      200 {object} dto.Response{data=meeting.AttendanceInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /meeting-attendance [post]
func (h *MeetingHandler) UpsertAttendance(c *gin.Context) {
	var req AttendanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	info, err := h.meetingService.UpsertAttendance(c.Request.Context(), meeting.AttendanceInput{
		MeetingID:                 req.MeetingID,
		MemberZid:                 req.MemberZid,
		GroupID:                   req.GroupID,
		JoinTime:                  req.JoinTime,
		LeaveTime:                 req.LeaveTime,
		MeetingDurationHour:       req.MeetingDurationHour,
		ParticipationDurationHour: req.ParticipationDurationHour,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// GetAttendance godoc
// @Summary      A member's attendance at a meeting
// @Tags         meetings
// @Produce      json
// @Security     BearerAuth
// @Param        meeting_id query int true "Meeting ID"
// @Param        member_zid query string true "Member zid"
// @Success      200 {object} dto.Response{data=[]meeting.AttendanceInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /meeting-attendance [get]
func (h *MeetingHandler) GetAttendance(c *gin.Context) {
	var q AttendanceQuery
	if !h.BindQuery(c, &q) {
		return
	}

	rows, err := h.meetingService.GetAttendance(c.Request.Context(), q.MeetingID, q.MemberZid)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// GenerateAgenda godoc
// @Summary      Draft a meeting agenda
// @Description  Asks the language model for an agenda built from the meeting goal and open tasks.
// @Tags         meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meeting ID"
// @Success      200 {object} dto.Response{data=meeting.AgendaResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /meetings/{id}/agenda [post]
func (h *MeetingHandler) GenerateAgenda(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	agenda, err := h.meetingService.GenerateAgenda(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, agenda)
}
