package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/avocado/teamhub/internal/application/course"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AssignmentHandler manages assignments and their PDF briefs
type AssignmentHandler struct {
	BaseHandler
	assignmentService *course.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *course.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// CreateAssignmentRequest is the multipart form of POST /assignments.
// The brief is read from the optional "file" part.
type CreateAssignmentRequest struct {
	CourseCode  string `form:"course_code" binding:"required"`
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	DueDate     string `form:"due_date"`
}

// UpdateAssignmentRequest is the multipart form of PUT /assignments/:id
type UpdateAssignmentRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	DueDate     string `form:"due_date"`
}

// Create godoc
// @Summary      Create an assignment
// @Description  Staff only. The optional PDF brief is stored in object storage.
// @Tags         assignments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        course_code formData string true "Course code"
// @Param        name formData string true "Assignment name"
// @Param        description formData string false "Description"
// @Param        due_date formData string false "RFC 3339 timestamp or date"
// @Param        file formData file false "PDF brief"
// @Success      201 {object} dto.Response{data=course.AssignmentInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req CreateAssignmentRequest
	if !h.Bind(c, &req) {
		return
	}
	dueDate, ok := h.OptionalDate(c, "due_date", req.DueDate)
	if !ok {
		return
	}
	file, ok := h.file(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.close()
	}

	info, err := h.assignmentService.Create(c.Request.Context(), course.CreateAssignmentInput{
		CourseCode:  req.CourseCode,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     dueDate,
		File:        file.upload(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// Update godoc
// @Summary      Update an assignment
// @Description  Staff only. A new file replaces the stored brief.
// @Tags         assignments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Assignment ID"
// @Param        name formData string true "Assignment name"
// @Param        description formData string false "Description"
// @Param        due_date formData string false "RFC 3339 timestamp or date"
// @Param        file formData file false "PDF brief"
// @Success      200 {object} dto.Response{data=course.AssignmentInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateAssignmentRequest
	if !h.Bind(c, &req) {
		return
	}
	dueDate, ok := h.OptionalDate(c, "due_date", req.DueDate)
	if !ok {
		return
	}
	file, ok := h.file(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.close()
	}

	info, err := h.assignmentService.Update(c.Request.Context(), id, course.UpdateAssignmentInput{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     dueDate,
		File:        file.upload(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Delete godoc
// @Summary      Delete an assignment
// @Description  Staff only. Deletes the stored brief and the row.
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Assignment ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, "Assignment deleted")
}

// FileURL godoc
// @Summary      Download link of an assignment brief
// @Description  Returns a presigned URL with its expiry.
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Assignment ID"
// @Success      200 {object} dto.Response{data=course.FileURL}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /assignments/{id}/file [get]
func (h *AssignmentHandler) FileURL(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	url, err := h.assignmentService.FileURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, url)
}

type uploadedFile struct {
	header *multipart.FileHeader
	body   multipart.File
}

func (f *uploadedFile) upload() *course.FileUpload {
	if f == nil {
		return nil
	}
	return &course.FileUpload{
		Filename:    f.header.Filename,
		ContentType: f.header.Header.Get("Content-Type"),
		Size:        f.header.Size,
		Body:        f.body,
	}
}

func (f *uploadedFile) close() {
	_ = f.body.Close()
}

// file opens the optional "file" part; nil means none was sent
func (h *AssignmentHandler) file(c *gin.Context) (*uploadedFile, bool) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	if err != nil {
		if !middleware.BodyTooLarge(c, err) {
			h.BadRequest(c, "Invalid file upload")
		}
		return nil, false
	}
	body, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Invalid file upload")
		return nil, false
	}
	return &uploadedFile{header: header, body: body}, true
}
