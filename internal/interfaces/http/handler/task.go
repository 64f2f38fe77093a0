package handler

import (
	"net/http"

	"github.com/avocado/teamhub/internal/application/task"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	BaseHandler
	taskService *task.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *task.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskRequest is the body of create-task and task updates
type TaskRequest struct {
	Name         string `json:"task_name" binding:"required,max=255"`
	Description  string `json:"description"`
	StatusID     int64  `json:"status_id" binding:"required,min=1"`
	Type         string `json:"type" binding:"required"`
	GroupID      *int64 `json:"group_id" binding:"omitempty,min=1"`
	ParentTaskID *int64 `json:"parent_task_id" binding:"omitempty,min=1"`
	AssignmentID *int64 `json:"assignment_id" binding:"omitempty,min=1"`
	DueDate      string `json:"due_date"`
	AssigneeID   string `json:"assignee_id"`
}

// TasksQuery selects a user's tasks within a course
type TasksQuery struct {
	Zid        string `form:"zid" binding:"required"`
	CourseCode string `form:"course_code" binding:"required"`
}

// MyTasks godoc
// @Summary      Tasks assigned to a user
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string true "Assignee zid"
// @Success      200 {array} task.TaskInfo
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /my-tasks [get]
func (h *TaskHandler) MyTasks(c *gin.Context) {
	var q ZidQuery
	if !h.BindQuery(c, &q) {
		return
	}

	tasks, err := h.taskService.MyTasks(c.Request.Context(), q.Zid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Tasks godoc
// @Summary      A user's tasks in a course
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string true "User zid"
// @Param        course_code query string true "Course code"
// @Success      200 {array} task.TaskInfo
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /tasks [get]
func (h *TaskHandler) Tasks(c *gin.Context) {
	var q TasksQuery
	if !h.BindQuery(c, &q) {
		return
	}

	tasks, err := h.taskService.Tasks(c.Request.Context(), q.Zid, q.CourseCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create godoc
// @Summary      Create a task
// @Description  The caller is recorded as the creator.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TaskRequest true "Task"
// @Success      201 {object} task.TaskInfo
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /create-task [post]
func (h *TaskHandler) Create(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	input, ok := h.bindTask(c)
	if !ok {
		return
	}

	info, err := h.taskService.Create(c.Request.Context(), session.Zid, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// Update godoc
// @Summary      Update a task
// @Description  Rewrites the assignee row from origin_assignee_id to the body's assignee_id.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskId path int true "Task ID"
// @Param        origin_assignee_id path string true "Current assignee zid"
// @Param        request body TaskRequest true "Task"
// @Success      200 {object} task.TaskInfo
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /tasks/{taskId}/{origin_assignee_id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	taskID, ok := h.ParamID(c, "taskId")
	if !ok {
		return
	}
	input, ok := h.bindTask(c)
	if !ok {
		return
	}

	info, err := h.taskService.Update(c.Request.Context(), taskID, c.Param("origin_assignee_id"), session.Zid, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Delete godoc
// @Summary      Delete a task assignment
// @Description  Deletes the assignee row and the task once it has no assignees. Returns the deleted task.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        taskId path int true "Task ID"
// @Param        assignee_id path string true "Assignee zid"
// @Success      200 {object} task.TaskInfo
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /tasks/{taskId}/{assignee_id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := h.ParamID(c, "taskId")
	if !ok {
		return
	}

	info, err := h.taskService.Delete(c.Request.Context(), taskID, c.Param("assignee_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *TaskHandler) bindTask(c *gin.Context) (task.TaskInput, bool) {
	var req TaskRequest
	if !h.BindJSON(c, &req) {
		return task.TaskInput{}, false
	}
	dueDate, ok := h.OptionalDate(c, "due_date", req.DueDate)
	if !ok {
		return task.TaskInput{}, false
	}
	return task.TaskInput{
		Name:         req.Name,
		Description:  req.Description,
		StatusID:     req.StatusID,
		Type:         req.Type,
		GroupID:      req.GroupID,
		AssignmentID: req.AssignmentID,
		DueDate:      dueDate,
		ParentTaskID: req.ParentTaskID,
		AssigneeID:   req.AssigneeID,
	}, true
}
