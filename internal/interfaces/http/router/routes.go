package router

import (
	"net/http"

	"github.com/avocado/teamhub/internal/interfaces/http/handler"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// APIHandlers are the handlers served by the API server
type APIHandlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Course     *handler.CourseHandler
	Assignment *handler.AssignmentHandler
	Meeting    *handler.MeetingHandler
	Task       *handler.TaskHandler
	Review     *handler.ReviewHandler
	Outbox     *handler.OutboxHandler
	System     *handler.SystemHandler
}

// ChatHandlers are the handlers served by the chat server
type ChatHandlers struct {
	Channel   *handler.ChannelHandler
	WebSocket *handler.WebSocketHandler
	System    *handler.SystemHandler
}

// UploadLimits raises the body limit of the routes that take an
// assignment brief to maxUpload
func UploadLimits(maxUpload int64) map[string]int64 {
	return map[string]int64{
		middleware.RouteKey(http.MethodPost, "/assignments"):    maxUpload,
		middleware.RouteKey(http.MethodPut, "/assignments/:id"): maxUpload,
	}
}

// APIRoutes returns the API server's route groups. The public group needs
// no session; everything else runs behind authenticate.
func APIRoutes(h APIHandlers, authenticate gin.HandlerFunc) []RouteRegistrar {
	public := NewDomainGroup("public", "")
	public.GET("/health", h.System.Health)
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.POST("/auth/refresh", h.Auth.Refresh)
	public.GET("/courses", h.Course.Courses)
	public.GET("/groups", h.Course.Groups)
	public.GET("/statuses", h.Course.Statuses)
	public.GET("/roles", h.User.Roles)
	public.GET("/assignments", h.Course.Assignments)
	public.GET("/assignments-Course-Based", h.Course.AssignmentsByCourse)

	protected := NewDomainGroup("protected", "").Use(authenticate)

	identity := protected.Group("identity", "")
	identity.GET("/auth/me", h.Auth.Me)
	identity.POST("/auth/logout", h.Auth.Logout)
	identity.GET("/username", h.User.Username)
	identity.GET("/user-role", h.User.UserRole)
	identity.GET("/tutors", h.User.Tutors)

	course := protected.Group("course", "")
	course.GET("/group-id", h.Course.GroupID)
	course.GET("/team-members", h.Course.TeamMembers)
	course.GET("/group-members", h.Course.GroupMembers)
	course.PATCH("/group-members/evaluation", middleware.RequireStaff(), h.Course.ReleaseMemberEvaluation)
	course.PATCH("/groups/evaluation", middleware.RequireStaff(), h.Course.RecomputeGroupEvaluation)
	course.GET("/assignments/:id/file", h.Assignment.FileURL)

	assignments := protected.Group("assignment", "/assignments").Use(middleware.RequireStaff())
	assignments.POST("", h.Assignment.Create)
	assignments.PUT("/:id", h.Assignment.Update)
	assignments.DELETE("/:id", h.Assignment.Delete)

	meeting := protected.Group("meeting", "")
	meeting.POST("/new-meetings", h.Meeting.Create)
	meeting.GET("/meetings", h.Meeting.List)
	meeting.PATCH("/meetings/:id/status", h.Meeting.UpdateStatus)
	meeting.POST("/meetings/:id/agenda", h.Meeting.GenerateAgenda)
	meeting.POST("/meeting-attendance", h.Meeting.UpsertAttendance)
	meeting.GET("/meeting-attendance", h.Meeting.GetAttendance)

	task := protected.Group("task", "")
	task.GET("/my-tasks", h.Task.MyTasks)
	task.GET("/tasks", h.Task.Tasks)
	task.POST("/create-task", h.Task.Create)
	task.PUT("/tasks/:taskId/:origin_assignee_id", h.Task.Update)
	task.DELETE("/tasks/:taskId/:assignee_id", h.Task.Delete)

	reviews := protected.Group("review", "/api/peer-reviews")
	reviews.POST("", h.Review.Submit)
	reviews.POST("/analyze", h.Review.Analyze)
	reviews.GET("/group/:group_id/assignment/:assignment_id", h.Review.GroupReviews)
	reviews.GET("/member/:zid", h.Review.MemberReviews)
	reviews.GET("/scores/group/:group_id/assignment/:assignment_id", h.Review.AverageScores)
	reviews.GET("/analysis-results/group/:group_id/assignment/:assignment_id", h.Review.AnalysisResults)

	contributions := protected.Group("contribution", "")
	contributions.GET("/group-contributions", h.Review.GroupContributions)
	contributions.GET("/private-contributions/:group_id", h.Review.PrivateContributions)
	contributions.GET("/my-contributions", h.Review.MyContributions)

	system := protected.Group("system", "/system")
	system.GET("/info", h.System.Info)
	system.GET("/ping", h.System.Ping)

	outbox := system.Group("outbox", "/outbox").Use(middleware.RequireStaff())
	outbox.GET("", h.Outbox.List)
	outbox.GET("/dead", h.Outbox.DeadLetters)
	outbox.GET("/stats", h.Outbox.Stats)
	outbox.POST("/dead/retry-all", h.Outbox.RetryAll)
	outbox.GET("/:id", h.Outbox.Entry)
	outbox.POST("/:id/retry", h.Outbox.Retry)

	return []RouteRegistrar{public, protected}
}

// ChatRoutes returns the chat server's route groups. authenticate must
// accept the token query parameter on /ws.
func ChatRoutes(h ChatHandlers, authenticate gin.HandlerFunc) []RouteRegistrar {
	public := NewDomainGroup("public", "")
	public.GET("/health", h.System.Health)

	protected := NewDomainGroup("protected", "").Use(authenticate)
	protected.GET("/ws", h.WebSocket.Connect)

	channels := protected.Group("channel", "/api/channels")
	channels.GET("", h.Channel.List)
	channels.POST("", h.Channel.Create)
	channels.DELETE("/:id", h.Channel.Delete)
	channels.GET("/:id/messages", h.Channel.Messages)
	channels.POST("/:id/messages", h.Channel.PostMessage)
	channels.GET("/:id/members", h.Channel.Members)
	channels.POST("/:id/members", h.Channel.AddMember)
	channels.DELETE("/:id/members/:zid", h.Channel.RemoveMember)

	return []RouteRegistrar{public, protected}
}
