package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appchannel "github.com/avocado/teamhub/internal/application/channel"
	appcourse "github.com/avocado/teamhub/internal/application/course"
	appevent "github.com/avocado/teamhub/internal/application/event"
	appidentity "github.com/avocado/teamhub/internal/application/identity"
	appmeeting "github.com/avocado/teamhub/internal/application/meeting"
	appreview "github.com/avocado/teamhub/internal/application/review"
	apptask "github.com/avocado/teamhub/internal/application/task"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/auth"
	"github.com/avocado/teamhub/internal/infrastructure/cache"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	infraevent "github.com/avocado/teamhub/internal/infrastructure/event"
	"github.com/avocado/teamhub/internal/infrastructure/persistence"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/avocado/teamhub/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// fakeCompleter returns a canned reply and records the prompts it saw
type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts [][]shared.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, _ shared.CompletionPurpose, messages []shared.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, messages)
	return f.reply, f.err
}

// memoryFileStore keeps uploaded objects in a map
type memoryFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{objects: make(map[string][]byte)}
}

func (s *memoryFileStore) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryFileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryFileStore) PresignDownload(_ context.Context, key string) (string, time.Time, error) {
	return "https://files.test/" + key, time.Now().Add(15 * time.Minute), nil
}

func (s *memoryFileStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

type fixture struct {
	db          *gorm.DB
	engine      *gin.Engine
	session     *identity.Session
	completer   *fakeCompleter
	files       *memoryFileStore
	tokens      *auth.TokenService
	revocations *auth.MemoryRevocationList
}

// newFixture wires the real services over an in-memory database and mounts
// every handler on one engine. Requests carry the session set with as().
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	lookups := cache.NewInMemoryLookupCache()
	t.Cleanup(func() { _ = lookups.Close() })

	f := &fixture{
		db:        db,
		completer: &fakeCompleter{},
		files:     newMemoryFileStore(),
		tokens: auth.NewTokenService(config.JWTConfig{
			Secret:                 "handler-test-secret-32-characters",
			RefreshSecret:          "handler-test-refresh-32-characters",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "teamhub-test",
			MaxRefreshCount:        3,
		}),
		revocations: auth.NewMemoryRevocationList(),
	}

	log := zap.NewNop()
	txScope := testutil.NewTxScope(db)
	users := persistence.NewGormUserRepository(db)
	courses := persistence.NewGormCourseRepository(db)
	groups := persistence.NewGormGroupRepository(db)
	members := persistence.NewGormMemberRepository(db)
	assignments := persistence.NewGormAssignmentRepository(db)

	authHandler := NewAuthHandler(
		appidentity.NewAuthService(users, members, f.tokens, f.revocations, log),
		appidentity.NewUserService(txScope, users, courses, log),
	)
	userHandler := NewUserHandler(
		appidentity.NewUserService(txScope, users, courses, log),
		appidentity.NewRoleService(persistence.NewGormRoleRepository(db), lookups, log),
	)
	courseHandler := NewCourseHandler(
		appcourse.NewLookupService(courses, persistence.NewGormStatusRepository(db), groups, members, assignments, lookups, log),
		appcourse.NewEvaluationService(txScope, log),
	)
	assignmentHandler := NewAssignmentHandler(appcourse.NewAssignmentService(assignments, courses, f.files, lookups, log))
	meetingHandler := NewMeetingHandler(appmeeting.NewMeetingService(
		txScope,
		persistence.NewGormMeetingRepository(db),
		persistence.NewGormAttendanceRepository(db),
		assignments, members, f.completer, log,
	))
	taskHandler := NewTaskHandler(apptask.NewTaskService(txScope, persistence.NewGormTaskRepository(db), log))
	reviewHandler := NewReviewHandler(appreview.NewReviewService(
		txScope,
		persistence.NewGormReviewRepository(db),
		persistence.NewGormAnalysisRepository(db),
		persistence.NewGormContributionRepository(db),
		members, f.completer, log,
	))
	channelHandler := NewChannelHandler(appchannel.NewChannelService(
		txScope,
		persistence.NewGormChannelRepository(db),
		persistence.NewGormChannelMemberRepository(db),
		persistence.NewGormMessageRepository(db),
		f.completer, appchannel.Options{}, log,
	))
	outboxHandler := NewOutboxHandler(appevent.NewOutboxService(infraevent.NewGormOutboxRepository(db), log))

	jwtAuth := middleware.Authenticate(middleware.AuthConfig{
		Tokens:      f.tokens,
		Revocations: f.revocations,
	})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader(middleware.AuthHeaderKey) != "" {
			jwtAuth(c)
			return
		}
		if f.session != nil {
			middleware.SetSession(c, *f.session)
		}
		c.Next()
	})

	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.GET("/auth/me", authHandler.Me)
	r.POST("/auth/logout", authHandler.Logout)

	r.GET("/username", userHandler.Username)
	r.GET("/user-role", userHandler.UserRole)
	r.GET("/tutors", userHandler.Tutors)
	r.GET("/roles", userHandler.Roles)

	r.GET("/courses", courseHandler.Courses)
	r.GET("/groups", courseHandler.Groups)
	r.GET("/statuses", courseHandler.Statuses)
	r.GET("/assignments", courseHandler.Assignments)
	r.GET("/assignments-Course-Based", courseHandler.AssignmentsByCourse)
	r.GET("/group-id", courseHandler.GroupID)
	r.GET("/team-members", courseHandler.TeamMembers)
	r.GET("/group-members", courseHandler.GroupMembers)
	r.PATCH("/group-members/evaluation", courseHandler.ReleaseMemberEvaluation)
	r.PATCH("/groups/evaluation", courseHandler.RecomputeGroupEvaluation)

	r.POST("/assignments", assignmentHandler.Create)
	r.PUT("/assignments/:id", assignmentHandler.Update)
	r.DELETE("/assignments/:id", assignmentHandler.Delete)
	r.GET("/assignments/:id/file", assignmentHandler.FileURL)

	r.POST("/new-meetings", meetingHandler.Create)
	r.GET("/meetings", meetingHandler.List)
	r.PATCH("/meetings/:id/status", meetingHandler.UpdateStatus)
	r.POST("/meetings/:id/agenda", meetingHandler.GenerateAgenda)
	r.POST("/meeting-attendance", meetingHandler.UpsertAttendance)
	r.GET("/meeting-attendance", meetingHandler.GetAttendance)

	r.GET("/my-tasks", taskHandler.MyTasks)
	r.GET("/tasks", taskHandler.Tasks)
	r.POST("/create-task", taskHandler.Create)
	r.PUT("/tasks/:taskId/:origin_assignee_id", taskHandler.Update)
	r.DELETE("/tasks/:taskId/:assignee_id", taskHandler.Delete)

	r.POST("/api/peer-reviews", reviewHandler.Submit)
	r.POST("/api/peer-reviews/analyze", reviewHandler.Analyze)
	r.GET("/api/peer-reviews/group/:group_id/assignment/:assignment_id", reviewHandler.GroupReviews)
	r.GET("/api/peer-reviews/member/:zid", reviewHandler.MemberReviews)
	r.GET("/api/peer-reviews/scores/group/:group_id/assignment/:assignment_id", reviewHandler.AverageScores)
	r.GET("/api/peer-reviews/analysis-results/group/:group_id/assignment/:assignment_id", reviewHandler.AnalysisResults)
	r.GET("/group-contributions", reviewHandler.GroupContributions)
	r.GET("/private-contributions/:group_id", reviewHandler.PrivateContributions)
	r.GET("/my-contributions", reviewHandler.MyContributions)

	r.GET("/api/channels", channelHandler.List)
	r.POST("/api/channels", channelHandler.Create)
	r.DELETE("/api/channels/:id", channelHandler.Delete)
	r.GET("/api/channels/:id/messages", channelHandler.Messages)
	r.POST("/api/channels/:id/messages", channelHandler.PostMessage)
	r.GET("/api/channels/:id/members", channelHandler.Members)
	r.POST("/api/channels/:id/members", channelHandler.AddMember)
	r.DELETE("/api/channels/:id/members/:zid", channelHandler.RemoveMember)

	r.GET("/system/outbox/dead", outboxHandler.DeadLetters)
	r.GET("/system/outbox/stats", outboxHandler.Stats)
	r.POST("/system/outbox/dead/retry-all", outboxHandler.RetryAll)
	r.GET("/system/outbox/:id", outboxHandler.Entry)
	r.POST("/system/outbox/:id/retry", outboxHandler.Retry)

	f.engine = r
	return f
}

// as makes the following requests act for zid
func (f *fixture) as(zid string, roleID int64) *fixture {
	f.session = &identity.Session{Zid: zid, Name: "User " + zid, RoleID: roleID}
	return f
}

func (f *fixture) anonymous() *fixture {
	f.session = nil
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.serve(testutil.NewJSONRequest(t, method, path, body))
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	return testutil.Serve(f.engine, req)
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	return testutil.DecodeJSON[map[string]any](t, rec)
}

func decodeArray(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	return testutil.DecodeJSON[[]any](t, rec)
}

// dataOf returns the envelope's data field
func dataOf(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()
	body := decodeObject(t, rec)
	require.Equal(t, "success", body["status"], rec.Body.String())
	return body["data"]
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
