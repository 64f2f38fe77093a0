// Package testutil holds test fixtures for the TeamHub backend: sqlite and
// sqlmock databases, seed rows, JSON request helpers and polling assertions.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/infrastructure/event"
	"github.com/avocado/teamhub/internal/infrastructure/persistence"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM handle backed by sqlmock.
// The caller is responsible for calling Close() when done.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	database, err := persistence.Open(dialector, nil)
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{
		DB:    database.DB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// Close closes the mock database connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	err := m.Mock.ExpectationsWereMet()
	require.NoError(t, err, "Unmet database expectations")
}

// Seeded course codes
const (
	CourseCapstone = "COMP9900"
	CourseProject  = "COMP3900"
)

// NewTestDB opens an in-memory sqlite database with the full schema and the
// seeded roles, statuses and courses. One connection keeps it alive.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := persistence.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.DB
	require.NoError(t, db.AutoMigrate(models.All()...))

	require.NoError(t, db.Create(&[]models.RoleModel{
		{ID: identity.RoleStudent, Name: "student"},
		{ID: identity.RoleAdmin, Name: "admin"},
		{ID: identity.RoleTutor, Name: "tutor"},
	}).Error)
	require.NoError(t, db.Create(&[]models.StatusModel{
		{ID: 1, Name: "To Do"},
		{ID: 2, Name: "In Progress"},
		{ID: 3, Name: "Done"},
	}).Error)
	require.NoError(t, db.Create(&[]models.CourseModel{
		{Code: CourseCapstone, Name: "Capstone Project"},
		{Code: CourseProject, Name: "Software Engineering Project"},
	}).Error)
	return db
}

// NewTxScope returns a transaction scope whose events land in the outbox table
func NewTxScope(db *gorm.DB) *persistence.GormTransactionScope {
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	return persistence.NewGormTransactionScope(db, event.NewOutboxPublisher(serializer))
}

// OutboxEventTypes lists the event types written to the outbox in insertion order
func OutboxEventTypes(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var rows []models.OutboxEntryModel
	require.NoError(t, db.Order("created_at, id").Find(&rows).Error)
	types := make([]string, 0, len(rows))
	for _, r := range rows {
		types = append(types, r.EventType)
	}
	return types
}

// SeedUser inserts a user with the given password
func SeedUser(t *testing.T, db *gorm.DB, zid, name, password string, roleID int64) {
	t.Helper()
	hash, err := identity.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.UserModel{
		Zid:          zid,
		Name:         name,
		PasswordHash: hash,
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	}).Error)
}

// SeedGroup inserts a group and returns its id
func SeedGroup(t *testing.T, db *gorm.DB, courseCode, name string) int64 {
	t.Helper()
	g := &models.GroupModel{CourseCode: courseCode, Name: name, CreatedAt: time.Now()}
	require.NoError(t, db.Create(g).Error)
	return g.ID
}

// SeedMember adds zid to a group
func SeedMember(t *testing.T, db *gorm.DB, groupID int64, zid string, leader bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.GroupMemberModel{
		GroupID:   groupID,
		MemberZid: zid,
		IsLeader:  leader,
		JoinedAt:  time.Now(),
	}).Error)
}

// SeedAssignment inserts an assignment and returns its id
func SeedAssignment(t *testing.T, db *gorm.DB, courseCode, name string) int64 {
	t.Helper()
	a := &models.AssignmentModel{CourseCode: courseCode, Name: name, CreatedAt: time.Now()}
	require.NoError(t, db.Create(a).Error)
	return a.ID
}

// SeedTeam creates a group in COMP9900 with a student per zid; the first is the leader
func SeedTeam(t *testing.T, db *gorm.DB, name string, zids ...string) int64 {
	t.Helper()
	groupID := SeedGroup(t, db, CourseCapstone, name)
	for i, zid := range zids {
		SeedUser(t, db, zid, "Student "+zid, "secret", identity.RoleStudent)
		SeedMember(t, db, groupID, zid, i == 0)
	}
	return groupID
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T { return &v }

// AssertEventually fails the test unless condition holds before timeout
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !WaitForCondition(t, condition, timeout, interval) {
		t.Fatalf("condition not met within %v: %v", timeout, msgAndArgs)
	}
}
