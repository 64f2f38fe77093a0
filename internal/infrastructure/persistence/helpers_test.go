package persistence

import (
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the full schema and the
// seeded lookup rows. A single connection keeps the database alive for the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.DB
	require.NoError(t, db.AutoMigrate(models.All()...))

	require.NoError(t, db.Create(&[]models.RoleModel{
		{ID: 1, Name: "student"},
		{ID: 2, Name: "admin"},
		{ID: 3, Name: "tutor"},
	}).Error)
	require.NoError(t, db.Create(&[]models.StatusModel{
		{ID: 1, Name: "To Do"},
		{ID: 2, Name: "In Progress"},
		{ID: 3, Name: "Done"},
	}).Error)
	require.NoError(t, db.Create(&[]models.CourseModel{
		{Code: "COMP9900", Name: "Capstone"},
		{Code: "COMP3900", Name: "Project"},
	}).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, zid, name string, roleID int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserModel{
		Zid:          zid,
		Name:         name,
		PasswordHash: "hash",
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	}).Error)
}

func seedGroup(t *testing.T, db *gorm.DB, courseCode, name string) int64 {
	t.Helper()
	g := &models.GroupModel{CourseCode: courseCode, Name: name, CreatedAt: time.Now()}
	require.NoError(t, db.Create(g).Error)
	return g.ID
}

func seedMember(t *testing.T, db *gorm.DB, groupID int64, zid string, leader bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.GroupMemberModel{
		GroupID:   groupID,
		MemberZid: zid,
		IsLeader:  leader,
		JoinedAt:  time.Now(),
	}).Error)
}

func seedAssignment(t *testing.T, db *gorm.DB, courseCode, name string) int64 {
	t.Helper()
	a := &models.AssignmentModel{CourseCode: courseCode, Name: name, CreatedAt: time.Now()}
	require.NoError(t, db.Create(a).Error)
	return a.ID
}

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
