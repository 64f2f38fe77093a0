package testutil

import (
	"net/http"
	"testing"

	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	mockDB.ExpectationsWereMet(t)
}

func TestNewTestDB_Seeds(t *testing.T) {
	db := NewTestDB(t)

	var roles, statuses, courses int64
	require.NoError(t, db.Model(&models.RoleModel{}).Count(&roles).Error)
	require.NoError(t, db.Model(&models.StatusModel{}).Count(&statuses).Error)
	require.NoError(t, db.Model(&models.CourseModel{}).Count(&courses).Error)
	assert.Equal(t, int64(3), roles)
	assert.Equal(t, int64(3), statuses)
	assert.Equal(t, int64(2), courses)
}

func TestSeedTeam(t *testing.T) {
	db := NewTestDB(t)
	groupID := SeedTeam(t, db, "Rocket", "z1", "z2")

	var members []models.GroupMemberModel
	require.NoError(t, db.Where("group_id = ?", groupID).Order("member_zid").Find(&members).Error)
	require.Len(t, members, 2)
	assert.True(t, members[0].IsLeader)
	assert.False(t, members[1].IsLeader)
	assert.Empty(t, OutboxEventTypes(t, db))
}

func TestJSONRequestHelpers(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewFailResponse("INVALID_JSON", err.Error()))
			return
		}
		body["auth"] = c.GetHeader(middleware.AuthHeaderKey)
		c.JSON(http.StatusOK, body)
	})

	rec := Serve(engine, NewJSONRequest(t, http.MethodPost, "/echo",
		map[string]any{"zid": "z1"}, WithBearer("tok"), WithHeader("X-Request-ID", "req-1")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"zid": "z1", "auth": "Bearer tok"}, DecodeJSON[map[string]any](t, rec))

	rec = Serve(engine, NewJSONRequest(t, http.MethodPost, "/echo", nil, WithBearer("")))
	AssertFail(t, rec, http.StatusBadRequest, "INVALID_JSON")
}
