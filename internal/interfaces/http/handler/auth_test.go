package handler

import (
	"net/http"
	"testing"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody() map[string]any {
	return map[string]any{
		"zid":          "z5100001",
		"name":         "Priya",
		"password":     "hunter22",
		"role_id":      identity.RoleStudent,
		"course_code":  testutil.CourseCapstone,
		"is_leader":    true,
		"is_new_group": true,
		"group_name":   "Avocado",
	}
}

func TestAuthHandler_Register_NewGroup(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := dataOf(t, rec).(map[string]any)
	user := data["user"].(map[string]any)
	group := data["group"].(map[string]any)
	assert.Equal(t, "z5100001", user["zid"])
	assert.Equal(t, float64(identity.RoleStudent), user["role_id"])
	assert.Equal(t, "Avocado", group["name"])
	assert.Equal(t, testutil.CourseCapstone, group["course_code"])
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "password")

	assert.Equal(t, []string{identity.EventTypeUserRegistered}, testutil.OutboxEventTypes(t, f.db))
}

func TestAuthHandler_Register_ExistingGroupWithFalseFlags(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedGroup(t, f.db, testutil.CourseCapstone, "Alpha")

	body := registerBody()
	body["is_leader"] = false
	body["is_new_group"] = false
	body["group_id"] = groupID
	delete(body, "group_name")

	rec := f.do(t, http.MethodPost, "/register", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := dataOf(t, rec).(map[string]any)["group"].(map[string]any)
	assert.Equal(t, float64(groupID), group["id"])
}

func TestAuthHandler_Register_StaffRoleForbidden(t *testing.T) {
	f := newFixture(t)
	body := registerBody()
	body["role_id"] = identity.RoleTutor

	rec := f.do(t, http.MethodPost, "/register", body)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	resp := decodeObject(t, rec)
	assert.Equal(t, "FORBIDDEN", resp["code"])
	assert.Equal(t, "Only students can register", resp["message"])
	assert.Empty(t, testutil.OutboxEventTypes(t, f.db))
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	for _, field := range []string{"zid", "name", "password", "role_id", "course_code", "is_leader", "is_new_group"} {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t)
			body := registerBody()
			delete(body, field)

			rec := f.do(t, http.MethodPost, "/register", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeObject(t, rec)
			assert.Equal(t, "fail", resp["status"])
			assert.Equal(t, "MISSING_FIELDS", resp["code"])
			assert.Contains(t, resp["message"], field)
		})
	}

	t.Run("group_name for a new group", func(t *testing.T) {
		f := newFixture(t)
		body := registerBody()
		delete(body, "group_name")

		rec := f.do(t, http.MethodPost, "/register", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required fields: group_name", decodeObject(t, rec)["message"])
	})

	t.Run("empty body", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/register", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "fail", decodeObject(t, rec)["status"])
	})
}

func TestAuthHandler_Register_Conflicts(t *testing.T) {
	t.Run("group from another course", func(t *testing.T) {
		f := newFixture(t)
		groupID := testutil.SeedGroup(t, f.db, testutil.CourseProject, "Other")
		body := registerBody()
		body["is_new_group"] = false
		body["group_id"] = groupID

		rec := f.do(t, http.MethodPost, "/register", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "GROUP_MISMATCH", decodeObject(t, rec)["code"])
	})

	t.Run("duplicate zid rolls back the new group", func(t *testing.T) {
		f := newFixture(t)
		testutil.SeedUser(t, f.db, "z5100001", "Existing", "pw", identity.RoleStudent)

		rec := f.do(t, http.MethodPost, "/register", registerBody())
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ALREADY_EXISTS", decodeObject(t, rec)["code"])

		groups := decodeArray(t, f.do(t, http.MethodGet, "/groups", nil))
		assert.Empty(t, groups)
		assert.Empty(t, testutil.OutboxEventTypes(t, f.db))
	})
}

func TestAuthHandler_Login(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedGroup(t, f.db, testutil.CourseCapstone, "Alpha")
	testutil.SeedUser(t, f.db, "z5200002", "Noor", "correct-horse", identity.RoleStudent)
	testutil.SeedMember(t, f.db, groupID, "z5200002", true)

	t.Run("unknown user", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", map[string]any{"username": "z0000000", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeObject(t, rec)
		assert.Equal(t, "fail", resp["status"])
		assert.Equal(t, "User not found", resp["message"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", map[string]any{"username": "z5200002", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeObject(t, rec)
		assert.Equal(t, "fail", resp["status"])
		assert.Equal(t, "Incorrect password", resp["message"])
	})

	t.Run("missing password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", map[string]any{"username": "z5200002"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", map[string]any{"username": "z5200002", "password": "correct-horse"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeObject(t, rec)
		assert.Equal(t, "success", resp["status"])
		assert.Equal(t, "success", resp["message"])

		user := resp["user"].(map[string]any)
		assert.Equal(t, "z5200002", user["id"])
		assert.Equal(t, "Noor", user["name"])
		assert.Equal(t, float64(groupID), user["groupid"])

		token := resp["token"].(map[string]any)
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])
		assert.Equal(t, "Bearer", token["token_type"])
	})
}

func login(t *testing.T, f *fixture, zid, password string) (access, refresh string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/login", map[string]any{"username": zid, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decodeObject(t, rec)["token"].(map[string]any)
	return token["access_token"].(string), token["refresh_token"].(string)
}

func TestAuthHandler_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "z5300003", "Lee", "pw-123456", identity.RoleTutor)
	access, refresh := login(t, f, "z5300003", "pw-123456")

	rec := f.serve(testutil.NewJSONRequest(t, http.MethodGet, "/auth/me", nil, testutil.WithBearer(access)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := dataOf(t, rec).(map[string]any)
	assert.Equal(t, "z5300003", session["zid"])
	assert.Equal(t, float64(identity.RoleTutor), session["role_id"])
	assert.Nil(t, session["group_id"])

	rec = f.do(t, http.MethodPost, "/auth/refresh", map[string]any{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, dataOf(t, rec).(map[string]any)["access_token"])

	rec = f.do(t, http.MethodPost, "/auth/refresh", map[string]any{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "an access token is not a refresh token")

	rec = f.serve(testutil.NewJSONRequest(t, http.MethodPost, "/auth/logout", nil, testutil.WithBearer(access)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.serve(testutil.NewJSONRequest(t, http.MethodGet, "/auth/me", nil, testutil.WithBearer(access)))
	testutil.AssertFail(t, rec, http.StatusUnauthorized, "TOKEN_REVOKED")
}

func TestAuthHandler_MeRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/auth/me", nil)
	testutil.AssertFail(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	rec = f.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
