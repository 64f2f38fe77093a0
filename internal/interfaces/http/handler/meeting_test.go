package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMeeting(t *testing.T, f *fixture, groupID int64, extra map[string]any) map[string]any {
	t.Helper()
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	body := map[string]any{
		"group_id":      groupID,
		"start":         start,
		"end":           start.Add(90 * time.Minute),
		"meeting_title": "Sprint planning",
		"goal":          "Split the backlog",
	}
	for k, v := range extra {
		body[k] = v
	}
	rec := f.do(t, http.MethodPost, "/new-meetings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataOf(t, rec).(map[string]any)
}

func TestMeetingHandler_Create(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedTeam(t, f.db, "Avocado", "z1", "z2", "z3")
	f.as("z1", identity.RoleStudent)

	created := createMeeting(t, f, groupID, nil)
	assert.Equal(t, "scheduled", created["status"])
	assert.Equal(t, "Sprint planning", created["meeting_title"])
	meetingID := int64(created["id"].(float64))

	for _, zid := range []string{"z1", "z2", "z3"} {
		rec := f.do(t, http.MethodGet, path("/meeting-attendance?meeting_id=%d&member_zid=%s", meetingID, zid), nil)
		require.Equal(t, http.StatusOK, rec.Code, zid)
		rows := dataOf(t, rec).([]any)
		require.Len(t, rows, 1)
		row := rows[0].(map[string]any)
		assert.Equal(t, float64(0), row["participation_duration_hour"])
		assert.Equal(t, false, row["is_present"])
	}

	assert.Equal(t, []string{meeting.EventTypeMeetingScheduled}, testutil.OutboxEventTypes(t, f.db))
}

func TestMeetingHandler_CreateValidation(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedTeam(t, f.db, "Avocado", "z1")
	f.as("z1", identity.RoleStudent)
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{
			name:    "missing start",
			body:    map[string]any{"group_id": groupID, "end": start},
			status:  http.StatusBadRequest,
			message: "Missing required fields: start",
		},
		{
			name:    "end before start",
			body:    map[string]any{"group_id": groupID, "start": start, "end": start.Add(-time.Hour)},
			status:  http.StatusBadRequest,
			message: "End time must be greater than start time.",
		},
		{
			name:    "end equals start",
			body:    map[string]any{"group_id": groupID, "start": start, "end": start},
			status:  http.StatusBadRequest,
			message: "End time must be greater than start time.",
		},
		{
			name:    "unknown group",
			body:    map[string]any{"group_id": 999, "start": start, "end": start.Add(time.Hour)},
			status:  http.StatusNotFound,
			message: "Group not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/new-meetings", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.message, decodeObject(t, rec)["message"])
		})
	}

	assert.Empty(t, testutil.OutboxEventTypes(t, f.db))
}

func TestMeetingHandler_List(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedTeam(t, f.db, "Avocado", "z1")
	assignmentID := testutil.SeedAssignment(t, f.db, testutil.CourseCapstone, "Sprint 1")
	f.as("z1", identity.RoleStudent)

	createMeeting(t, f, groupID, map[string]any{"assignment_id": assignmentID})

	rec := f.do(t, http.MethodGet, path("/meetings?groupId=%d", groupID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meetings := dataOf(t, rec).([]any)
	require.Len(t, meetings, 1)
	m := meetings[0].(map[string]any)
	assert.Equal(t, "Sprint 1", m["assignment"].(map[string]any)["name"])
	assert.Equal(t, "Avocado", m["group"].(map[string]any)["name"])

	rec = f.do(t, http.MethodGet, "/meetings?groupId=999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dataOf(t, rec))

	rec = f.do(t, http.MethodGet, "/meetings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeetingHandler_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedTeam(t, f.db, "Avocado", "z1")
	f.as("z1", identity.RoleStudent)
	meetingID := int64(createMeeting(t, f, groupID, nil)["id"].(float64))
	statusPath := path("/meetings/%d/status", meetingID)

	rec := f.do(t, http.MethodPatch, statusPath, map[string]any{"status": "done"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status value", decodeObject(t, rec)["message"])

	rec = f.do(t, http.MethodPatch, statusPath, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeObject(t, rec)
	assert.Equal(t, "Meeting status updated", body["message"])
	assert.Equal(t, "completed", body["data"].(map[string]any)["status"])

	rec = f.do(t, http.MethodPatch, statusPath, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusOK, rec.Code, "repeating the current status is a no-op")

	rec = f.do(t, http.MethodPatch, statusPath, map[string]any{"status": "canceled"})
	testutil.AssertFail(t, rec, http.StatusBadRequest, "INVALID_STATE")

	rec = f.do(t, http.MethodPatch, "/meetings/999/status", map[string]any{"status": "canceled"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{
		meeting.EventTypeMeetingScheduled,
		meeting.EventTypeMeetingCompleted,
	}, testutil.OutboxEventTypes(t, f.db))
}

func TestMeetingHandler_Attendance(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedTeam(t, f.db, "Avocado", "z1", "z2")
	f.as("z1", identity.RoleStudent)
	meetingID := int64(createMeeting(t, f, groupID, nil)["id"].(float64))
	join := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

	report := func(participation float64) map[string]any {
		rec := f.do(t, http.MethodPost, "/meeting-attendance", map[string]any{
			"meeting_id":                  meetingID,
			"member_zid":                  "z2",
			"group_id":                    groupID,
			"join_time":                   join,
			"leave_time":                  join.Add(time.Hour),
			"meeting_duration_hour":       1.5,
			"participation_duration_hour": participation,
			"is_present":                  false,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return dataOf(t, rec).(map[string]any)
	}

	assert.Equal(t, true, report(1.2)["is_present"], "80% of the meeting counts as present")
	assert.Equal(t, false, report(1.0)["is_present"])

	rec := f.do(t, http.MethodGet, path("/meeting-attendance?meeting_id=%d&member_zid=z2", meetingID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := dataOf(t, rec).([]any)
	require.Len(t, rows, 1, "the second report replaces the first")
	assert.Equal(t, 1.0, rows[0].(map[string]any)["participation_duration_hour"])

	rec = f.do(t, http.MethodGet, path("/meeting-attendance?meeting_id=%d&member_zid=nobody", meetingID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No attendance records found.", decodeObject(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/meeting-attendance", map[string]any{
		"meeting_id":            meetingID,
		"member_zid":            "z2",
		"group_id":              groupID,
		"meeting_duration_hour": -1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/meeting-attendance", map[string]any{
		"meeting_id": 999,
		"member_zid": "z2",
		"group_id":   groupID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMeetingHandler_GenerateAgenda(t *testing.T) {
	f := newFixture(t)
	groupID := testutil.SeedTeam(t, f.db, "Avocado", "z1", "z2")
	f.as("z1", identity.RoleStudent)
	meetingID := int64(createMeeting(t, f, groupID, nil)["id"].(float64))

	f.completer.reply = "1. Standup (10 min)\n2. Backlog (60 min)"
	rec := f.do(t, http.MethodPost, path("/meetings/%d/agenda", meetingID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, f.completer.reply, dataOf(t, rec).(map[string]any)["agenda"])

	require.Len(t, f.completer.prompts, 1)
	prompt := f.completer.prompts[0][1].Content
	assert.Contains(t, prompt, "Sprint planning")
	assert.Contains(t, prompt, "z1, leader")

	rec = f.do(t, http.MethodGet, path("/meetings?groupId=%d", groupID), nil)
	stored := dataOf(t, rec).([]any)[0].(map[string]any)
	assert.Equal(t, f.completer.reply, stored["agenda"])

	f.completer.err = shared.ErrServiceUnavailable
	rec = f.do(t, http.MethodPost, path("/meetings/%d/agenda", meetingID), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f.completer.err = errors.New("upstream timeout")
	rec = f.do(t, http.MethodPost, path("/meetings/%d/agenda", meetingID), nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeObject(t, rec)["message"])
}
