package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMeeting(t *testing.T, repo *GormMeetingRepository, groupID int64, assignmentID *int64, start time.Time, hours int) *meeting.Meeting {
	t.Helper()
	m, err := meeting.NewMeeting(groupID, assignmentID, start, start.Add(time.Duration(hours)*time.Hour), "Standup", "sync")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func TestGormMeetingRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("views are ordered by start and carry names", func(t *testing.T) {
		db := newTestDB(t)
		gid := seedGroup(t, db, "COMP9900", "Avocado")
		aid := seedAssignment(t, db, "COMP9900", "Proposal")
		repo := NewGormMeetingRepository(db)

		late := createMeeting(t, repo, gid, nil, base.Add(48*time.Hour), 1)
		early := createMeeting(t, repo, gid, &aid, base, 1)

		views, err := repo.FindViewsByGroup(ctx, gid)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, early.ID, views[0].ID)
		assert.Equal(t, "Proposal", views[0].AssignmentName)
		assert.Equal(t, "Avocado", views[0].GroupName)
		assert.Equal(t, late.ID, views[1].ID)
		assert.Empty(t, views[1].AssignmentName)
		assert.True(t, views[0].StartTime.Equal(base))
	})

	t.Run("update status", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormMeetingRepository(db)
		m := createMeeting(t, repo, seedGroup(t, db, "COMP9900", "G"), nil, base, 1)

		changed, err := m.TransitionTo(meeting.StatusCanceled, false)
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, repo.UpdateStatus(ctx, m))

		found, err := repo.FindByIDForUpdate(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, meeting.StatusCanceled, found.Status)

		m.ID = 9999
		assert.ErrorIs(t, repo.UpdateStatus(ctx, m), shared.ErrNotFound)
	})

	t.Run("overdue ids only include scheduled meetings that ended", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormMeetingRepository(db)
		gid := seedGroup(t, db, "COMP9900", "G")
		past := createMeeting(t, repo, gid, nil, base, 1)
		createMeeting(t, repo, gid, nil, base.Add(72*time.Hour), 1)
		done := createMeeting(t, repo, gid, nil, base, 1)
		_, err := done.TransitionTo(meeting.StatusCompleted, false)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, done))

		ids, err := repo.FindOverdueIDs(ctx, base.Add(24*time.Hour), 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{past.ID}, ids)
	})

	t.Run("set agenda", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormMeetingRepository(db)
		m := createMeeting(t, repo, seedGroup(t, db, "COMP9900", "G"), nil, base, 1)

		require.NoError(t, repo.SetAgenda(ctx, m.ID, "1. Review"))
		found, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "1. Review", found.Agenda)
	})
}

func TestGormAttendanceRepository(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	db := newTestDB(t)
	gid := seedGroup(t, db, "COMP9900", "G")
	meetings := NewGormMeetingRepository(db)
	m := createMeeting(t, meetings, gid, nil, start, 2)
	repo := NewGormAttendanceRepository(db)

	require.NoError(t, repo.CreateBatch(ctx, []meeting.Attendance{
		meeting.InitialAttendance(m, "a"),
		meeting.InitialAttendance(m, "b"),
	}))

	rows, err := repo.FindByMeeting(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Zero(t, r.MeetingDurationHour)
		assert.Zero(t, r.ParticipationDurationHour)
		assert.False(t, r.IsPresent)
	}

	update := meeting.Attendance{
		MeetingID:                 m.ID,
		MemberZid:                 "a",
		GroupID:                   gid,
		JoinTime:                  start,
		LeaveTime:                 start.Add(90 * time.Minute),
		MeetingDurationHour:       2,
		ParticipationDurationHour: 1.5,
	}
	update.Recompute()
	require.NoError(t, repo.Upsert(ctx, &update))

	a, err := repo.Find(ctx, m.ID, "a")
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.True(t, a[0].IsPresent)
	assert.Equal(t, 1.5, a[0].ParticipationDurationHour)

	b, err := repo.Find(ctx, m.ID, "b")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Zero(t, b[0].ParticipationDurationHour)
	assert.False(t, b[0].IsPresent)

	all, err := repo.FindByMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
