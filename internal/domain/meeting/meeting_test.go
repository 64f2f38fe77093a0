package meeting

import (
	"errors"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPresent(t *testing.T) {
	tests := []struct {
		name          string
		participation float64
		meeting       float64
		want          bool
	}{
		{"exactly at threshold", 0.7, 1.0, true},
		{"just below threshold", 0.6999, 1.0, false},
		{"full attendance", 2, 2, true},
		{"no attendance", 0, 1, false},
		{"zero length meeting", 0, 0, false},
		{"negative meeting length", 1, -1, false},
		{"two hour meeting at threshold", 1.4, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPresent(tt.participation, tt.meeting))
		})
	}
}

func TestNewMeeting(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	m, err := NewMeeting(3, nil, start, start.Add(time.Hour), "Standup", "")
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, m.Status)
	assert.InDelta(t, 1.0, m.DurationHours(), 1e-9)

	_, err = NewMeeting(3, nil, start, start, "", "")
	require.Error(t, err)
	assert.Equal(t, "End time must be greater than start time.", err.Error())

	_, err = NewMeeting(0, nil, start, start.Add(time.Hour), "", "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestMeeting_TransitionTo(t *testing.T) {
	newScheduled := func() *Meeting {
		return &Meeting{ID: 9, GroupID: 3, Status: StatusScheduled}
	}

	t.Run("scheduled to completed raises event", func(t *testing.T) {
		m := newScheduled()
		changed, err := m.TransitionTo(StatusCompleted, false)
		require.NoError(t, err)
		assert.True(t, changed)
		events := m.PullDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeMeetingCompleted, events[0].EventType())
		assert.Equal(t, "9", events[0].AggregateID())
	})

	t.Run("scheduled to canceled", func(t *testing.T) {
		m := newScheduled()
		changed, err := m.TransitionTo(StatusCanceled, false)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Empty(t, m.GetDomainEvents())
	})

	t.Run("same value is idempotent", func(t *testing.T) {
		m := &Meeting{Status: StatusCompleted}
		changed, err := m.TransitionTo(StatusCompleted, false)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("terminal states reject changes", func(t *testing.T) {
		for _, from := range []Status{StatusCompleted, StatusCanceled} {
			m := &Meeting{Status: from}
			for _, to := range []Status{StatusScheduled, StatusCompleted, StatusCanceled} {
				if to == from {
					continue
				}
				_, err := m.TransitionTo(to, false)
				assert.True(t, errors.Is(err, shared.ErrInvalidState), "%s -> %s", from, to)
			}
		}
	})
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("canceled")
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, s)

	_, err = ParseStatus("cancelled")
	require.Error(t, err)
	assert.Equal(t, "Invalid status value", err.Error())
}

func TestInitialAttendance(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	m := &Meeting{ID: 1, GroupID: 2, StartTime: start, EndTime: start.Add(time.Hour)}

	a := InitialAttendance(m, "z1")
	assert.Equal(t, start, a.JoinTime)
	assert.Equal(t, start, a.LeaveTime)
	assert.Zero(t, a.MeetingDurationHour)
	assert.Zero(t, a.ParticipationDurationHour)
	assert.False(t, a.IsPresent)

	a.MeetingDurationHour, a.ParticipationDurationHour = 1, 0.75
	a.Recompute()
	assert.True(t, a.IsPresent)
}

func TestMeeting_IsOverdue(t *testing.T) {
	end := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	m := &Meeting{Status: StatusScheduled, EndTime: end}
	assert.False(t, m.IsOverdue(end.Add(-time.Second)))
	assert.True(t, m.IsOverdue(end))
	m.Status = StatusCanceled
	assert.False(t, m.IsOverdue(end.Add(time.Hour)))
}
