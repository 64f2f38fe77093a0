// Package meeting contains the application services for group meetings,
// attendance and agenda generation.
package meeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// sweepBatchSize bounds the meetings completed per sweep run
const sweepBatchSize = 100

// MeetingService schedules meetings and tracks their lifecycle
type MeetingService struct {
	txScope     appshared.TransactionScope
	meetings    meeting.MeetingRepository
	attendances meeting.AttendanceRepository
	assignments course.AssignmentRepository
	members     course.MemberRepository
	completer   shared.Completer
	logger      *zap.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(
	txScope appshared.TransactionScope,
	meetings meeting.MeetingRepository,
	attendances meeting.AttendanceRepository,
	assignments course.AssignmentRepository,
	members course.MemberRepository,
	completer shared.Completer,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		txScope:     txScope,
		meetings:    meetings,
		attendances: attendances,
		assignments: assignments,
		members:     members,
		completer:   completer,
		logger:      logger,
	}
}

// Create schedules a meeting and writes a zero-duration attendance row for
// every current member of the group, all in one transaction.
func (s *MeetingService) Create(ctx context.Context, input CreateMeetingInput) (*MeetingInfo, error) {
	m, err := meeting.NewMeeting(input.GroupID, input.AssignmentID, input.Start, input.End, input.Title, input.Goal)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if _, err := repos.Groups().FindByID(ctx, m.GroupID); err != nil {
			return appshared.NotFound(s.logger, err, "Group not found")
		}
		if err := repos.Meetings().Create(ctx, m); err != nil {
			return err
		}

		members, err := repos.Members().FindByGroup(ctx, m.GroupID)
		if err != nil {
			return err
		}
		rows := make([]meeting.Attendance, 0, len(members))
		attendees := make([]string, 0, len(members))
		for _, member := range members {
			rows = append(rows, meeting.InitialAttendance(m, member.MemberZid))
			attendees = append(attendees, member.MemberZid)
		}
		if err := repos.Attendances().CreateBatch(ctx, rows); err != nil {
			return err
		}

		m.AddDomainEvent(meeting.NewMeetingScheduledEvent(m, attendees))
		return repos.Events().Save(ctx, m.PullDomainEvents()...)
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to create meeting", err, zap.Int64("group_id", input.GroupID))
	}

	s.logger.Info("Meeting scheduled",
		zap.Int64("meeting_id", m.ID),
		zap.Int64("group_id", m.GroupID),
		zap.Time("start_time", m.StartTime))
	info := ToMeetingInfo(m)
	return &info, nil
}

// List returns the group's meetings ordered by start time
func (s *MeetingService) List(ctx context.Context, groupID int64) ([]MeetingInfo, error) {
	views, err := s.meetings.FindViewsByGroup(ctx, groupID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list meetings", err, zap.Int64("group_id", groupID))
	}
	out := make([]MeetingInfo, 0, len(views))
	for i := range views {
		out = append(out, toViewInfo(&views[i]))
	}
	return out, nil
}

// UpdateStatus applies a client status change under a row lock
func (s *MeetingService) UpdateStatus(ctx context.Context, id int64, status string) (*MeetingInfo, error) {
	next, err := meeting.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var m *meeting.Meeting
	err = s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		var err error
		m, err = repos.Meetings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return appshared.NotFound(s.logger, err, "Meeting not found")
		}
		changed, err := m.TransitionTo(next, false)
		if err != nil || !changed {
			return err
		}
		if err := repos.Meetings().UpdateStatus(ctx, m); err != nil {
			return err
		}
		return repos.Events().Save(ctx, m.PullDomainEvents()...)
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to update meeting status", err, zap.Int64("meeting_id", id))
	}

	info := ToMeetingInfo(m)
	return &info, nil
}

// SweepOverdue completes scheduled meetings whose end time has passed.
// Each meeting is completed in its own transaction; failures are logged and skipped.
func (s *MeetingService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.meetings.FindOverdueIDs(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("find overdue meetings: %w", err)
	}

	completed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		done, err := s.completeOverdue(ctx, id, now)
		if err != nil {
			s.logger.Warn("Failed to complete overdue meeting", zap.Int64("meeting_id", id), zap.Error(err))
			continue
		}
		if done {
			completed++
		}
	}
	if completed > 0 {
		s.logger.Info("Overdue meetings completed", zap.Int("count", completed))
	}
	return completed, nil
}

func (s *MeetingService) completeOverdue(ctx context.Context, id int64, now time.Time) (bool, error) {
	var changed bool
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		m, err := repos.Meetings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// a client may have completed or canceled it since the listing
		if !m.IsOverdue(now) {
			return nil
		}
		if changed, err = m.TransitionTo(meeting.StatusCompleted, true); err != nil || !changed {
			return err
		}
		if err := repos.Meetings().UpdateStatus(ctx, m); err != nil {
			return err
		}
		return repos.Events().Save(ctx, m.PullDomainEvents()...)
	})
	return changed, err
}

// UpsertAttendance records a member's participation. Presence is always derived here.
func (s *MeetingService) UpsertAttendance(ctx context.Context, input AttendanceInput) (*AttendanceInfo, error) {
	if _, err := s.meetings.FindByID(ctx, input.MeetingID); err != nil {
		return nil, appshared.NotFound(s.logger, err, "Meeting not found")
	}
	if input.MeetingDurationHour < 0 || input.ParticipationDurationHour < 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Durations cannot be negative")
	}

	a := &meeting.Attendance{
		MeetingID:                 input.MeetingID,
		MemberZid:                 input.MemberZid,
		GroupID:                   input.GroupID,
		JoinTime:                  input.JoinTime,
		LeaveTime:                 input.LeaveTime,
		MeetingDurationHour:       input.MeetingDurationHour,
		ParticipationDurationHour: input.ParticipationDurationHour,
	}
	a.Recompute()

	if err := s.attendances.Upsert(ctx, a); err != nil {
		return nil, appshared.Internal(s.logger, "Failed to save attendance", err,
			zap.Int64("meeting_id", input.MeetingID),
			zap.String("member_zid", input.MemberZid))
	}
	info := toAttendanceInfo(a)
	return &info, nil
}

// GetAttendance returns the member's attendance rows for a meeting
func (s *MeetingService) GetAttendance(ctx context.Context, meetingID int64, memberZid string) ([]AttendanceInfo, error) {
	rows, err := s.attendances.Find(ctx, meetingID, memberZid)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load attendance", err)
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound.WithMessage("No attendance records found.")
	}
	out := make([]AttendanceInfo, 0, len(rows))
	for i := range rows {
		out = append(out, toAttendanceInfo(&rows[i]))
	}
	return out, nil
}

// GenerateAgenda asks the language model for an agenda and stores it on the meeting
func (s *MeetingService) GenerateAgenda(ctx context.Context, id int64) (*AgendaResult, error) {
	m, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, appshared.NotFound(s.logger, err, "Meeting not found")
	}

	var assignment *course.Assignment
	if m.AssignmentID != nil {
		assignment, err = s.assignments.FindByID(ctx, *m.AssignmentID)
		if err != nil {
			s.logger.Warn("Agenda without assignment context", zap.Int64("meeting_id", id), zap.Error(err))
			assignment = nil
		}
	}
	members, err := s.members.FindByGroup(ctx, m.GroupID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load members for agenda", err)
	}

	agenda, err := s.completer.Complete(ctx, shared.PurposeAgenda, agendaPrompt(m, assignment, members))
	if err != nil {
		return nil, appshared.Internal(s.logger, "Agenda generation failed", err, zap.Int64("meeting_id", id))
	}
	if err := s.meetings.SetAgenda(ctx, id, agenda); err != nil {
		return nil, appshared.NotFound(s.logger, err, "Meeting not found")
	}
	return &AgendaResult{MeetingID: id, Agenda: agenda}, nil
}

func agendaPrompt(m *meeting.Meeting, a *course.Assignment, members []course.GroupMember) []shared.ChatMessage {
	title := cases.Title(language.English)

	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", orDefault(m.Title, "Team meeting"))
	fmt.Fprintf(&b, "Status: %s\n", title.String(string(m.Status)))
	fmt.Fprintf(&b, "Time: %s to %s (%.1f hours)\n",
		m.StartTime.Format(time.RFC1123), m.EndTime.Format(time.RFC1123), m.DurationHours())
	if m.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", m.Goal)
	}
	if a != nil {
		fmt.Fprintf(&b, "Assignment: %s\n", a.Name)
		if a.Description != "" {
			fmt.Fprintf(&b, "Assignment description: %s\n", a.Description)
		}
		if a.DueDate != nil {
			fmt.Fprintf(&b, "Due: %s\n", a.DueDate.Format("2006-01-02"))
		}
	}
	b.WriteString("Attendees:\n")
	for _, member := range members {
		role := "member"
		if member.IsLeader {
			role = "leader"
		}
		fmt.Fprintf(&b, "- %s (%s, %s)\n", orDefault(member.Name, member.MemberZid), member.MemberZid, role)
	}

	return []shared.ChatMessage{
		{
			Role: shared.RoleSystem,
			Content: "You plan student project meetings. Reply with a concise agenda as a numbered list " +
				"of items with a suggested time for each, fitting the meeting length. Plain text only.",
		},
		{Role: shared.RoleUser, Content: b.String()},
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
