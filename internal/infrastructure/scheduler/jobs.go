package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// JobMeetingCompletionSweep marks overdue scheduled meetings completed
const JobMeetingCompletionSweep = "meeting-completion-sweep"

// MeetingSweeper completes meetings whose end time has passed
type MeetingSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

// MeetingCompletionSweep wraps a MeetingSweeper as a job body
func MeetingCompletionSweep(sweeper MeetingSweeper, logger *zap.Logger) JobFunc {
	return func(ctx context.Context) error {
		n, err := sweeper.SweepOverdue(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("Completed overdue meetings", zap.Int("count", n))
		}
		return nil
	}
}

// RegisterMeetingSweep registers the meeting completion sweep at the given interval
func RegisterMeetingSweep(s *Scheduler, sweeper MeetingSweeper, interval time.Duration) error {
	return s.Register(JobMeetingCompletionSweep, interval, MeetingCompletionSweep(sweeper, s.logger))
}
