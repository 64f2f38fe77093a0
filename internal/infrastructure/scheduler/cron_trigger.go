package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// runLoop fires a job every interval until the scheduler stops. A tick that
// arrives while the previous run is still going is skipped.
func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.logger.Debug("Job trigger started",
		zap.String("job", j.name),
		zap.Duration("interval", j.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Job trigger stopping", zap.String("job", j.name))
			return
		case <-ticker.C:
			if err := s.execute(ctx, j); errors.Is(err, ErrJobAlreadyRunning) {
				s.logger.Debug("Skipping tick, job still running", zap.String("job", j.name))
			}
		}
	}
}
