package persistence

import (
	"context"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/review"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/domain/task"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Events saved through the scope land in the outbox inside the same transaction.
type GormTransactionScope struct {
	db        *gorm.DB
	saver     shared.OutboxEventSaver
	committed func()
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, saver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, saver: saver}
}

// OnEventsCommitted registers fn to run after a transaction that wrote
// outbox events has committed. The server wires it to the outbox processor's
// Wake. Call it before requests are served.
func (s *GormTransactionScope) OnEventsCommitted(fn func()) {
	s.committed = fn
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TxRepositories) error) error {
	var repos *gormTxRepositories
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos = &gormTxRepositories{tx: tx, saver: s.saver}
		return fn(repos)
	})
	if err == nil && repos != nil && repos.wroteEvents && s.committed != nil {
		s.committed()
	}
	return err
}

// gormTxRepositories provides access to all repositories within a transaction
type gormTxRepositories struct {
	tx          *gorm.DB
	saver       shared.OutboxEventSaver
	wroteEvents bool
}

func (r *gormTxRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *gormTxRepositories) Groups() course.GroupRepository {
	return NewGormGroupRepository(r.tx)
}

func (r *gormTxRepositories) Members() course.MemberRepository {
	return NewGormMemberRepository(r.tx)
}

func (r *gormTxRepositories) Assignments() course.AssignmentRepository {
	return NewGormAssignmentRepository(r.tx)
}

func (r *gormTxRepositories) Meetings() meeting.MeetingRepository {
	return NewGormMeetingRepository(r.tx)
}

func (r *gormTxRepositories) Attendances() meeting.AttendanceRepository {
	return NewGormAttendanceRepository(r.tx)
}

func (r *gormTxRepositories) Tasks() task.TaskRepository {
	return NewGormTaskRepository(r.tx)
}

func (r *gormTxRepositories) Assignees() task.AssigneeRepository {
	return NewGormAssigneeRepository(r.tx)
}

func (r *gormTxRepositories) Reviews() review.ReviewRepository {
	return NewGormReviewRepository(r.tx)
}

func (r *gormTxRepositories) Analyses() review.AnalysisRepository {
	return NewGormAnalysisRepository(r.tx)
}

func (r *gormTxRepositories) Channels() channel.ChannelRepository {
	return NewGormChannelRepository(r.tx)
}

func (r *gormTxRepositories) ChannelMembers() channel.MemberRepository {
	return NewGormChannelMemberRepository(r.tx)
}

func (r *gormTxRepositories) Messages() channel.MessageRepository {
	return NewGormMessageRepository(r.tx)
}

func (r *gormTxRepositories) Events() appshared.EventWriter {
	return &txEventWriter{repos: r}
}

// txEventWriter adapts the outbox saver to the open transaction
type txEventWriter struct {
	repos *gormTxRepositories
}

// Save writes the events to the outbox. Without a saver events are dropped.
func (w *txEventWriter) Save(ctx context.Context, events ...shared.DomainEvent) error {
	if w.repos.saver == nil || len(events) == 0 {
		return nil
	}
	if err := w.repos.saver.SaveEvents(ctx, w.repos.tx, events...); err != nil {
		return err
	}
	w.repos.wroteEvents = true
	return nil
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTxRepositories implements TxRepositories
var _ appshared.TxRepositories = (*gormTxRepositories)(nil)
