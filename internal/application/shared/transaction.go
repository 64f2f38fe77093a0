// Package shared holds the ports the application services share:
// the transaction scope over every repository and the lookup cache.
package shared

import (
	"context"

	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/review"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/domain/task"
)

// EventWriter writes domain events to the outbox of the current transaction
type EventWriter interface {
	Save(ctx context.Context, events ...shared.DomainEvent) error
}

// TxRepositories provides access to all repositories within a transaction
type TxRepositories interface {
	Users() identity.UserRepository
	Groups() course.GroupRepository
	Members() course.MemberRepository
	Assignments() course.AssignmentRepository
	Meetings() meeting.MeetingRepository
	Attendances() meeting.AttendanceRepository
	Tasks() task.TaskRepository
	Assignees() task.AssigneeRepository
	Reviews() review.ReviewRepository
	Analyses() review.AnalysisRepository
	Channels() channel.ChannelRepository
	ChannelMembers() channel.MemberRepository
	Messages() channel.MessageRepository
	Events() EventWriter
}

// TransactionScope runs fn atomically. Returning an error rolls back every
// write made through the repositories handed to fn, outbox events included.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}
