package course

import (
	"context"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// EvaluationService releases member evaluations and keeps the derived group flag in step
type EvaluationService struct {
	txScope appshared.TransactionScope
	logger  *zap.Logger
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(txScope appshared.TransactionScope, logger *zap.Logger) *EvaluationService {
	return &EvaluationService{txScope: txScope, logger: logger}
}

// ReleaseMemberEvaluation updates one member and recomputes the group flag while
// the group row is locked, so concurrent releases in the same group serialise.
func (s *EvaluationService) ReleaseMemberEvaluation(ctx context.Context, input ReleaseEvaluationInput) (*ReleaseEvaluationResult, error) {
	var done bool
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		group, err := repos.Groups().FindByIDForUpdate(ctx, input.GroupID)
		if err != nil {
			return appshared.NotFound(s.logger, err, "Group not found")
		}

		member, err := repos.Members().Find(ctx, input.GroupID, input.MemberZid)
		if err != nil {
			return appshared.NotFound(s.logger, err, "Member not found in group")
		}
		if err := member.ApplyEvaluation(input.FinalScore, input.IsEvaluated); err != nil {
			return err
		}
		if err := repos.Members().UpdateEvaluation(ctx, member); err != nil {
			return err
		}

		events := []shared.DomainEvent{}
		done, err = s.syncGroupFlag(ctx, repos, group, &events)
		if err != nil {
			return err
		}
		events = append([]shared.DomainEvent{course.NewMemberEvaluationReleasedEvent(member, done)}, events...)
		return repos.Events().Save(ctx, events...)
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to release evaluation", err,
			zap.Int64("group_id", input.GroupID),
			zap.String("member_zid", input.MemberZid))
	}

	s.logger.Info("Member evaluation updated",
		zap.Int64("group_id", input.GroupID),
		zap.String("member_zid", input.MemberZid),
		zap.Bool("is_evaluated", input.IsEvaluated),
		zap.Bool("group_done", done))
	return &ReleaseEvaluationResult{GroupDone: done}, nil
}

// RecomputeGroupEvaluation derives the group flag from its members and persists it.
// A client value that disagrees is logged and ignored.
func (s *EvaluationService) RecomputeGroupEvaluation(ctx context.Context, input RecomputeInput) (bool, error) {
	var done bool
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		group, err := repos.Groups().FindByIDForUpdate(ctx, input.GroupID)
		if err != nil {
			return appshared.NotFound(s.logger, err, "Group not found")
		}

		var events []shared.DomainEvent
		done, err = s.syncGroupFlag(ctx, repos, group, &events)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		return repos.Events().Save(ctx, events...)
	})
	if err != nil {
		return false, appshared.Internal(s.logger, "Failed to recompute group evaluation", err, zap.Int64("group_id", input.GroupID))
	}

	if input.ClientValue != nil && *input.ClientValue != done {
		s.logger.Warn("Ignoring client group evaluation flag",
			zap.Int64("group_id", input.GroupID),
			zap.Bool("client_value", *input.ClientValue),
			zap.Bool("derived_value", done))
	}
	return done, nil
}

func (s *EvaluationService) syncGroupFlag(ctx context.Context, repos appshared.TxRepositories, group *course.Group, events *[]shared.DomainEvent) (bool, error) {
	members, err := repos.Members().FindByGroup(ctx, group.ID)
	if err != nil {
		return false, err
	}
	done := course.AllEvaluated(members)
	if done == group.IsEvaluated {
		return done, nil
	}
	if err := repos.Groups().SetEvaluated(ctx, group.ID, done); err != nil {
		return false, err
	}
	*events = append(*events, course.NewGroupEvaluationChangedEvent(group.ID, done))
	return done, nil
}
