package identity

import (
	"context"
	"errors"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles registration and the user lookups
type UserService struct {
	txScope appshared.TransactionScope
	users   identity.UserRepository
	courses course.CourseRepository
	logger  *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	txScope appshared.TransactionScope,
	users identity.UserRepository,
	courses course.CourseRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		txScope: txScope,
		users:   users,
		courses: courses,
		logger:  logger,
	}
}

// Register creates the user, creates or joins the group and writes the
// UserRegistered event in one transaction. Any failure rolls back every step.
// Only students register themselves; staff accounts are provisioned.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if input.RoleID != identity.RoleStudent {
		s.logger.Warn("Rejected self-registration with a staff role",
			zap.String("zid", input.Zid),
			zap.Int64("role_id", input.RoleID))
		return nil, shared.ErrForbidden.WithMessage("Only students can register")
	}
	if input.IsNewGroup && course.NormalizeGroupName(input.GroupName) == "" {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: group_name")
	}
	if !input.IsNewGroup && input.GroupID == nil {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: group_id")
	}

	if input.IsNewGroup {
		exists, err := s.courses.Exists(ctx, input.CourseCode)
		if err != nil {
			return nil, appshared.Internal(s.logger, "Failed to check course", err)
		}
		if !exists {
			return nil, shared.ErrInvalidInput.WithMessage("Unknown course_code " + input.CourseCode)
		}
	}

	user, err := identity.NewUser(input.Zid, input.Name, input.Password, input.RoleID)
	if err != nil {
		return nil, err
	}

	var result *RegisterResult
	err = s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		group, err := s.resolveGroup(ctx, repos, input)
		if err != nil {
			return err
		}

		if err := repos.Users().Create(ctx, user); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.ErrAlreadyExists.WithMessage("User already exists")
			}
			return err
		}

		member := &course.GroupMember{GroupID: group.ID, MemberZid: user.Zid, IsLeader: input.IsLeader}
		if err := repos.Members().Add(ctx, member); err != nil {
			s.logger.Error("Failed to add group membership",
				zap.String("zid", user.Zid),
				zap.Int64("group_id", group.ID),
				zap.Error(err))
			return shared.ErrGroupJoinFail
		}

		user.AddDomainEvent(identity.NewUserRegisteredEvent(user, group.ID, group.CourseCode, input.IsNewGroup, input.IsLeader))
		if err := repos.Events().Save(ctx, user.PullDomainEvents()...); err != nil {
			return err
		}

		result = &RegisterResult{
			User:     UserInfo{Zid: user.Zid, Name: user.Name, RoleID: user.RoleID},
			Group:    GroupInfo{ID: group.ID, Name: group.Name, CourseCode: group.CourseCode},
			NewGroup: input.IsNewGroup,
		}
		return nil
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Registration failed", err, zap.String("zid", input.Zid))
	}

	s.logger.Info("User registered",
		zap.String("zid", result.User.Zid),
		zap.Int64("group_id", result.Group.ID),
		zap.Bool("new_group", result.NewGroup))
	return result, nil
}

func (s *UserService) resolveGroup(ctx context.Context, repos appshared.TxRepositories, input RegisterInput) (*course.Group, error) {
	if input.IsNewGroup {
		group, err := course.NewGroup(input.CourseCode, input.GroupName)
		if err != nil {
			return nil, err
		}
		if err := repos.Groups().Create(ctx, group); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return nil, shared.ErrAlreadyExists.WithMessage("Group name already exists in this course")
			}
			return nil, err
		}
		return group, nil
	}

	group, err := repos.Groups().FindByID(ctx, *input.GroupID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrGroupMismatch.WithMessage("Group does not exist in this course")
		}
		return nil, err
	}
	if !group.BelongsTo(input.CourseCode) {
		return nil, shared.ErrGroupMismatch
	}
	return group, nil
}

// Username returns the display name of zid
func (s *UserService) Username(ctx context.Context, zid string) (string, error) {
	user, err := s.users.FindByZid(ctx, zid)
	if err != nil {
		return "", appshared.NotFound(s.logger, err, "User not found")
	}
	return user.Name, nil
}

// UserRole returns the role rows of zid; an unknown zid has none
func (s *UserService) UserRole(ctx context.Context, zid string) ([]RoleRef, error) {
	user, err := s.users.FindByZid(ctx, zid)
	if errors.Is(err, shared.ErrNotFound) {
		return []RoleRef{}, nil
	}
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load user role", err)
	}
	return []RoleRef{{RoleID: user.RoleID}}, nil
}

// Tutors lists the users with the tutor role
func (s *UserService) Tutors(ctx context.Context) ([]TutorInfo, error) {
	users, err := s.users.FindByRole(ctx, identity.RoleTutor)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list tutors", err)
	}
	out := make([]TutorInfo, 0, len(users))
	for _, u := range users {
		out = append(out, TutorInfo{Zid: u.Zid, Name: u.Name})
	}
	return out, nil
}
