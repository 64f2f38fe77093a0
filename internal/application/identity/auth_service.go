package identity

import (
	"context"
	"errors"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Login failure messages shown to clients
const (
	MsgUserNotFound      = "User not found"
	MsgIncorrectPassword = "Incorrect password"
)

// AuthService handles authentication operations
type AuthService struct {
	users       identity.UserRepository
	members     course.MemberRepository
	tokens      *auth.TokenService
	revocations auth.RevocationList
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	members course.MemberRepository,
	tokens *auth.TokenService,
	revocations auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		members:     members,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
}

// Login checks the password and issues a token pair for the user's session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByZid(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("zid", input.Username))
			return nil, shared.ErrInvalidCredentials.WithMessage(MsgUserNotFound)
		}
		return nil, appshared.Internal(s.logger, "Failed to load user for login", err)
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("zid", input.Username))
		return nil, shared.ErrInvalidCredentials.WithMessage(MsgIncorrectPassword)
	}

	session, err := s.sessionFor(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(session)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to generate token pair", err)
	}

	s.logger.Info("User logged in", zap.String("zid", user.Zid))
	return &LoginResult{
		User: LoginUser{
			ID:      user.Zid,
			Name:    user.Name,
			RoleID:  user.RoleID,
			GroupID: session.GroupID,
		},
		Token: toTokenResult(pair),
	}, nil
}

// Refresh issues a new pair from a refresh token. The session is rebuilt
// from the store so role and group changes take effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.ErrUnauthorized.WithMessage("Refresh token has expired")
		}
		return nil, shared.ErrUnauthorized.WithMessage("Invalid refresh token")
	}

	user, err := s.users.FindByZid(ctx, claims.Zid)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized.WithMessage(MsgUserNotFound)
		}
		return nil, appshared.Internal(s.logger, "Failed to load user for refresh", err)
	}

	session, err := s.sessionFor(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Rotate(claims, session)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshLimit) {
			return nil, shared.ErrUnauthorized.WithMessage("Maximum token refresh count exceeded. Please log in again")
		}
		return nil, shared.ErrUnauthorized.WithMessage("Invalid refresh token")
	}

	result := toTokenResult(pair)
	return &result, nil
}

// Me returns the current session, reloaded from the store
func (s *AuthService) Me(ctx context.Context, session identity.Session) (*identity.Session, error) {
	user, err := s.users.FindByZid(ctx, session.Zid)
	if err != nil {
		return nil, appshared.NotFound(s.logger, err, MsgUserNotFound)
	}
	current, err := s.sessionFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &current, nil
}

// Logout revokes the access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenID == "" {
		return shared.ErrInvalidInput.WithMessage("Token has no id")
	}
	if err := s.revocations.Revoke(ctx, input.TokenID, input.ExpiresAt); err != nil {
		return appshared.Internal(s.logger, "Failed to revoke token", err)
	}
	return nil
}

func (s *AuthService) sessionFor(ctx context.Context, user *identity.User) (identity.Session, error) {
	groupID, err := s.members.FirstGroupID(ctx, user.Zid)
	if err != nil {
		return identity.Session{}, appshared.Internal(s.logger, "Failed to load group membership", err)
	}
	return identity.Session{
		Zid:     user.Zid,
		Name:    user.Name,
		RoleID:  user.RoleID,
		GroupID: groupID,
	}, nil
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessTokenExpiresAt,
		TokenType:    pair.TokenType,
	}
}
