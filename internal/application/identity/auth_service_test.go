package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/auth"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByZid(ctx context.Context, zid string) (*identity.User, error) {
	args := m.Called(ctx, zid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, roleID int64) ([]*identity.User, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByZids(ctx context.Context, zids []string) ([]*identity.User, error) {
	args := m.Called(ctx, zids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

// MockMemberRepository is a mock implementation of course.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Add(ctx context.Context, member *course.GroupMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) FindByGroup(ctx context.Context, groupID int64) ([]course.GroupMember, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]course.GroupMember), args.Error(1)
}

func (m *MockMemberRepository) Find(ctx context.Context, groupID int64, zid string) (*course.GroupMember, error) {
	args := m.Called(ctx, groupID, zid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.GroupMember), args.Error(1)
}

func (m *MockMemberRepository) UpdateEvaluation(ctx context.Context, member *course.GroupMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) FirstGroupID(ctx context.Context, zid string) (*int64, error) {
	args := m.Called(ctx, zid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockMemberRepository) IsMember(ctx context.Context, groupID int64, zid string) (bool, error) {
	args := m.Called(ctx, groupID, zid)
	return args.Bool(0), args.Error(1)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindAll(ctx context.Context) ([]identity.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "teamhub-test",
		MaxRefreshCount:        2,
	})
}

func newTestUser(t *testing.T, zid, password string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(zid, "Ada Lovelace", password, identity.RoleStudent)
	require.NoError(t, err)
	return u
}

type authFixture struct {
	service     *AuthService
	users       *MockUserRepository
	members     *MockMemberRepository
	tokens      *auth.TokenService
	revocations *auth.MemoryRevocationList
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:       new(MockUserRepository),
		members:     new(MockMemberRepository),
		tokens:      newTestTokens(),
		revocations: auth.NewMemoryRevocationList(),
	}
	f.service = NewAuthService(f.users, f.members, f.tokens, f.revocations, zap.NewNop())
	return f
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns session and tokens", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "z5000001", "secret")
		groupID := int64(7)
		f.users.On("FindByZid", ctx, "z5000001").Return(user, nil)
		f.members.On("FirstGroupID", ctx, "z5000001").Return(&groupID, nil)

		result, err := f.service.Login(ctx, LoginInput{Username: "z5000001", Password: "secret"})
		require.NoError(t, err)

		assert.Equal(t, "z5000001", result.User.ID)
		assert.Equal(t, identity.RoleStudent, result.User.RoleID)
		require.NotNil(t, result.User.GroupID)
		assert.Equal(t, int64(7), *result.User.GroupID)
		assert.Equal(t, "Bearer", result.Token.TokenType)

		claims, err := f.tokens.ParseAccess(result.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "z5000001", claims.Zid)
		assert.Equal(t, int64(7), *claims.GroupID)
	})

	t.Run("user without group has null groupid", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByZid", ctx, "z1").Return(newTestUser(t, "z1", "secret"), nil)
		f.members.On("FirstGroupID", ctx, "z1").Return(nil, nil)

		result, err := f.service.Login(ctx, LoginInput{Username: "z1", Password: "secret"})
		require.NoError(t, err)
		assert.Nil(t, result.User.GroupID)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByZid", ctx, "nobody").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginInput{Username: "nobody", Password: "x"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
		assert.Equal(t, MsgUserNotFound, err.Error())
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByZid", ctx, "z1").Return(newTestUser(t, "z1", "secret"), nil)

		_, err := f.service.Login(ctx, LoginInput{Username: "z1", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
		assert.Equal(t, MsgIncorrectPassword, err.Error())
		f.members.AssertNotCalled(t, "FirstGroupID", mock.Anything, mock.Anything)
	})

	t.Run("store failure is hidden", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByZid", ctx, "z1").Return(nil, errors.New("pq: connection refused"))

		_, err := f.service.Login(ctx, LoginInput{Username: "z1", Password: "secret"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrUnknown))
		assert.NotContains(t, err.Error(), "pq:")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, "z1", "secret")
	f.users.On("FindByZid", ctx, "z1").Return(user, nil)
	f.members.On("FirstGroupID", ctx, "z1").Return(nil, nil)

	pair, err := f.tokens.Issue(identity.Session{Zid: "z1", RoleID: identity.RoleStudent})
	require.NoError(t, err)

	refreshed, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, pair.AccessToken)
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	})

	t.Run("refresh chain is bounded", func(t *testing.T) {
		second, err := f.service.Refresh(ctx, refreshed.RefreshToken)
		require.NoError(t, err)
		_, err = f.service.Refresh(ctx, second.RefreshToken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Maximum token refresh count")
	})
}

func TestAuthService_MeAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	groupID := int64(3)
	f.users.On("FindByZid", ctx, "z1").Return(newTestUser(t, "z1", "secret"), nil)
	f.members.On("FirstGroupID", ctx, "z1").Return(&groupID, nil)

	me, err := f.service.Me(ctx, identity.Session{Zid: "z1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.Name)
	assert.Equal(t, int64(3), *me.GroupID)

	require.NoError(t, f.service.Logout(ctx, LogoutInput{TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Minute)}))
	revoked, err := f.revocations.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	err = f.service.Logout(ctx, LogoutInput{})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestRoleService_Roles(t *testing.T) {
	ctx := context.Background()

	t.Run("maps rows", func(t *testing.T) {
		repo := new(MockRoleRepository)
		repo.On("FindAll", ctx).Return([]identity.Role{{ID: 1, Name: "student"}, {ID: 3, Name: "tutor"}}, nil).Once()
		service := NewRoleService(repo, nil, zap.NewNop())

		roles, err := service.Roles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []RoleInfo{{ID: 1, Name: "student"}, {ID: 3, Name: "tutor"}}, roles)
	})

	t.Run("empty table is an empty array", func(t *testing.T) {
		repo := new(MockRoleRepository)
		repo.On("FindAll", ctx).Return([]identity.Role{}, nil)
		service := NewRoleService(repo, nil, zap.NewNop())

		roles, err := service.Roles(ctx)
		require.NoError(t, err)
		assert.NotNil(t, roles)
		assert.Empty(t, roles)
	})
}
