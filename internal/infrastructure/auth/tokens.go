// Package auth issues and checks the bearer tokens that carry a TeamHub
// session, and keeps the list of tokens revoked by logout.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType separates the two halves of a pair
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrWrongTokenType  = errors.New("wrong token type")
	ErrNoSubject       = errors.New("token has no zid")
	ErrSessionMismatch = errors.New("refresh token belongs to another user")
	ErrRefreshLimit    = errors.New("maximum refresh count exceeded")
	ErrTokenRevoked    = errors.New("token has been revoked")
)

// Claims is the token body. Access tokens carry the whole session; refresh
// tokens carry only the zid and how many times the chain has been renewed.
type Claims struct {
	jwt.RegisteredClaims
	Zid          string    `json:"zid"`
	Name         string    `json:"name,omitempty"`
	RoleID       int64     `json:"role_id,omitempty"`
	GroupID      *int64    `json:"group_id,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// Session rebuilds the caller's session from access claims
func (c *Claims) Session() identity.Session {
	return identity.Session{
		Zid:     c.Zid,
		Name:    c.Name,
		RoleID:  c.RoleID,
		GroupID: c.GroupID,
	}
}

// Expiry is when the token stops validating, zero if it never does
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenPair is what login and refresh hand back to the client
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_expires_at"`
	TokenType             string    `json:"token_type"`
}

type tokenKind struct {
	typ    TokenType
	secret []byte
	ttl    time.Duration
}

// TokenService signs and parses HS256 session tokens
type TokenService struct {
	access     tokenKind
	refresh    tokenKind
	issuer     string
	maxRefresh int
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenService builds the service from cfg. Refresh tokens are signed
// with the access secret when no refresh secret is configured.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	s := &TokenService{
		access:     tokenKind{typ: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:    tokenKind{typ: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
		now:        time.Now,
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer), jwt.WithAudience(cfg.Issuer))
	}
	s.parser = jwt.NewParser(opts...)
	return s
}

// Issue starts a new refresh chain for session
func (s *TokenService) Issue(session identity.Session) (*TokenPair, error) {
	return s.pair(session, 0)
}

// Rotate answers a validated refresh token with a new pair for session,
// which the caller reloads from the store so role and group changes apply.
func (s *TokenService) Rotate(refresh *Claims, session identity.Session) (*TokenPair, error) {
	switch {
	case refresh == nil || refresh.TokenType != TokenTypeRefresh:
		return nil, ErrWrongTokenType
	case refresh.Zid != session.Zid:
		return nil, ErrSessionMismatch
	case refresh.RefreshCount >= s.maxRefresh:
		return nil, ErrRefreshLimit
	}
	return s.pair(session, refresh.RefreshCount+1)
}

func (s *TokenService) pair(session identity.Session, refreshCount int) (*TokenPair, error) {
	if session.Zid == "" {
		return nil, ErrNoSubject
	}
	now := s.now()

	access, accessExp, err := s.sign(s.access, now, Claims{
		Zid:     session.Zid,
		Name:    session.Name,
		RoleID:  session.RoleID,
		GroupID: session.GroupID,
	})
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(s.refresh, now, Claims{
		Zid:          session.Zid,
		RefreshCount: refreshCount,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

func (s *TokenService) sign(kind tokenKind, now time.Time, claims Claims) (string, time.Time, error) {
	expires := now.Add(kind.ttl)
	claims.TokenType = kind.typ
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   claims.Zid,
		ExpiresAt: jwt.NewNumericDate(expires),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	if s.issuer != "" {
		claims.Audience = jwt.ClaimStrings{s.issuer}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(kind.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind.typ, err)
	}
	return signed, expires, nil
}

// ParseAccess validates an access token
func (s *TokenService) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, s.access)
}

// ParseRefresh validates a refresh token
func (s *TokenService) ParseRefresh(token string) (*Claims, error) {
	return s.parse(token, s.refresh)
}

func (s *TokenService) parse(token string, kind tokenKind) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return kind.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.TokenType != kind.typ:
		return nil, ErrWrongTokenType
	case claims.Zid == "":
		return nil, ErrNoSubject
	}
	return claims, nil
}
