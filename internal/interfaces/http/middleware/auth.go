package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/auth"
	"github.com/avocado/teamhub/internal/infrastructure/logger"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ClaimsKey     = "token_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// TokenQueryParam carries the access token on websocket upgrades,
	// where browsers cannot set an Authorization header.
	TokenQueryParam = "token"
)

var errMissingToken = errors.New("missing token")

// AuthConfig configures Authenticate
type AuthConfig struct {
	Tokens *auth.TokenService
	// Revocations is consulted after the signature check when set
	Revocations auth.RevocationList
	// QueryTokenPaths also accept ?token= on these exact paths
	QueryTokenPaths []string
	Logger          *zap.Logger
}

// Authenticate rejects requests without a valid access token and puts the
// caller's session on the context. It goes on protected route groups only.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, err := bearerToken(c, slices.Contains(cfg.QueryTokenPaths, c.Request.URL.Path))
		if err == nil {
			var claims *auth.Claims
			if claims, err = cfg.Tokens.ParseAccess(token); err == nil {
				err = checkRevoked(c, cfg.Revocations, claims, log)
			}
			if err == nil {
				authenticated(c, claims)
				c.Next()
				return
			}
		}

		log.Warn("Authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", getRequestIDFromContext(c)),
		)
		code, message := authFailure(err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewFailResponse(code, message))
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, error) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		token, ok := strings.CutPrefix(header, BearerPrefix)
		switch {
		case !ok:
			return "", auth.ErrInvalidToken
		case token == "":
			return "", errMissingToken
		}
		return token, nil
	}
	if token := c.Query(TokenQueryParam); allowQuery && token != "" {
		return token, nil
	}
	return "", errMissingToken
}

// checkRevoked fails open: a revocation store outage must not sign out
// every user, so lookup errors are only logged.
func checkRevoked(c *gin.Context, list auth.RevocationList, claims *auth.Claims, log *zap.Logger) error {
	if list == nil || claims.ID == "" {
		return nil
	}
	revoked, err := list.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		log.Error("Revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
		return nil
	}
	if revoked {
		return auth.ErrTokenRevoked
	}
	return nil
}

func authenticated(c *gin.Context, claims *auth.Claims) {
	session := claims.Session()
	c.Set(ClaimsKey, claims)
	SetSession(c, session)

	ctx := c.Request.Context()
	ctx, _ = logger.WithUserZID(ctx, logger.FromContext(ctx), session.Zid)
	c.Request = c.Request.WithContext(ctx)
}

func authFailure(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, errMissingToken):
		return shared.CodeUnauthorized, "Authentication required"
	default:
		return shared.CodeUnauthorized, "Invalid token"
	}
}

// TokenClaims returns the claims Authenticate verified, nil on public routes
func TokenClaims(c *gin.Context) *auth.Claims {
	value, _ := c.Get(ClaimsKey)
	claims, _ := value.(*auth.Claims)
	return claims
}
