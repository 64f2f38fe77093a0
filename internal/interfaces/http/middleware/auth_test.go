package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/infrastructure/auth"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestTokens(accessTTL time.Duration) *auth.TokenService {
	return auth.NewTokenService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func testSession() identity.Session {
	groupID := int64(3)
	return identity.Session{Zid: "z5000001", Name: "Ada", RoleID: identity.RoleStudent, GroupID: &groupID}
}

func newAuthRouter(cfg AuthConfig) *gin.Engine {
	router := gin.New()
	router.Use(Authenticate(cfg))
	handler := func(c *gin.Context) {
		session, _ := GetSession(c)
		c.JSON(http.StatusOK, gin.H{
			"zid":      session.Zid,
			"group_id": session.GroupID,
			"jti":      TokenClaims(c).ID,
		})
	}
	router.GET("/me", handler)
	router.GET("/ws", handler)
	return router
}

func get(router http.Handler, target, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := newTestTokens(15 * time.Minute)
	pair, err := tokens.Issue(testSession())
	require.NoError(t, err)
	claims, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)

	rec := get(newAuthRouter(AuthConfig{Tokens: tokens}), "/me", BearerPrefix+pair.AccessToken)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "z5000001", body["zid"])
	assert.Equal(t, float64(3), body["group_id"])
	assert.Equal(t, claims.ID, body["jti"])
}

func TestAuthenticate_Rejections(t *testing.T) {
	tokens := newTestTokens(15 * time.Minute)
	pair, err := tokens.Issue(testSession())
	require.NoError(t, err)
	expiredPair, err := newTestTokens(-time.Minute).Issue(testSession())
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		code    string
		message string
	}{
		{"missing header", "", "UNAUTHORIZED", "Authentication required"},
		{"empty bearer", BearerPrefix, "UNAUTHORIZED", "Authentication required"},
		{"wrong scheme", "Basic abc", "UNAUTHORIZED", "Invalid token"},
		{"garbage token", BearerPrefix + "not-a-jwt", "UNAUTHORIZED", "Invalid token"},
		{"refresh token as access", BearerPrefix + pair.RefreshToken, "UNAUTHORIZED", "Invalid token"},
		{"expired token", BearerPrefix + expiredPair.AccessToken, "TOKEN_EXPIRED", "Token has expired"},
	}

	router := newAuthRouter(AuthConfig{Tokens: tokens})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, "/me", tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "fail", body["status"])
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestAuthenticate_QueryToken(t *testing.T) {
	tokens := newTestTokens(15 * time.Minute)
	pair, err := tokens.Issue(testSession())
	require.NoError(t, err)
	router := newAuthRouter(AuthConfig{Tokens: tokens, QueryTokenPaths: []string{"/ws"}})

	rec := get(router, "/ws?token="+pair.AccessToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "z5000001", decode(t, rec)["zid"])

	rec = get(router, "/me?token="+pair.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "only listed paths read the query")
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Time) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestAuthenticate_Revocation(t *testing.T) {
	tokens := newTestTokens(15 * time.Minute)
	pair, err := tokens.Issue(testSession())
	require.NoError(t, err)
	claims, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)

	revocations := auth.NewMemoryRevocationList()
	router := newAuthRouter(AuthConfig{Tokens: tokens, Revocations: revocations})
	header := BearerPrefix + pair.AccessToken

	assert.Equal(t, http.StatusOK, get(router, "/me", header).Code)

	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.Expiry()))
	rec := get(router, "/me", header)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", decode(t, rec)["code"])

	t.Run("store outage fails open", func(t *testing.T) {
		router := newAuthRouter(AuthConfig{Tokens: tokens, Revocations: failingRevocations{}})
		assert.Equal(t, http.StatusOK, get(router, "/me", header).Code)
	})
}

func TestTokenClaimsAndSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, TokenClaims(c))

	claims := &auth.Claims{Zid: "z1"}
	c.Set(ClaimsKey, claims)
	assert.Same(t, claims, TokenClaims(c))

	_, ok := GetSession(c)
	assert.False(t, ok)
	SetSession(c, identity.Session{Zid: "z1"})
	session, ok := GetSession(c)
	assert.True(t, ok)
	assert.Equal(t, "z1", session.Zid)
	assert.Equal(t, "z1", c.GetString(ZidKey))
}
