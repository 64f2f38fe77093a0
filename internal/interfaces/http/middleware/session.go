package middleware

import (
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// Session context keys. ZidKey is read by the request logger.
const (
	SessionKey = "session"
	ZidKey     = "zid"
)

// SetSession stores the authenticated session on the request
func SetSession(c *gin.Context, session identity.Session) {
	c.Set(SessionKey, session)
	c.Set(ZidKey, session.Zid)
}

// GetSession returns the authenticated session, if any
func GetSession(c *gin.Context) (identity.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return identity.Session{}, false
	}
	session, ok := value.(identity.Session)
	return session, ok
}
