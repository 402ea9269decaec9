package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/rencard-user/internal/domain/auth"
)

const (
	callerIDKey  = "caller_id"
	sessionIDKey = "session_id"
)

// setCaller records the authenticated principal on both the gin context and
// the request context consumed by the domain services.
func setCaller(c *gin.Context, principalID, sessionID string) {
	c.Set(callerIDKey, principalID)
	ctx := auth.WithCallerID(c.Request.Context(), principalID)
	if sessionID != "" {
		c.Set(sessionIDKey, sessionID)
		ctx = auth.WithSessionID(ctx, sessionID)
	}
	c.Request = c.Request.WithContext(ctx)
}

func getCallerID(c *gin.Context) (string, bool) {
	id := c.GetString(callerIDKey)
	return id, id != ""
}
