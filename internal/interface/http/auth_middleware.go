package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	apperrors "github.com/yanqian/rencard-user/pkg/errors"
)

// authMiddleware resolves the caller from a bearer token or the session
// cookie. A valid cookie session is slid forward and re-issued. When required
// is false, requests without valid credentials continue anonymously.
func authMiddleware(svc auth.Service, cookies CookieConfig, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				rejectOrContinue(c, required, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
				return
			}
			claims, err := svc.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if !apperrors.IsCode(err, "invalid_token") {
					abortWithError(c, failure("auth_failed", "authentication unavailable", err))
					return
				}
				rejectOrContinue(c, required, NewHTTPError(http.StatusUnauthorized, "invalid_token", errMessage(err), err))
				return
			}
			setCaller(c, claims.Subject, "")
			c.Next()
			return
		}

		if sessionID, err := c.Cookie(cookies.Name); err == nil && sessionID != "" {
			ticket, ok, err := svc.ResumeSession(c.Request.Context(), sessionID)
			if err != nil {
				abortWithError(c, failure("auth_failed", "authentication unavailable", err))
				return
			}
			if ok {
				setSessionCookie(c, cookies, ticket)
				setCaller(c, ticket.OwnerID, ticket.ID)
				c.Next()
				return
			}
			clearSessionCookie(c, cookies)
		}

		rejectOrContinue(c, required, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
	}
}

func rejectOrContinue(c *gin.Context, required bool, err *HTTPError) {
	if required {
		abortWithError(c, err)
		return
	}
	c.Next()
}
