package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
)

const sessionKey = "dashboard_session"

// sessionAuthMiddleware resolves :id to a live session the bearer token was issued for.
// EventSource clients cannot set headers, so the token may also arrive as ?token=.
func sessionAuthMiddleware(tokens *TokenIssuer, registry *dashboard.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing session token", nil))
			return
		}
		sessionID, err := tokens.SessionID(token)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, codeInvalidToken, errMessage(err), err))
			return
		}
		if sessionID != c.Param("id") {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "forbidden", "token does not match session", nil))
			return
		}
		session, ok := registry.Get(sessionID)
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusNotFound, "session_not_found", "session not found or expired", nil))
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		token := strings.TrimSpace(c.Query("token"))
		return token, token != ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func sessionFrom(c *gin.Context) *dashboard.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*dashboard.Session)
	return session
}
