package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocerfront/internal/domain"
)

// Session resolution is a header lookup, not an authentication protocol:
// the identity provider is an external collaborator. The anonymous ID is
// issued here and echoed back by the client on every request; the bearer
// token plus X-User-Id mark the session authenticated.
const (
	headerAnonymousID = "X-Anonymous-Id"
	headerUserID      = "X-User-Id"

	sessionKey = "session"
)

func anonymousSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"anonymousId": uuid.NewString()})
}

func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		anonymousID := strings.TrimSpace(c.GetHeader(headerAnonymousID))
		if anonymousID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + headerAnonymousID + " header"})
			return
		}

		session := domain.Session{AnonymousID: anonymousID}
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			if userID := strings.TrimSpace(c.GetHeader(headerUserID)); userID != "" {
				session.Authenticated = true
				session.UserID = userID
				session.Token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}
