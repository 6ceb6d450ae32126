package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizx/internal/dto"
	"github.com/lshigami/quizx/internal/service"
	"github.com/rs/zerolog/log"
)

// SessionIDKey is the gin context key holding the client namespace.
const SessionIDKey = "sessionID"

// SessionToken requires a valid "Authorization: Bearer <token>" header.
func SessionToken(tokens service.SessionTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing session token"})
			return
		}
		clientID, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			log.Debug().Err(err).Str("client_ip", c.ClientIP()).Msg("Rejected session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid session token"})
			return
		}
		c.Set(SessionIDKey, clientID)
		c.Next()
	}
}

// SessionID returns the client namespace set by SessionToken.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
