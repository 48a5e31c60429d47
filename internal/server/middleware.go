package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
)

const contextUserIDKey = "auth.user_id"

// AuthRequired resolves the session cookie into a user ID. Requests
// without a live session never reach the handler.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID)
		c.Next()
	}
}

func (s *Server) userIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

// currentProfile loads the signed-in user's profile, creating it on
// first sight.
func (s *Server) currentProfile(c *gin.Context) (*profiledomain.Profile, error) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s.profilesvc.Resolve(c.Request.Context(), userID)
}
