package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	obscontext "github.com/smallbiznis/birracraft/internal/observability/context"
	"github.com/smallbiznis/birracraft/internal/ratelimit"
)

const (
	contextUserKey   = "user"
	contextUserIDKey = "user_id"
	bearerPrefix     = "Bearer "
)

// AuthRequired resolves the bearer access token into the calling user.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, bearerPrefix) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Set(contextUserIDKey, user.ID.String())
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), "user", user.ID.String()))
		c.Next()
	}
}

// RequirePermission checks the casbin policy for the authenticated user.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(contextUserIDKey)
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), userID, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RateLimit throttles an open endpoint per client IP. It is a no-op when
// redis is not configured.
func (s *Server) RateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.authLimiter.Enabled() {
			c.Next()
			return
		}

		retryAfter, err := s.authLimiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), scope)
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			}
			AbortWithError(c, ratelimit.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*authdomain.User)
	return user, ok && user != nil
}
