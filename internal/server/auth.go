package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// ObtainToken handles POST /api/auth/token.
func (s *Server) ObtainToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Username == "" {
		AbortWithError(c, missingFieldError("username"))
		return
	}
	if req.Password == "" {
		AbortWithError(c, missingFieldError("password"))
		return
	}

	pair, err := s.authsvc.IssueTokens(c.Request.Context(), authdomain.TokenRequest{
		Username:  req.Username,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// RefreshToken handles POST /api/auth/token/refresh and returns a new
// access token only.
func (s *Server) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Refresh == "" {
		AbortWithError(c, missingFieldError("refresh"))
		return
	}

	pair, err := s.authsvc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": pair.Access})
}
