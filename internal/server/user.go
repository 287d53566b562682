package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	pathActivationSuccess = "/ActivationSuccess"
	pathActivationFail    = "/ActivationFail"
	pathResetPassForm     = "/ResetPassForm"
	pathResetInvalidLink  = "/ResetPassInvalidLink"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type setNewPasswordRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UID      string `json:"uid"`
	Token    string `json:"token"`
}

type userRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

func (r userRequest) missingField() string {
	switch {
	case r.Username == nil:
		return "username"
	case r.Email == nil:
		return "email"
	default:
		return ""
	}
}

type accountResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterUser handles POST /api/user. The account stays inactive until the
// emailed activation link is followed.
func (s *Server) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.Register(c.Request.Context(), authdomain.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ActivateUser handles the emailed activation link and redirects to the
// frontend result page.
func (s *Server) ActivateUser(c *gin.Context) {
	err := s.authsvc.Activate(c.Request.Context(), c.Param("uid"), c.Param("token"))
	if err != nil {
		if !errors.Is(err, authdomain.ErrInvalidLink) {
			logger.FromContext(c.Request.Context()).Warn("activation failed", zap.Error(err))
		}
		c.Redirect(http.StatusFound, s.cfg.FrontendURL+pathActivationFail)
		return
	}

	c.Redirect(http.StatusFound, s.cfg.FrontendURL+pathActivationSuccess)
}

// RequestPasswordReset handles POST /api/user/reset_pass.
func (s *Server) RequestPasswordReset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Email == "" {
		AbortWithError(c, missingFieldError("email"))
		return
	}

	resp, err := s.authsvc.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountResponse{Username: resp.Username, Email: resp.Email})
}

// CheckResetLink handles the emailed reset link. A valid link leads to the
// frontend form carrying uid and token.
func (s *Server) CheckResetLink(c *gin.Context) {
	uid, token := c.Param("uid"), c.Param("token")
	if err := s.authsvc.CheckResetLink(c.Request.Context(), uid, token); err != nil {
		c.Redirect(http.StatusFound, s.cfg.FrontendURL+pathResetInvalidLink)
		return
	}

	q := url.Values{}
	q.Set("uid", uid)
	q.Set("token", token)
	c.Redirect(http.StatusFound, s.cfg.FrontendURL+pathResetPassForm+"?"+q.Encode())
}

// SetNewPassword handles POST /api/user/set_new_pass.
func (s *Server) SetNewPassword(c *gin.Context) {
	var req setNewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.SetNewPassword(c.Request.Context(), authdomain.SetPasswordRequest{
		Username: req.Username,
		Password: req.Password,
		UID:      req.UID,
		Token:    req.Token,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountResponse{Username: resp.Username, Email: resp.Email})
}

func (s *Server) ListUsers(c *gin.Context) {
	resp, err := s.authsvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUser serves both /api/user/:username and the legacy
// get_user_by_username route.
func (s *Server) GetUser(c *gin.Context) {
	resp, err := s.authsvc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceUser(c *gin.Context) {
	s.updateUser(c, true)
}

func (s *Server) UpdateUser(c *gin.Context) {
	s.updateUser(c, false)
}

func (s *Server) updateUser(c *gin.Context, full bool) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if full {
		if field := req.missingField(); field != "" {
			AbortWithError(c, missingFieldError(field))
			return
		}
	}

	resp, err := s.authsvc.Update(c.Request.Context(), c.Param("username"), authdomain.UpdateUserRequest{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.authsvc.Delete(c.Request.Context(), c.Param("username")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
