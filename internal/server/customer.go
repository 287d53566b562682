package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
)

type customerRequest struct {
	Name      *string              `json:"name"`
	Address   *string              `json:"address"`
	Email     *string              `json:"email"`
	Cellphone *string              `json:"cellphone"`
	Type      *customerdomain.Type `json:"type"`
}

func (r customerRequest) missingField() string {
	switch {
	case r.Name == nil:
		return "name"
	case r.Address == nil:
		return "address"
	case r.Email == nil:
		return "email"
	case r.Cellphone == nil:
		return "cellphone"
	case r.Type == nil:
		return "type"
	default:
		return ""
	}
}

// ListCustomers handles GET /api/customer.
func (s *Server) ListCustomers(c *gin.Context) {
	resp, err := s.customerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateCustomer handles POST /api/customer.
func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:      *req.Name,
		Address:   *req.Address,
		Email:     *req.Email,
		Cellphone: *req.Cellphone,
		Type:      *req.Type,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetCustomer handles GET /api/customer/:id.
func (s *Server) GetCustomer(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReplaceCustomer handles PUT /api/customer/:id; every field is required.
func (s *Server) ReplaceCustomer(c *gin.Context) {
	s.updateCustomer(c, true)
}

// UpdateCustomer handles PATCH /api/customer/:id.
func (s *Server) UpdateCustomer(c *gin.Context) {
	s.updateCustomer(c, false)
}

func (s *Server) updateCustomer(c *gin.Context, full bool) {
	var req customerRequest
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

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:        c.Param("id"),
		Name:      req.Name,
		Address:   req.Address,
		Email:     req.Email,
		Cellphone: req.Cellphone,
		Type:      req.Type,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteCustomer handles DELETE /api/customer/:id. The customer's orders,
// payments and quotas go with it.
func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.customerSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK})
}
