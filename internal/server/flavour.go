package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	flavourdomain "github.com/smallbiznis/birracraft/internal/flavour/domain"
)

type flavourRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	PricePerLt  *decimal.Decimal `json:"price_per_lt"`
}

func (r flavourRequest) missingField() string {
	switch {
	case r.Name == nil:
		return "name"
	case r.PricePerLt == nil:
		return "price_per_lt"
	default:
		return ""
	}
}

func (s *Server) ListFlavours(c *gin.Context) {
	resp, err := s.flavourSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateFlavour(c *gin.Context) {
	var req flavourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	resp, err := s.flavourSvc.Create(c.Request.Context(), flavourdomain.CreateRequest{
		Name:        *req.Name,
		Description: description,
		PricePerLt:  *req.PricePerLt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetFlavour(c *gin.Context) {
	resp, err := s.flavourSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceFlavour(c *gin.Context) {
	s.updateFlavour(c, true)
}

func (s *Server) UpdateFlavour(c *gin.Context) {
	s.updateFlavour(c, false)
}

func (s *Server) updateFlavour(c *gin.Context, full bool) {
	var req flavourRequest
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

	resp, err := s.flavourSvc.Update(c.Request.Context(), flavourdomain.UpdateRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		PricePerLt:  req.PricePerLt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteFlavour(c *gin.Context) {
	if err := s.flavourSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK})
}
