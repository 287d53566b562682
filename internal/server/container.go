package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
)

type containerRequest struct {
	Type   *containerdomain.Type `json:"type"`
	Liters *decimal.Decimal      `json:"liters"`
}

func (r containerRequest) missingField() string {
	switch {
	case r.Type == nil:
		return "type"
	case r.Liters == nil:
		return "liters"
	default:
		return ""
	}
}

type litersResponse struct {
	Type   containerdomain.Type `json:"type"`
	Liters []json.Number        `json:"liters"`
}

func (s *Server) ListContainers(c *gin.Context) {
	resp, err := s.containerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateContainer(c *gin.Context) {
	var req containerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	resp, err := s.containerSvc.Create(c.Request.Context(), containerdomain.CreateRequest{
		Type:   *req.Type,
		Liters: *req.Liters,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetContainer(c *gin.Context) {
	resp, err := s.containerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceContainer(c *gin.Context) {
	s.updateContainer(c, true)
}

func (s *Server) UpdateContainer(c *gin.Context) {
	s.updateContainer(c, false)
}

func (s *Server) updateContainer(c *gin.Context, full bool) {
	var req containerRequest
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

	resp, err := s.containerSvc.Update(c.Request.Context(), containerdomain.UpdateRequest{
		ID:     c.Param("id"),
		Type:   req.Type,
		Liters: req.Liters,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteContainer(c *gin.Context) {
	if err := s.containerSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK})
}

// SelectLiters handles GET /api/container/:id/select_lts and lists the
// volumes permitted for the container's type.
func (s *Server) SelectLiters(c *gin.Context) {
	resp, err := s.containerSvc.SelectLiters(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	liters := make([]json.Number, 0, len(resp.Liters))
	for _, l := range resp.Liters {
		liters = append(liters, json.Number(l.String()))
	}

	c.JSON(http.StatusOK, litersResponse{Type: resp.Type, Liters: liters})
}
