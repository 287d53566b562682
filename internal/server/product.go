package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type productRequest struct {
	Code        *string              `json:"code"`
	Container   *idValue             `json:"container"`
	Flavour     *idValue             `json:"flavour"`
	ArrivedDate *date.Date           `json:"arrived_date"`
	Price       *decimal.Decimal     `json:"price"`
	State       *productdomain.State `json:"state"`
}

func (r productRequest) missingField() string {
	switch {
	case r.Code == nil:
		return "code"
	case r.Container == nil:
		return "container"
	case r.Flavour == nil:
		return "flavour"
	case r.ArrivedDate == nil:
		return "arrived_date"
	case r.Price == nil:
		return "price"
	case r.State == nil:
		return "state"
	default:
		return ""
	}
}

// ListProducts handles GET /api/product with optional state, container
// and flavour filters.
func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		State:       productdomain.State(c.Query("state")),
		ContainerID: c.Query("container"),
		FlavourID:   c.Query("flavour"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		Code:        *req.Code,
		ContainerID: string(*req.Container),
		FlavourID:   string(*req.Flavour),
		ArrivedDate: *req.ArrivedDate,
		Price:       *req.Price,
		State:       *req.State,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceProduct(c *gin.Context) {
	s.updateProduct(c, true)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	s.updateProduct(c, false)
}

func (s *Server) updateProduct(c *gin.Context, full bool) {
	var req productRequest
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

	resp, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateRequest{
		ID:          c.Param("id"),
		Code:        req.Code,
		ContainerID: req.Container.ptr(),
		FlavourID:   req.Flavour.ptr(),
		ArrivedDate: req.ArrivedDate,
		Price:       req.Price,
		State:       req.State,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteProduct handles DELETE /api/product/:id. Orders keep existing and
// only lose their link to the product.
func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK})
}
