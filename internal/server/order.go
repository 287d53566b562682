package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type orderRequest struct {
	Date         *date.Date         `json:"date"`
	Products     *[]idValue         `json:"products"`
	Price        *decimal.Decimal   `json:"price"`
	DeliveryCost *decimal.Decimal   `json:"delivery_cost"`
	TotalAmount  *decimal.Decimal   `json:"total_amount"`
	Customer     *idValue           `json:"customer"`
	State        *orderdomain.State `json:"state"`
	Comment      *string            `json:"comment"`
}

// missingField reports the first absent required field. total_amount and
// comment may always be omitted.
func (r orderRequest) missingField() string {
	switch {
	case r.Date == nil:
		return "date"
	case r.Products == nil:
		return "products"
	case r.Price == nil:
		return "price"
	case r.DeliveryCost == nil:
		return "delivery_cost"
	case r.Customer == nil:
		return "customer"
	case r.State == nil:
		return "state"
	default:
		return ""
	}
}

// ListOrders handles GET /api/order. Supported filters: customer, state
// and date_from (YYYY-MM-DD).
func (s *Server) ListOrders(c *gin.Context) {
	req := orderdomain.ListRequest{
		CustomerID: c.Query("customer"),
		State:      orderdomain.State(c.Query("state")),
	}
	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		from, err := date.Parse(raw)
		if err != nil {
			AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid value"))
			return
		}
		req.DateFrom = from
	}

	resp, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateRequest{
		Date:         *req.Date,
		ProductIDs:   idStrings(*req.Products),
		Price:        *req.Price,
		DeliveryCost: *req.DeliveryCost,
		TotalAmount:  req.TotalAmount,
		CustomerID:   string(*req.Customer),
		State:        *req.State,
		Comment:      comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceOrder(c *gin.Context) {
	s.updateOrder(c, true)
}

func (s *Server) UpdateOrder(c *gin.Context) {
	s.updateOrder(c, false)
}

func (s *Server) updateOrder(c *gin.Context, full bool) {
	var req orderRequest
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

	update := orderdomain.UpdateRequest{
		ID:           c.Param("id"),
		Date:         req.Date,
		Price:        req.Price,
		DeliveryCost: req.DeliveryCost,
		TotalAmount:  req.TotalAmount,
		CustomerID:   req.Customer.ptr(),
		State:        req.State,
		Comment:      req.Comment,
	}
	if req.Products != nil {
		ids := idStrings(*req.Products)
		update.ProductIDs = &ids
	}

	resp, err := s.orderSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.orderSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
