package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
)

type paymentRequest struct {
	Transaction *int64                `json:"transaction"`
	Amount      *decimal.Decimal      `json:"amount"`
	Method      *paymentdomain.Method `json:"method"`
	Order       *idValue              `json:"order"`
}

func (r paymentRequest) missingField() string {
	switch {
	case r.Amount == nil:
		return "amount"
	case r.Method == nil:
		return "method"
	case r.Order == nil:
		return "order"
	default:
		return ""
	}
}

// ListPayments handles GET /api/payment, optionally filtered by order.
func (s *Server) ListPayments(c *gin.Context) {
	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListRequest{
		OrderID: c.Query("order"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreatePayment handles POST /api/payment. The transaction number in the
// body is only kept for the first payment ever recorded.
func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreateRequest{
		Transaction: req.Transaction,
		Amount:      *req.Amount,
		Method:      *req.Method,
		OrderID:     string(*req.Order),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetPayment(c *gin.Context) {
	resp, err := s.paymentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplacePayment(c *gin.Context) {
	s.updatePayment(c, true)
}

func (s *Server) UpdatePayment(c *gin.Context) {
	s.updatePayment(c, false)
}

// updatePayment ignores any transaction in the body; the number is fixed
// once allocated.
func (s *Server) updatePayment(c *gin.Context, full bool) {
	var req paymentRequest
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

	resp, err := s.paymentSvc.Update(c.Request.Context(), paymentdomain.UpdateRequest{
		ID:      c.Param("id"),
		Amount:  req.Amount,
		Method:  req.Method,
		OrderID: req.Order.ptr(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeletePayment(c *gin.Context) {
	if err := s.paymentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
