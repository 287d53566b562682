package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type quotaRequest struct {
	CurrentQuota *int             `json:"current_quota"`
	TotalQuota   *int             `json:"total_quota"`
	Value        *decimal.Decimal `json:"value"`
	Date         *date.Date       `json:"date"`
	Payment      *idValue         `json:"payment"`
}

func (r quotaRequest) missingField() string {
	switch {
	case r.CurrentQuota == nil:
		return "current_quota"
	case r.TotalQuota == nil:
		return "total_quota"
	case r.Value == nil:
		return "value"
	case r.Date == nil:
		return "date"
	case r.Payment == nil:
		return "payment"
	default:
		return ""
	}
}

type listByPaymentRequest struct {
	Payment *idValue `json:"payment"`
}

func (s *Server) ListQuotas(c *gin.Context) {
	resp, err := s.quotaSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListQuotasByPayment handles POST /api/quota/list_by_payment.
func (s *Server) ListQuotasByPayment(c *gin.Context) {
	var req listByPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Payment == nil || *req.Payment == "" {
		AbortWithError(c, missingFieldError("payment"))
		return
	}

	resp, err := s.quotaSvc.ListByPayment(c.Request.Context(), string(*req.Payment))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateQuota(c *gin.Context) {
	var req quotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field := req.missingField(); field != "" {
		AbortWithError(c, missingFieldError(field))
		return
	}

	resp, err := s.quotaSvc.Create(c.Request.Context(), quotadomain.CreateRequest{
		CurrentQuota: *req.CurrentQuota,
		TotalQuota:   *req.TotalQuota,
		Value:        *req.Value,
		Date:         *req.Date,
		PaymentID:    string(*req.Payment),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetQuota(c *gin.Context) {
	resp, err := s.quotaSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceQuota(c *gin.Context) {
	s.updateQuota(c, true)
}

func (s *Server) UpdateQuota(c *gin.Context) {
	s.updateQuota(c, false)
}

func (s *Server) updateQuota(c *gin.Context, full bool) {
	var req quotaRequest
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

	resp, err := s.quotaSvc.Update(c.Request.Context(), quotadomain.UpdateRequest{
		ID:           c.Param("id"),
		CurrentQuota: req.CurrentQuota,
		TotalQuota:   req.TotalQuota,
		Value:        req.Value,
		Date:         req.Date,
		PaymentID:    req.Payment.ptr(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteQuota(c *gin.Context) {
	if err := s.quotaSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
