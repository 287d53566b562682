package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/birracraft/internal/observability/logger"
	reportdomain "github.com/smallbiznis/birracraft/internal/report/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
	"go.uber.org/zap"
)

type reportRequest struct {
	DateFrom string `json:"date_from"`
}

type reportResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// RequestReport handles POST /api/report/report. The sales report is built
// and mailed to the caller in the background; the response only
// acknowledges the enqueue.
func (s *Server) RequestReport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	from, err := date.Parse(req.DateFrom)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid value"))
		return
	}

	jobID, err := s.reportSvc.Request(c.Request.Context(), reportdomain.Request{
		Email:    user.Email,
		Username: user.Username,
		DateFrom: from,
	})
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("report enqueue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, reportResponse{
			Code:    http.StatusInternalServerError,
			Message: strings.ReplaceAll(err.Error(), "_", " "),
		})
		return
	}

	logger.FromContext(c.Request.Context()).Info("report enqueued", zap.String("job_id", jobID))
	c.JSON(http.StatusOK, reportResponse{Code: http.StatusOK})
}
