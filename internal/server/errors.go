package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/authorization"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	flavourdomain "github.com/smallbiznis/birracraft/internal/flavour/domain"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/internal/ratelimit"
	"github.com/smallbiznis/birracraft/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func missingFieldError(field string) error {
	return newValidationError(field, "required", "this field is required")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and code recorded on the
// request log line.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if vErr := asValidationErrors(err); vErr != nil {
		code := ""
		if len(vErr.Errors) > 0 {
			code = vErr.Errors[0].Code
		}
		return "validation_error", code
	}
	if isValidationError(err) {
		return "validation_error", validationErrorCode(err)
	}
	_, payload := mapError(err)
	if payload.Type == "internal_error" {
		return payload.Type, "internal_error"
	}
	return payload.Type, err.Error()
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInactiveUser),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, paymentdomain.ErrOrderAlreadyPaid),
		db.IsDuplicateKeyErr(err):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, paymentdomain.ErrOrderAlreadyPaid) {
		return "order already has a payment"
	}
	return "conflict"
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidLink):
		return true
	case isAuthValidationError(err),
		isCustomerValidationError(err),
		isContainerValidationError(err),
		isFlavourValidationError(err),
		isProductValidationError(err),
		isOrderValidationError(err),
		isPaymentValidationError(err),
		isQuotaValidationError(err):
		return true
	default:
		return false
	}
}

func isAuthValidationError(err error) bool {
	return errors.Is(err, authdomain.ErrInvalidUsername) ||
		errors.Is(err, authdomain.ErrInvalidEmail) ||
		errors.Is(err, authdomain.ErrInvalidPassword)
}

func isCustomerValidationError(err error) bool {
	return errors.Is(err, customerdomain.ErrInvalidID) ||
		errors.Is(err, customerdomain.ErrInvalidName) ||
		errors.Is(err, customerdomain.ErrInvalidAddress) ||
		errors.Is(err, customerdomain.ErrInvalidEmail) ||
		errors.Is(err, customerdomain.ErrInvalidCellphone) ||
		errors.Is(err, customerdomain.ErrInvalidType)
}

func isContainerValidationError(err error) bool {
	return errors.Is(err, containerdomain.ErrInvalidID) ||
		errors.Is(err, containerdomain.ErrInvalidType) ||
		errors.Is(err, containerdomain.ErrInvalidLiters)
}

func isFlavourValidationError(err error) bool {
	return errors.Is(err, flavourdomain.ErrInvalidID) ||
		errors.Is(err, flavourdomain.ErrInvalidName) ||
		errors.Is(err, flavourdomain.ErrInvalidPrice)
}

func isProductValidationError(err error) bool {
	return errors.Is(err, productdomain.ErrInvalidID) ||
		errors.Is(err, productdomain.ErrInvalidCode) ||
		errors.Is(err, productdomain.ErrInvalidContainer) ||
		errors.Is(err, productdomain.ErrInvalidFlavour) ||
		errors.Is(err, productdomain.ErrInvalidArrivedDate) ||
		errors.Is(err, productdomain.ErrInvalidPrice) ||
		errors.Is(err, productdomain.ErrInvalidState)
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, orderdomain.ErrInvalidID) ||
		errors.Is(err, orderdomain.ErrInvalidDate) ||
		errors.Is(err, orderdomain.ErrInvalidProducts) ||
		errors.Is(err, orderdomain.ErrInvalidPrice) ||
		errors.Is(err, orderdomain.ErrInvalidDeliveryCost) ||
		errors.Is(err, orderdomain.ErrInvalidTotalAmount) ||
		errors.Is(err, orderdomain.ErrInvalidCustomer) ||
		errors.Is(err, orderdomain.ErrInvalidState)
}

func isPaymentValidationError(err error) bool {
	return errors.Is(err, paymentdomain.ErrInvalidID) ||
		errors.Is(err, paymentdomain.ErrInvalidTransaction) ||
		errors.Is(err, paymentdomain.ErrInvalidAmount) ||
		errors.Is(err, paymentdomain.ErrInvalidMethod) ||
		errors.Is(err, paymentdomain.ErrInvalidOrder)
}

func isQuotaValidationError(err error) bool {
	return errors.Is(err, quotadomain.ErrInvalidID) ||
		errors.Is(err, quotadomain.ErrInvalidCurrentQuota) ||
		errors.Is(err, quotadomain.ErrInvalidTotalQuota) ||
		errors.Is(err, quotadomain.ErrInvalidValue) ||
		errors.Is(err, quotadomain.ErrInvalidDate) ||
		errors.Is(err, quotadomain.ErrInvalidPayment)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, containerdomain.ErrNotFound),
		errors.Is(err, flavourdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, quotadomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_link":
		return "invalid or expired link"
	default:
		return "invalid value"
	}
}
