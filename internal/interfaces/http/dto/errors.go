package dto

import (
	"net/http"

	"github.com/distribo/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes pass through unchanged;
// these cover failures that never reach the domain layer.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Business rule rejections map to 422 so clients can tell a rule
// violation apart from a malformed request.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeInternal:     http.StatusInternalServerError,

	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,
	"INVALID_INPUT":  http.StatusBadRequest,

	"CONCURRENCY_CONFLICT":      http.StatusConflict,
	"INVALID_STATE_TRANSITION":  http.StatusConflict,
	"INSUFFICIENT_STOCK":        http.StatusUnprocessableEntity,
	"CREDIT_LIMIT_EXCEEDED":     http.StatusUnprocessableEntity,
	"CUSTOMER_INACTIVE":         http.StatusUnprocessableEntity,
	"PRODUCT_UNAVAILABLE":       http.StatusUnprocessableEntity,
	"OVERPAYMENT_NOT_SUPPORTED": http.StatusUnprocessableEntity,
	"REGISTER_CLOSED":           http.StatusUnprocessableEntity,
	"DEBT_BELOW_ZERO":           http.StatusUnprocessableEntity,
	"INVALID_DEBT_SNAPSHOT":     http.StatusBadRequest,
}

// GetHTTPStatus resolves an error code to its HTTP status. Codes without
// an explicit mapping fall back on the error kind, then on 500.
func GetHTTPStatus(code string, kind shared.ErrorKind) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
