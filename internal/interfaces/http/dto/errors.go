package dto

import (
	"net/http"

	"github.com/chedfms/liqtrack/internal/domain/shared"
)

// Error codes that only exist at the HTTP boundary. Domain and application
// layers use the codes defined in the shared package.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
//
// The two review-gate failures map to distinct statuses on purpose:
// PERMISSION_DENIED (the role never allows the operation) is 403 while
// INVALID_STATE (wrong status right now) is 409, so clients can tell
// "never" from "not yet" without parsing messages.
var ErrorCodeHTTPStatus = map[string]int{
	shared.ErrCodePermissionDenied:       http.StatusForbidden,
	shared.ErrCodeInvalidState:           http.StatusConflict,
	shared.ErrCodeValidation:             http.StatusUnprocessableEntity,
	shared.ErrCodeNotFound:               http.StatusNotFound,
	shared.ErrCodeDuplicateControlNumber: http.StatusUnprocessableEntity,
	shared.ErrCodeFileFormat:             http.StatusUnprocessableEntity,
	shared.ErrCodeConcurrencyConflict:    http.StatusConflict,
	shared.ErrCodeUnauthorized:           http.StatusUnauthorized,
	shared.ErrCodeInternal:               http.StatusInternalServerError,

	shared.ErrCodeInvalidCredentials: http.StatusUnauthorized,
	shared.ErrCodeAccountLocked:      http.StatusLocked,
	shared.ErrCodeAccountDeactivated: http.StatusForbidden,
	shared.ErrCodeTokenExpired:       http.StatusUnauthorized,
	shared.ErrCodeTokenInvalid:       http.StatusUnauthorized,
	shared.ErrCodeTokenMaxRefresh:    http.StatusUnauthorized,
	shared.ErrCodeDuplicateUsername:  http.StatusConflict,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes fall back to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
