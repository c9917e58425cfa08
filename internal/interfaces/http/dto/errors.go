package dto

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/qms/backend/internal/domain/shared"
)

// Codes used for failures that do not originate in the domain
const (
	ErrCodeInternal = "INTERNAL_ERROR"
	ErrCodeBadJSON  = "INVALID_JSON"
)

// CodeHTTPStatus maps domain error codes to HTTP status codes
var CodeHTTPStatus = map[string]int{
	shared.CodeInvalidInput:      http.StatusBadRequest,
	shared.CodeNoTenantContext:   http.StatusBadRequest,
	ErrCodeBadJSON:               http.StatusBadRequest,
	shared.CodeUnauthorized:      http.StatusUnauthorized,
	shared.CodeForbidden:         http.StatusForbidden,
	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeAlreadyExists:     http.StatusConflict,
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeContractViolation: http.StatusInternalServerError,
	shared.CodeSchemaValidation:  http.StatusInternalServerError,
	ErrCodeInternal:              http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for code, 500 if the code is unknown
func GetHTTPStatus(code string) int {
	if status, ok := CodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error     string             `json:"error"`
	Message   string             `json:"message"`
	Code      string             `json:"code"`
	RequestID string             `json:"requestId,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Stack     []string           `json:"stack,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// NewErrorResponse builds an error body for status
func NewErrorResponse(status int, code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
}

// ValidationDetails extracts per-field failures from a binding error.
// It returns nil when err is not a validator error.
func ValidationDetails(err error) []ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationDetail{
			Field:   lowerFirst(fe.Field()),
			Rule:    fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max", "len":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email", "uuid":
		return fmt.Sprintf("%s must be a valid %s", field, fe.Tag())
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
