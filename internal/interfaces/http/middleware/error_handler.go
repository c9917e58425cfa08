package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// EnvProduction hides stack traces from error responses
const EnvProduction = "production"

const errorHandlerEnvKey = "error_handler_env"

// ErrorHandlerConfig configures ErrorHandler
type ErrorHandlerConfig struct {
	Env    string
	Logger *zap.Logger
}

// ErrorHandler renders errors recorded on the gin context with c.Error, and
// panics turned into errors by logger.Recovery, as JSON error responses. It
// writes nothing when a handler already produced a response.
func ErrorHandler(cfg ErrorHandlerConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Set(errorHandlerEnvKey, cfg.Env)
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := RespondError(c, err)
		if status >= http.StatusInternalServerError {
			cfg.Logger.Error("request failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
	}
}

// RespondError writes the JSON error response for err and returns its status.
// Domain errors map to their code's status; anything unrecognised is a 500
// whose message does not leak err. 5xx errors are also recorded on c.
func RespondError(c *gin.Context, err error) int {
	status, body := resolveError(err)
	body.RequestID = GetRequestID(c)

	if c.GetString(errorHandlerEnvKey) != EnvProduction && status >= http.StatusInternalServerError {
		body.Stack = stackOf(err)
	}
	if status >= http.StatusInternalServerError && !containsError(c, err) {
		_ = c.Error(err)
	}

	c.Header(RequestIDHeader, body.RequestID)
	c.AbortWithStatusJSON(status, body)
	return status
}

func resolveError(err error) (int, dto.ErrorResponse) {
	var (
		panicErr  *logger.PanicError
		domainErr *shared.DomainError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &panicErr):
		return http.StatusInternalServerError,
			dto.NewErrorResponse(http.StatusInternalServerError, dto.ErrCodeInternal, "Internal server error", "")
	case dto.ValidationDetails(err) != nil:
		body := dto.NewErrorResponse(http.StatusBadRequest, shared.CodeInvalidInput, "Request validation failed", "")
		body.Details = dto.ValidationDetails(err)
		return http.StatusBadRequest, body
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest,
			dto.NewErrorResponse(http.StatusBadRequest, dto.ErrCodeBadJSON, "Malformed request body", "")
	case errors.As(err, &domainErr):
		status := dto.GetHTTPStatus(domainErr.Code)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			message = "Internal server error"
		}
		return status, dto.NewErrorResponse(status, domainErr.Code, message, "")
	default:
		return http.StatusInternalServerError,
			dto.NewErrorResponse(http.StatusInternalServerError, dto.ErrCodeInternal, "Internal server error", "")
	}
}

func stackOf(err error) []string {
	var panicErr *logger.PanicError
	if errors.As(err, &panicErr) {
		lines := strings.Split(strings.TrimSpace(string(panicErr.Stack)), "\n")
		return append([]string{panicErr.Error()}, lines...)
	}
	return []string{err.Error()}
}

func containsError(c *gin.Context, err error) bool {
	for _, e := range c.Errors {
		if e.Err == err {
			return true
		}
	}
	return false
}
