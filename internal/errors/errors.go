package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryParse         ErrorCategory = "parse"
	CategoryEmptyResult   ErrorCategory = "empty_result"
	CategoryModelCall     ErrorCategory = "model_call"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryUnimplemented ErrorCategory = "unimplemented"
	CategoryInternal      ErrorCategory = "internal"
)

// User-facing messages shared across the pipeline.
const (
	MsgParseFailed     = "LLM JSON 파싱 실패"
	MsgModelCallPrefix = "LLM 호출 오류"
)

// AppError wraps an errbuilder error with the category and HTTP status used by handlers
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id,omitempty"`
	StackTrace string        `json:"stack_trace,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	codeStr := "UNKNOWN_ERROR"
	switch e.Category {
	case CategoryValidation:
		codeStr = "VALIDATION_ERROR"
	case CategoryConfiguration:
		codeStr = "CONFIG_ERROR"
	case CategoryParse:
		codeStr = "PARSE_ERROR"
	case CategoryEmptyResult:
		codeStr = "EMPTY_RESULT"
	case CategoryModelCall:
		codeStr = "MODEL_CALL_ERROR"
	case CategoryNotFound:
		codeStr = "NOT_FOUND"
	case CategoryRateLimit:
		codeStr = "RATE_LIMIT_EXCEEDED"
	case CategoryTimeout:
		codeStr = "TIMEOUT_ERROR"
	case CategoryUnimplemented:
		codeStr = "NOT_IMPLEMENTED"
	case CategoryInternal:
		codeStr = "INTERNAL_ERROR"
	}

	return fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

func withDetail(builder *errbuilder.ErrBuilder, key, value string) *errbuilder.ErrBuilder {
	if value == "" {
		return builder
	}
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(key, errors.New(value))
	return builder.WithDetails(errbuilder.NewErrDetails(errorMap))
}

// NewValidationError creates a validation error
func NewValidationError(message string, details ...interface{}) *AppError {
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf("%v", details[0])
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	builder = withDetail(builder, "validation_details", detailStr)

	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewConfigError reports a missing or invalid configuration value. It is fatal at startup.
func NewConfigError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewParseError reports model text that holds no extractable JSON value
func NewParseError(snippet string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(MsgParseFailed)
	builder = withDetail(builder, "text_head", snippet)

	return NewAppError(builder, CategoryParse, http.StatusBadGateway)
}

// NewEmptyResultError reports a well-formed but empty or wrongly shaped result
func NewEmptyResultError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	return NewAppError(builder, CategoryEmptyResult, http.StatusUnprocessableEntity)
}

// NewModelCallError wraps a transport or provider failure
func NewModelCallError(model string, cause error) *AppError {
	msg := MsgModelCallPrefix
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", MsgModelCallPrefix, cause)
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(msg)
	builder = withDetail(builder, "model", model)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	status := http.StatusBadGateway
	if errors.Is(cause, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	return NewAppError(builder, CategoryModelCall, status)
}

// NewNotFoundError reports an unknown resource such as a card id
func NewNotFoundError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(message)

	return NewAppError(builder, CategoryNotFound, http.StatusNotFound)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("요청이 너무 많습니다. 잠시 후 다시 시도해주세요.")
	builder = withDetail(builder, "retry_after", retryAfter)

	return NewAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewUnimplementedError is returned by stubbed integrations
func NewUnimplementedError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnimplemented).
		WithMsg(message)

	return NewAppError(builder, CategoryUnimplemented, http.StatusNotImplemented)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error")
	builder = withDetail(builder, "internal_details", message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(builder, CategoryInternal, http.StatusInternalServerError)

	// Capture stack trace in development/debug mode
	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		appErr.StackTrace = captureStackTrace()
	}

	return appErr
}

func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("요청이 취소되었습니다.", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("요청 시간이 초과되었습니다.", err)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// IsKind reports whether err carries an AppError of the given category
func IsKind(err error, category ErrorCategory) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Category == category
}

// stagedError is implemented by errors that prefix their message with the
// pipeline stage that failed.
type stagedError interface {
	StagedMessage() string
}

// UserMessage returns the short message shown to the user for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var staged stagedError
	if errors.As(err, &staged) {
		return staged.StagedMessage()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ErrBuilder.Msg
	}
	return err.Error()
}

// ErrorHandler is a Gin middleware that provides centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err)
		}
	}
}

// Response is the JSON body written for failed requests
type Response struct {
	Error     string        `json:"error"`
	Category  ErrorCategory `json:"category"`
	RequestID string        `json:"request_id,omitempty"`
}

// Respond logs err and writes it as a Response with the error's HTTP status
func Respond(c *gin.Context, err error) {
	appErr := ToAppError(err)
	appErr.RequestID = c.GetHeader("X-Request-ID")
	LogError(c, appErr)

	msg := appErr.ErrBuilder.Msg
	var staged stagedError
	if errors.As(err, &staged) {
		msg = staged.StagedMessage()
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
		Error:     msg,
		Category:  appErr.Category,
		RequestID: appErr.RequestID,
	})
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("Panic recovered: %v", err),
			fmt.Errorf("%v", err),
		)
		appErr.StackTrace = captureStackTrace()

		Respond(c, appErr)
	})
}

// LogError logs an error with appropriate level and context
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"error_code", err.ErrBuilder.ErrCode(),
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	)

	errorMsg := err.ErrBuilder.Msg
	details := err.ErrBuilder.Details

	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryNotFound, CategoryUnimplemented, CategoryEmptyResult:
		if len(details.Errors) > 0 {
			logEntry.Warn(errorMsg, "details", details.Errors)
		} else {
			logEntry.Warn(errorMsg)
		}
	case CategoryParse, CategoryModelCall, CategoryTimeout:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Info(errorMsg, "cause", cause)
		} else {
			logEntry.Info(errorMsg)
		}
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(errorMsg, "cause", cause)
		} else {
			logEntry.Error(errorMsg)
		}
	}

	if err.StackTrace != "" && (gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode) {
		logEntry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	contextMsg := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", contextMsg, err)
}
