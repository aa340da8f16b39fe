package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		category ErrorCategory
		status   int
		prefix   string
	}{
		{"validation", NewValidationError("bad input", "brand"), CategoryValidation, http.StatusBadRequest, "[VALIDATION_ERROR]"},
		{"config", NewConfigError("GEMINI_API_KEY 없음", nil), CategoryConfiguration, http.StatusInternalServerError, "[CONFIG_ERROR]"},
		{"parse", NewParseError("hello"), CategoryParse, http.StatusBadGateway, "[PARSE_ERROR]"},
		{"empty", NewEmptyResultError("리서치 결과 형식 오류"), CategoryEmptyResult, http.StatusUnprocessableEntity, "[EMPTY_RESULT]"},
		{"model", NewModelCallError("gemini-2.5-flash", fmt.Errorf("connection refused")), CategoryModelCall, http.StatusBadGateway, "[MODEL_CALL_ERROR]"},
		{"not found", NewNotFoundError("card"), CategoryNotFound, http.StatusNotFound, "[NOT_FOUND]"},
		{"unimplemented", NewUnimplementedError("stub"), CategoryUnimplemented, http.StatusNotImplemented, "[NOT_IMPLEMENTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Contains(t, tt.err.Error(), tt.prefix)
			assert.True(t, IsKind(tt.err, tt.category))
		})
	}
}

func TestModelCallErrorMessage(t *testing.T) {
	cause := fmt.Errorf("503 overloaded")
	err := NewModelCallError("gemini-2.5-flash", cause)

	assert.Equal(t, "LLM 호출 오류: 503 overloaded", UserMessage(err))
	assert.ErrorIs(t, err, cause)

	timeout := NewModelCallError("m", context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, timeout.HTTPStatus)
}

func TestParseErrorMessage(t *testing.T) {
	err := NewParseError("not json")
	assert.Equal(t, MsgParseFailed, UserMessage(err))
	assert.Equal(t, errbuilder.CodeInvalidArgument, err.ErrCode())
}

func TestToAppError(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	original := NewEmptyResultError("x")
	wrapped := WrapError(original, "stage %s", "research")
	assert.Same(t, original, ToAppError(wrapped))
	assert.True(t, IsKind(wrapped, CategoryEmptyResult))

	assert.Equal(t, CategoryTimeout, ToAppError(context.Canceled).Category)
	assert.Equal(t, CategoryInternal, ToAppError(fmt.Errorf("boom")).Category)
	assert.False(t, IsKind(fmt.Errorf("plain"), CategoryParse))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "plain", UserMessage(fmt.Errorf("plain")))
	assert.Equal(t, "기간 내 적합한 이벤트를 찾지 못했습니다.",
		UserMessage(NewEmptyResultError("기간 내 적합한 이벤트를 찾지 못했습니다.")))
}

func TestErrorHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewNotFoundError("카드를 찾을 수 없습니다."))
	})
	r.GET("/panic", RecoveryHandler(), func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
