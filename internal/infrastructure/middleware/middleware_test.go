package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "ovenctrl/pkg/errors"
	"ovenctrl/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/test", nil)

	require.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddleware_ReusesIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/test", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAccessLogMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(RequestIDMiddleware(), AccessLogMiddleware(logger.NewContextLogger(zap.New(core)), "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	serve(router, http.MethodGet, "/health", nil)
	serve(router, http.MethodGet, "/test", http.Header{RequestIDHeader: {"req-7"}})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status_code"])
	assert.Equal(t, "req-7", fields["request_id"])
}

func TestErrorHandlerMiddleware_AppError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(ErrorHandlerMiddleware(zap.New(core).Sugar()))
	router.POST("/join", func(c *gin.Context) {
		c.Error(apperrors.NewInvalidInputError("room name is required").WithContext("field", "room"))
	})

	w := serve(router, http.MethodPost, "/join", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"INVALID_INPUT","message":"room name is required","details":{"field":"room"}}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestErrorHandlerMiddleware_PlainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(zap.NewNop().Sugar()))
	router.GET("/test", func(c *gin.Context) {
		c.Error(errors.New("boom"))
	})

	w := serve(router, http.MethodGet, "/test", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandlerMiddleware_LeavesWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(zap.NewNop().Sugar()))
	router.GET("/test", func(c *gin.Context) {
		c.Error(errors.New("logged only"))
		c.String(http.StatusAccepted, "done")
	})

	w := serve(router, http.MethodGet, "/test", nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(zap.NewNop().Sugar()))
	router.NoRoute(NotFoundHandler())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"NOT_FOUND","message":"route not found","details":{"path":"/nowhere"}}`, w.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.New(core).Sugar()))
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(router, http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestTracingMiddleware_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingMiddleware())
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(router, http.MethodGet, "/test", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
