package middleware

import (
	"ovenctrl/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware renders errors attached with c.Error as JSON.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		if appErr := errors.GetAppError(err); appErr != nil {
			logger.Warnw("request failed",
				"code", appErr.Code,
				"message", appErr.Message,
				"status", appErr.HTTPStatus,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"context", appErr.Context,
			)

			c.JSON(appErr.HTTPStatus, gin.H{
				"error":   string(appErr.Code),
				"message": appErr.Message,
				"details": appErr.Context,
			})
			return
		}

		logger.Errorw("unhandled error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		internal := errors.NewInternalError("Internal server error")
		c.JSON(internal.HTTPStatus, gin.H{
			"error":   string(internal.Code),
			"message": internal.Message,
		})
	}
}

// NotFoundHandler is installed as the router's NoRoute handler; the error
// is rendered by ErrorHandlerMiddleware.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Error(errors.NewNotFoundError("route").WithContext("path", c.Request.URL.Path))
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				internal := errors.NewInternalError("Internal server error")
				c.AbortWithStatusJSON(internal.HTTPStatus, gin.H{
					"error":   string(internal.Code),
					"message": internal.Message,
				})
			}
		}()

		c.Next()
	}
}
