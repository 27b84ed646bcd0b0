package middleware

import (
	stderrors "errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/pkg/auth"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

const (
	// TraceIDHeader is the header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"
	// PrincipalKey is the gin context key for the authenticated principal
	PrincipalKey = "principal"
)

// ErrorHandler is a middleware that handles errors and panics. With debug
// set, internal error causes are included in the response.
func ErrorHandler(log *logger.Logger, debugMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				traceID := c.GetString(TraceIDKey)
				log.WithContext(c.Request.Context()).Error("panic recovered",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)

				c.Header(TraceIDHeader, traceID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errors.ErrorResponse{
					Error: errors.ErrorBody{
						Code:    errors.CodeInternal,
						Message: "An internal error occurred",
					},
					TraceID: traceID,
				})
			}
		}()

		c.Next()

		// Handle errors set by handlers
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			traceID := c.GetString(TraceIDKey)
			statusCode, jsonResponse := errors.ToJSON(err, traceID, debugMode)

			l := log.WithContext(c.Request.Context())
			fields := []zap.Field{zap.Error(err), zap.Int("status", statusCode)}
			if statusCode >= http.StatusInternalServerError {
				l.Error("request error", fields...)
			} else {
				l.Warn("request rejected", fields...)
			}

			c.Header(TraceIDHeader, traceID)
			c.Data(statusCode, "application/json", jsonResponse)
		}
	}
}

// TraceID is a middleware that generates or extracts trace ID
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		// Add trace ID to request context
		ctx := logger.WithTraceIDContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Authenticate requires a valid bearer token and stores the principal on
// both the gin and request contexts
func Authenticate(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.Error(errors.NewUnauthorized("authentication required").WithReason("AUTH_REQUIRED"))
			c.Abort()
			return
		}

		principal, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			reason := "INVALID_TOKEN"
			if stderrors.Is(err, auth.ErrTokenExpired) {
				reason = "TOKEN_EXPIRED"
			}
			c.Error(errors.NewUnauthorized("invalid or expired token").WithReason(reason))
			c.Abort()
			return
		}

		c.Set(PrincipalKey, principal)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))

		c.Next()
	}
}

// RequireAdmin rejects principals without the admin or super_admin role.
// Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := auth.FromContext(c.Request.Context())
		if !principal.IsAdmin() {
			c.Error(errors.NewForbidden("admin access required").WithReason("ADMIN_REQUIRED"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger logs all HTTP requests
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		log.WithContext(c.Request.Context()).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// CORS is a middleware that handles CORS
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Trace-ID")
		c.Header("Access-Control-Expose-Headers", "X-Trace-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
