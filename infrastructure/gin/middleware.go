package gin

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Mod5ied/eagle-server/infrastructure/errors"
	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	// requestIDKey is the gin context key holding the request id.
	requestIDKey       = "request_id"
	maxRequestIDLength = 128
)

// RequestIDLoggerMiddleware assigns a request id (reusing a sane inbound
// X-Request-ID) and stores a logger carrying it in the request context.
func RequestIDLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)

		reqLog := log.With(logger.String(requestIDKey, id))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()
	}
}

// LoggerMiddleware logs one entry per request.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if id, ok := c.Get(requestIDKey); ok {
			fields = append(fields, logger.Any(requestIDKey, id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case len(c.Errors) > 0:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// CORSMiddleware answers cross-origin requests from the allowed origins.
// Requests from other origins get no CORS headers.
func CORSMiddleware(cfg CORSConfig) gin.HandlerFunc {
	cfg.SetDefaults()

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(c *gin.Context) {
		allowed := allowedOrigin(c.GetHeader("Origin"), cfg.AllowedOrigins)
		if allowed == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		h.Add("Vary", "Origin")
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func allowedOrigin(origin string, allowed []string) string {
	if origin == "" {
		return ""
	}
	if slices.Contains(allowed, origin) {
		return origin
	}
	if slices.Contains(allowed, "*") {
		return origin
	}
	return ""
}

// BodyLimitMiddleware rejects bodies larger than limit bytes. Bodies without
// a declared length are capped while being read.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			_ = c.Error(apperrors.TooLarge("Payload Too Large"))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// RecoveryMiddleware turns panics into 500 responses.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestLogger(c, log).Error("Panic recovered",
					logger.Any("panic", r),
					logger.String("method", c.Request.Method),
					logger.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			}
		}()

		c.Next()
	}
}

// ErrorHandlerMiddleware renders the last error pushed with c.Error as
// {"message": ...}, plus "errors" for validation failures. Errors outside
// the taxonomy become a generic 500.
func ErrorHandlerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperrors.As(err)
		if !ok {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				appErr = apperrors.TooLarge("Payload Too Large")
			} else {
				appErr = apperrors.Internal(err)
			}
		}

		status := appErr.Kind.StatusCode()
		if status >= http.StatusInternalServerError {
			requestLogger(c, log).Error("unhandled_error",
				logger.Error(err),
				logger.Int("status", status),
				logger.String("path", c.Request.URL.Path),
			)
		}

		body := gin.H{"message": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		c.AbortWithStatusJSON(status, body)
	}
}

func requestLogger(c *gin.Context, log logger.Logger) logger.Logger {
	if id := c.GetString(requestIDKey); id != "" {
		return log.With(logger.String(requestIDKey, id))
	}
	return log
}

// NotFoundHandler answers unknown routes.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	}
}
