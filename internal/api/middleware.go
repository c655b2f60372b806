package api

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"skillup-tracker/internal/auth"
	"skillup-tracker/internal/logger"
	"skillup-tracker/internal/model"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	loggerKey       = "logger"
	userIDKey       = "user_id"
)

// UserResolver maps a verified token subject onto a local user row.
type UserResolver interface {
	EnsureExternal(ctx context.Context, externalID, username string) (*model.User, error)
}

// RequestID tags every request with an id, reusing the caller's X-Request-ID when sane.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request and exposes a request-scoped logger to handlers.
// Authenticated requests also carry the token subject.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		reqLog := log.With(zap.String("request_id", c.GetString(requestIDKey)))
		c.Set(loggerKey, reqLog)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		}
		if id, ok := c.Get(userIDKey); ok {
			fields = append(fields, zap.Any("user_id", id))
		}
		if claims, ok := auth.FromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("subject", claims.Subject))
		}
		if c.Writer.Status() >= 500 {
			reqLog.Warn("request", fields...)
			return
		}
		reqLog.Info("request", fields...)
	}
}

// Recovery turns panics into a 500 AppError.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				loggerFrom(c).Error("panic recovered", zap.Any("panic", r), zap.Stack("stack"))
				appErr := Internal("internal server error")
				c.AbortWithStatusJSON(appErr.Status, appErr)
			}
		}()
		c.Next()
	}
}

// AuthRequired verifies the bearer token and stores the local user id under "user_id".
func AuthRequired(cfg auth.Config, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.FromHeader(c.GetHeader("Authorization"), cfg)
		if err != nil {
			appErr := Unauthorized("missing or invalid authentication")
			c.AbortWithStatusJSON(appErr.Status, appErr)
			return
		}

		user, err := users.EnsureExternal(c.Request.Context(), claims.Subject, claims.Username)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

func loggerFrom(c *gin.Context) *zap.Logger {
	if value, ok := c.Get(loggerKey); ok {
		if log, ok := value.(*zap.Logger); ok {
			return log
		}
	}
	return logger.L()
}
