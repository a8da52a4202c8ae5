package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const appKey = "app"

type ctxKey struct{}

func InitLogger(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel accepts anything slog.Level.UnmarshalText does (debug, INFO,
// warn+2, ...). Anything else is info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func WithApp(ctx context.Context, app string) context.Context {
	return context.WithValue(ctx, ctxKey{}, app)
}

func Middleware(app string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(appKey, app)
		c.Next()
		Debug(c, "request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

func appFrom(ctx context.Context) (string, bool) {
	if app, ok := ctx.Value(ctxKey{}).(string); ok {
		return app, true
	}
	if gc, isGin := ctx.(*gin.Context); isGin {
		if val, exists := gc.Get(appKey); exists {
			app, ok := val.(string)
			return app, ok
		}
	}
	return "", false
}

func logBase(ctx context.Context, level slog.Level, msg string, args ...any) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	if app, ok := appFrom(ctx); ok {
		l = l.With(appKey, app)
	}
	l.Log(ctx, level, msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelDebug, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelWarn, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelError, msg, args...)
}
