package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process logger. Records logged with a request context carry
// request_id, user_id and trace_id.
var Logger = NewLogger(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

// NewLogger writes JSON in production and text elsewhere. level is one of
// debug, info, warn or error; anything else means info.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if env == "production" || env == "prod" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: h})
}

type metaKey struct{}

// requestMeta is what the logger knows about the request behind a context.
type requestMeta struct {
	requestID string
	userID    string
}

func metaFrom(ctx context.Context) requestMeta {
	m, _ := ctx.Value(metaKey{}).(requestMeta)
	return m
}

// ctxHandler adds request metadata and the active trace id to every record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	m := metaFrom(ctx)
	if m.requestID != "" {
		r.AddAttrs(slog.String("request_id", m.requestID))
	}
	if m.userID != "" {
		r.AddAttrs(slog.String("user_id", m.userID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}

// ContextMiddleware copies the request id assigned by requestid into the user context.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := metaFrom(c.UserContext())
		if rid, ok := c.Locals("requestid").(string); ok {
			m.requestID = rid
		}
		c.SetUserContext(context.WithValue(c.UserContext(), metaKey{}, m))
		return c.Next()
	}
}

// WithUserID records the authenticated user on the request for handlers and logs.
func WithUserID(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	m := metaFrom(c.UserContext())
	m.userID = userID
	c.SetUserContext(context.WithValue(c.UserContext(), metaKey{}, m))
}

// quietPaths are probed constantly and not worth a log line on success.
var quietPaths = map[string]bool{
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// StructuredLogger logs one line per request: Error for failures and 5xx,
// Warn for 4xx, Info otherwise.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err == nil && status < fiber.StatusBadRequest && quietPaths[c.Path()] {
			return nil
		}

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("route", c.Route().Path),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}

		ctx := c.UserContext()
		switch {
		case err != nil:
			fields = append(fields, slog.String("error", err.Error()))
			Logger.ErrorContext(ctx, "request failed", fields...)
		case status >= fiber.StatusInternalServerError:
			Logger.ErrorContext(ctx, "request failed", fields...)
		case status >= fiber.StatusBadRequest:
			Logger.WarnContext(ctx, "request rejected", fields...)
		default:
			Logger.InfoContext(ctx, "request processed", fields...)
		}
		return err
	}
}
