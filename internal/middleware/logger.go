package middleware

import (
	"clocker/backend/foundation/web"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger attaches a request scoped logger to the context and writes one
// line per request.
func Logger() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(c *web.Context) error {
			requestID := c.Request.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Header("X-Request-ID", requestID)

			logger := log.Ctx(c.Ctx).With().
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Logger()
			c.Ctx = logger.WithContext(c.Ctx)

			err := handler(c)

			status := c.Writer.Status()
			var event *zerolog.Event
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			default:
				event = logger.Info()
			}
			event.Int("status", status).Dur("took", c.Since()).Msg("request")

			return err
		}

		return h
	}

	return m
}
