package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filedepot/http/server"
	"github.com/rise-and-shine/filedepot/meta"
	"github.com/rise-and-shine/filedepot/observability/tracing"
)

// HeaderTraceID carries the request trace id in responses.
const HeaderTraceID = "X-Trace-ID"

// NewMetaInjectMW creates a middleware that injects request metadata (trace id,
// client address, user agent, service identity) into the request context and
// echoes the trace id in the response headers.
func NewMetaInjectMW(serviceName, serviceVersion string) server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			traceID := tracing.TraceID(c.UserContext())

			ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
				meta.TraceID:        traceID,
				meta.IPAddress:      c.IP(),
				meta.UserAgent:      c.Get(fiber.HeaderUserAgent),
				meta.ServiceName:    serviceName,
				meta.ServiceVersion: serviceVersion,
			})
			c.SetUserContext(ctx)
			c.Set(HeaderTraceID, traceID)

			return c.Next()
		},
	}
}
