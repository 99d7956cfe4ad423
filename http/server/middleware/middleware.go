// Package middleware provides the Fiber middlewares of the HTTP server.
//
// Each middleware declares a Priority; higher values run earlier:
//
//   - Recovery (1000): Catches panics in the middleware chain
//   - Tracing (900): Starts an OpenTelemetry span for the request
//   - Timeout (800): Applies a timeout to the request context
//   - MetaInject (700): Injects request metadata into the context
//   - Logger (500): Logs request and response details
//   - ErrorHandler (400): Converts errors to standardized responses
//
// Usage Example:
//
//	srv := server.NewHTTPServer(cfg, []server.Middleware{
//		middleware.NewRecoveryMW(log),
//		middleware.NewTracingMW(),
//		middleware.NewTimeoutMW(cfg.HandleTimeout),
//		middleware.NewMetaInjectMW("filedepot", "1.0.0"),
//		middleware.NewLoggerMW(log),
//		middleware.NewErrorHandlerMW(cfg.HideErrorDetails),
//	})
package middleware
