package server

import (
	"cmp"
	"slices"

	"github.com/gofiber/fiber/v2"
)

// Middleware represents an HTTP middleware with a priority for ordering.
//
// Priority determines the order in which middlewares are applied: higher values are applied first.
// Handler is the Fiber-compatible middleware function.
type Middleware struct {
	Priority int
	Handler  fiber.Handler
}

// applyMiddlewares registers the provided middlewares to the Fiber app in priority order.
// Nil handlers are skipped.
func applyMiddlewares(app *fiber.App, middlewares []Middleware) {
	ordered := slices.Clone(middlewares)
	slices.SortStableFunc(ordered, func(a, b Middleware) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	for _, mw := range ordered {
		if mw.Handler == nil {
			continue
		}
		app.Use(mw.Handler)
	}
}
