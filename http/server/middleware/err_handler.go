package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filedepot/http/server"
)

// handledErrorKey holds the error already written by the error handler so
// outer middlewares can still report it.
const handledErrorKey = "middleware.handled_error"

// NewErrorHandlerMW creates a middleware that converts handler errors to
// standardized JSON responses. When hideDetails is false, the error trace and
// details are included in the response.
func NewErrorHandlerMW(hideDetails bool) server.Middleware {
	return server.Middleware{
		Priority: 400,
		Handler: func(c *fiber.Ctx) error {
			err := c.Next()
			if err == nil {
				return nil
			}

			c.Locals(handledErrorKey, err)

			return server.WriteErrorResponse(c, err, hideDetails)
		},
	}
}

func handledError(c *fiber.Ctx) error {
	err, _ := c.Locals(handledErrorKey).(error)
	return err
}
