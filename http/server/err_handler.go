package server

import (
	"errors"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filedepot/meta"
)

const (
	// codeRouterError marks errors raised by fiber itself: unknown route,
	// body over the limit, malformed request.
	codeRouterError = "ROUTER_ERROR"

	internalErrorMessage = "internal server error"
)

// statusByType maps error types to response statuses. Types not listed
// answer 500.
var statusByType = map[errx.Type]int{
	errx.T_Validation:     fiber.StatusBadRequest,
	errx.T_Authentication: fiber.StatusUnauthorized,
	errx.T_Forbidden:      fiber.StatusForbidden,
	errx.T_NotFound:       fiber.StatusNotFound,
	errx.T_Conflict:       fiber.StatusConflict,
	errx.T_Throttling:     fiber.StatusTooManyRequests,
}

// errorBody is the JSON written for every failed request.
type errorBody struct {
	TraceID string      `json:"trace_id"`
	Error   errorSchema `json:"error"`
}

type errorSchema struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Cause   string            `json:"cause,omitempty"`
	Trace   string            `json:"trace,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

// WriteErrorResponse writes err as the standard error body with the status
// derived from its type, and returns err as an errx.ErrorX.
//
// With hideDetails the trace and details are left out, and internal errors
// carry a generic message.
func WriteErrorResponse(c *fiber.Ctx, err error, hideDetails bool) error {
	e := toErrorX(err)

	body := errorBody{
		TraceID: meta.Find(c.UserContext(), meta.TraceID),
		Error: errorSchema{
			Code:    e.Code(),
			Message: e.Error(),
			Cause:   e.Error(),
			Fields:  e.Fields(),
		},
	}
	switch {
	case !hideDetails:
		body.Error.Trace = e.Trace()
		body.Error.Details = e.Details()
	case e.Type() == errx.T_Internal:
		body.Error.Message = internalErrorMessage
		body.Error.Cause = ""
	}

	_ = c.Status(statusOf(e.Type())).JSON(body)
	return e
}

// customErrorHandler is the fiber fallback for errors no middleware has
// written yet, such as panics caught by the recovery middleware.
func customErrorHandler(hideDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}
		_ = WriteErrorResponse(c, err, hideDetails)
		return nil
	}
}

func statusOf(t errx.Type) int {
	if s, ok := statusByType[t]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// toErrorX converts err to an errx.ErrorX. A *fiber.Error keeps its status
// class through the matching error type.
func toErrorX(err error) errx.ErrorX {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return errx.AsErrorX(err)
	}

	t := errx.T_Internal
	switch {
	case fe.Code == fiber.StatusNotFound:
		t = errx.T_NotFound
	case fe.Code == fiber.StatusTooManyRequests:
		t = errx.T_Throttling
	case fe.Code >= fiber.StatusBadRequest && fe.Code < fiber.StatusInternalServerError:
		t = errx.T_Validation
	}

	return errx.AsErrorX(errx.New(
		fe.Message,
		errx.WithCode(codeRouterError),
		errx.WithType(t),
		errx.WithDetails(errx.D{"status": fe.Code}),
	))
}
