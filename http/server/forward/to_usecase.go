// Package forward adapts service methods to Fiber handlers.
package forward

import (
	"context"
	"fmt"
	"reflect"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filedepot/mask"
	"github.com/rise-and-shine/filedepot/observability/logger"
	"github.com/rise-and-shine/filedepot/val"
)

const maxLogAllowedSize = 8 << 10 // 8KB

// UseCase is a service method that takes a request and returns a response.
type UseCase[I, O any] func(context.Context, I) (O, error)

// ToUseCase forwards a request to a use case and writes its result as JSON.
// The body, query and route params are decoded into I, which must be a
// pointer to a struct, and validated before the use case runs.
func ToUseCase[I, O any](uc UseCase[I, O]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := newRequest[I]()
		if err != nil {
			return errx.Wrap(err)
		}

		if err = decodeBody(c, req); err != nil {
			return errx.Wrap(err)
		}
		if err = decodeQuery(c, req); err != nil {
			return errx.Wrap(err)
		}
		if err = decodePath(c, req); err != nil {
			return errx.Wrap(err)
		}

		log := logger.
			Named("http.forward").
			WithContext(c.UserContext()).
			With("route", c.Route().Path)

		if len(c.Body()) <= maxLogAllowedSize {
			log = log.With("request_body", mask.StructToOrdMap(req))
		} else {
			log = log.With("request_body", fmt.Sprintf("too large for logging: %d bytes", len(c.Body())))
		}

		if err = val.ValidateSchema(req); err != nil {
			return errx.Wrap(err)
		}

		resp, err := uc(c.UserContext(), req)
		if err != nil {
			return errx.Wrap(err)
		}

		size, err := writeJSON(c, resp)
		if err != nil {
			return errx.Wrap(err)
		}

		if size <= maxLogAllowedSize {
			log = log.With("response_body", mask.StructToOrdMap(resp))
		} else {
			log = log.With("response_body", fmt.Sprintf("too large for logging: %d bytes", size))
		}

		log.Debug("use case executed")
		return nil
	}
}

// newRequest allocates a new I, which must be a pointer to a struct.
func newRequest[I any]() (I, error) {
	var req I

	reqType := reflect.TypeOf((*I)(nil)).Elem()
	if reqType.Kind() != reflect.Pointer || reqType.Elem().Kind() != reflect.Struct {
		return req, errx.New("input type I must be a pointer to a struct")
	}

	return reflect.New(reqType.Elem()).Interface().(I), nil //nolint:errcheck // safe type assertion
}

func writeJSON(c *fiber.Ctx, data any) (int, error) {
	raw, err := c.App().Config().JSONEncoder(data)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	c.Response().SetBodyRaw(raw)
	c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
	return len(raw), nil
}
