// Package val validates request structs with go-playground/validator and
// reports failures as errx validation errors.
package val

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var getValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(getTagName)
	registerCustomValidations(v)
	return v
})

// getTagName returns the name of a struct field based on its struct tags.
// It checks 'json', 'form', 'query' and 'params' tags in that order, and falls
// back to the field name.
func getTagName(fld reflect.StructField) string {
	for _, tagName := range []string{"json", "form", "query", "params"} {
		name := strings.SplitN(fld.Tag.Get(tagName), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}
