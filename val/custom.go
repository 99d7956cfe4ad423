package val

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var pathSegment = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// IsPathSegment reports whether s can be used as one segment of an object key:
// letters, digits, '.', '_' and '-', not starting with a dot or dash.
func IsPathSegment(s string) bool {
	return len(s) <= 255 && pathSegment.MatchString(s)
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("path_segment", func(fl validator.FieldLevel) bool {
		return IsPathSegment(fl.Field().String())
	})
}
