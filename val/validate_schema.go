package val

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
)

// CodeValidationFailed is the code of every error returned by ValidateSchema.
const CodeValidationFailed = "VALIDATION_FAILED"

// ValidateSchema validates schema against its validate tags. Failures are
// reported per field, keyed by the field's wire name.
func ValidateSchema(schema any) error {
	err := getValidator().Struct(schema)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errx.New(
			"Unknown validation error: "+err.Error(),
			errx.WithCode(CodeValidationFailed),
			errx.WithType(errx.T_Validation),
		)
	}

	fields := make(errx.M, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = describe(fe)
	}

	return errx.New(
		"Validation failed. See fields for details.",
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}

// fixed holds descriptions that do not depend on the tag parameter.
var fixed = map[string]string{
	"required":     "This field is required",
	"url":          "Must be a valid URL",
	"uri":          "Must be a valid URI",
	"uuid":         "Must be a valid UUID",
	"alphanum":     "Must contain only alphanumeric characters",
	"numeric":      "Must be a valid number",
	"path_segment": "Must contain only letters, digits, '.', '_' or '-' and start with a letter or digit",
}

// bounds holds descriptions of size tags, with and without a unit.
var bounds = map[string]string{
	"min": "Must be at least %s",
	"max": "Must be at most %s",
	"len": "Must be exactly %s",
	"gte": "Must be greater than or equal to %s",
	"lte": "Must be less than or equal to %s",
	"gt":  "Must be greater than %s",
	"lt":  "Must be less than %s",
}

func describe(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if desc, ok := fixed[tag]; ok {
		return desc
	}

	if format, ok := bounds[tag]; ok {
		desc := fmt.Sprintf(format, param)
		switch {
		case tag == "gte" || tag == "lte" || tag == "gt" || tag == "lt":
		case fe.Kind() == reflect.String:
			desc += " characters"
		case fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map:
			desc += " items"
		}
		return desc
	}

	switch tag {
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "required_unless", "required_if":
		return "This field is required here"
	}

	return "Failed validation: " + tag
}
