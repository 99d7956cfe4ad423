// Package mask flattens structs into ordered maps with sensitive fields hidden,
// for logging request payloads and printing loaded configuration.
package mask

import (
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	tagName = "mask"

	// Masked replaces the value of every non-zero field tagged `mask:"true"`.
	Masked = "***masked***"
)

// Map is an insertion-ordered field map.
type Map = orderedmap.OrderedMap[string, any]

// StructToOrdMap flattens v into dotted keys in field order.
// Names come from the json tag, then the yaml tag, then the field name.
// Fields tagged "-" are left out.
func StructToOrdMap(v any) *Map {
	if v == nil {
		return nil
	}
	om := orderedmap.New[string, any]()
	flatten(om, reflect.ValueOf(v), "")
	return om
}

func flatten(om *Map, val reflect.Value, prefix string) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		om.Set(prefix, val.Interface())
		return
	}

	typ := val.Type()
	for i := range val.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		field := val.Field(i)
		switch {
		case strings.EqualFold(sf.Tag.Get(tagName), "true"):
			om.Set(name, hide(field))
		case isStruct(field):
			flatten(om, field, name)
		default:
			om.Set(name, field.Interface())
		}
	}
}

func isStruct(val reflect.Value) bool {
	if val.Kind() == reflect.Pointer {
		return !val.IsNil() && val.Elem().Kind() == reflect.Struct
	}
	return val.Kind() == reflect.Struct
}

// hide keeps zero values visible so an unset secret is still noticeable.
func hide(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // other kinds are checked with IsZero
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		if val.IsNil() {
			return nil
		}
	}
	if val.IsZero() {
		return val.Interface()
	}
	return Masked
}

func fieldName(sf reflect.StructField) (string, bool) {
	for _, tag := range []string{"json", "yaml"} {
		v, ok := sf.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if v == "-" {
			return "", true
		}
		if name, _, _ := strings.Cut(v, ","); name != "" {
			return name, false
		}
	}
	return sf.Name, false
}
