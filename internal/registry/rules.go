package registry

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var compensationModes = map[string]struct{}{
	"hourly": {},
	"daily":  {},
	"fixed":  {},
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		n, ok := numeric(fl.Field())
		return ok && n > 0
	})
	v.RegisterValidation("years", func(fl validator.FieldLevel) bool {
		n, ok := numeric(fl.Field())
		return ok && n >= 0 && n <= 60
	})
	v.RegisterValidation("compensation_mode", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		_, ok := compensationModes[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
		return ok
	})
	return v
}

// numeric accepts JSON numbers and numeric strings ("75000", "3.5").
func numeric(field reflect.Value) (float64, bool) {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(field.Uint()), true
	case reflect.Float32, reflect.Float64:
		return field.Float(), true
	case reflect.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(field.String()), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
