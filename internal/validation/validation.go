// Package validation holds the shared request validator.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lsjscarlett/store-locator/pkg/hours"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Validator returns the process-wide validator with the store-specific
// tags registered:
//
//	hours     "HH:MM-HH:MM" or "closed"
//	timezone  an IANA zone name time.LoadLocation accepts
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("hours", func(fl validator.FieldLevel) bool {
			return hours.ValidRange(fl.Field().String())
		})
		_ = v.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
			_, err := time.LoadLocation(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Struct validates s.
func Struct(s any) error {
	return Validator().Struct(s)
}

// Details flattens a validation error into field -> failed rule. It returns
// nil for errors that are not validation errors.
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[field] = rule
	}
	return out
}
