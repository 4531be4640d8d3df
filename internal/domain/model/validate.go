package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per type.
var validate = newValidator() //nolint:gochecknoglobals // validator instances are meant to be reused

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report model column names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "weather", oneOf(Weathers))
	mustRegister(v, "traffic", oneOf(Traffics))
	mustRegister(v, "vehicle", oneOf(Vehicles))
	mustRegister(v, "area", oneOf(Areas))
	mustRegister(v, "category", oneOf(Categories))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func oneOf[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if string(a) == s {
				return true
			}
		}
		return false
	}
}

// Validate checks that every field lies inside the domain the form enforces.
// The first violation is returned as *MissingFieldError for blank enums and
// *InvalidFieldError otherwise.
func Validate(rec RawOrderRecord) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate order: %w", err)
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return &MissingFieldError{Field: fe.Field()}
	}
	return &InvalidFieldError{
		Field:  fe.Field(),
		Value:  fmt.Sprint(fe.Value()),
		Reason: reason(fe),
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "not one of the accepted " + strings.ToLower(fe.Field()) + " values"
	}
}
