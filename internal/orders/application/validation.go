package application

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/pkg/errors"
)

// PhoneRegex matches the 10–11 digit phone numbers accepted at checkout
var PhoneRegex = regexp.MustCompile(`^[0-9]{10,11}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return PhoneRegex.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs struct validation and converts failures into a
// VALIDATION_ERROR with one FieldError per invalid field
func (uc *OrderUseCase) validateStruct(input interface{}) error {
	err := uc.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewValidation("invalid request", err.Error())
	}

	details := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, errors.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return errors.NewValidation("Validation failed", details)
}

// fieldPath drops the top-level struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s item(s)", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "phone":
		return "invalid phone number"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
