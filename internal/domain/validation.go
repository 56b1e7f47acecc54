package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return Difficulty(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("recommendation", func(fl validator.FieldLevel) bool {
		return Recommendation(fl.Field().String()).Valid()
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" "+describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "min", "max":
		if fe.Kind() == reflect.String {
			return "is too long"
		}
		return "is out of range"
	default:
		return "has an unknown value"
	}
}
