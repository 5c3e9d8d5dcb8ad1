package dto

import (
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/pod-grading-api/internal/roster"
)

// NewValidator returns a validator with the custom rules used by the request DTOs.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("halfstep", validateHalfStep)
	_ = validate.RegisterValidation("podrole", validatePodRole)
	return validate
}

// halfstep accepts numbers that are whole multiples of 0.5.
func validateHalfStep(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		doubled := field.Float() * 2
		return doubled == math.Trunc(doubled)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func validatePodRole(fl validator.FieldLevel) bool {
	return roster.IsRole(fl.Field().String())
}
