package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/JobsonDeveloper/Product-Microservice/internal/service"
	"github.com/go-playground/validator/v10"
)

const validationFailed = "Validation failed"

// fieldLabels holds the human readable names used in validation messages.
var fieldLabels = map[string]string{
	"name":              "name",
	"barCode":           "bar code",
	"brand":             "brand",
	"weight":            "weight",
	"quantity":          "quantity",
	"value":             "product value",
	"classification":    "classification",
	"description":       "description",
	"manufacturing":     "manufacturing date",
	"expiration":        "expiration date",
	"quantityPurchased": "quantity purchased",
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is written when a request body breaks a validation rule.
type ValidationErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors"`
}

// newValidator registers the json field names, the Date type and the date rules.
// today returns the reference day for the future and notfuture rules.
func newValidator(today func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(service.Date); ok {
			return d.Time
		}
		return nil
	}, service.Date{})

	_ = v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && service.NewDate(t).After(service.NewDate(today()).Time)
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !service.NewDate(t).After(service.NewDate(today()).Time)
	})
	return v
}

// toFieldErrors converts validator errors into the response shape.
func toFieldErrors(err error) ([]FieldError, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return fields, true
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	if fe.Tag() == "required" {
		return fmt.Sprintf("The %s is required!", label)
	}
	return fmt.Sprintf("The %s must be valid!", label)
}
