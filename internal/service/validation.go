package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldViolation names the first field that failed validation.
type FieldViolation struct {
	Field   string
	Message string
}

// payloadSchema checks ticket payloads against their struct tags. Field names
// come from the json tag and messages from the label tag.
type payloadSchema struct {
	validate *validator.Validate
}

func newPayloadSchema() *payloadSchema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &payloadSchema{validate: v}
}

// Check returns nil when payload is valid, otherwise the first violation in
// field declaration order.
func (s *payloadSchema) Check(payload any) *FieldViolation {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &FieldViolation{Message: err.Error()}
	}
	first := fieldErrs[0]
	label := fieldLabel(payload, first.StructField())
	return &FieldViolation{Field: first.Field(), Message: violationMessage(label, first)}
}

func fieldLabel(payload any, structField string) string {
	t := reflect.TypeOf(payload)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
	}
	return structField
}

func violationMessage(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		return fmt.Sprintf("%s must not be empty", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
