package service

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

// NewValidator returns a validator that reports field names from json tags so
// violations reference the wire-level field the caller actually sent.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// violations converts a validator failure into the ordered field violation list.
func violations(err error) *appErrors.Error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	out := make([]appErrors.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, appErrors.FieldViolation{Field: fe.Field(), Message: violationMessage(fe)})
	}
	return appErrors.Violations(out)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", humanize(fe.Field()))
	case "email":
		return "Please include a valid email"
	default:
		return fmt.Sprintf("%s is invalid", humanize(fe.Field()))
	}
}

// humanize turns a camelCase field name into sentence form, e.g.
// "admissionNumber" becomes "Admission number".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
