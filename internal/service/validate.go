package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"bolsas/internal/model"
)

var (
	cpfPattern   = regexp.MustCompile(`^\d{11}$`)
	phonePattern = regexp.MustCompile(`^\(\d{2}\) \d{4,5}-\d{4}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}-\d{3}$`)
)

var fieldMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"cpf":      "must have exactly 11 digits",
	"phone":    "must look like (99) 99999-9999",
	"zip":      "must look like 99999-999",
	"min":      "is too short",
	"oneof":    "is not an accepted value",
	"notblank": "is required",

	"questionid": "must look like Q1, Q2, ...",
	"subtype":    "unknown subtype",
	"finite":     "must be a finite number",
	"gtfield":    "must be after enrollmentStart",
	"gtefield":   "must not be below its lower bound",
}

// paramMessages take the tag parameter
var paramMessages = map[string]string{
	"gte": "must be at least %s",
	"lte": "must be at most %s",
}

// definitions is shared by package-level validation of announcement definitions
var definitions = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("cpf", matches(cpfPattern))
	_ = v.RegisterValidation("phone", matches(phonePattern))
	_ = v.RegisterValidation("zip", matches(zipPattern))
	_ = v.RegisterValidation("questionid", matches(questionIDPattern))
	_ = v.RegisterValidation("subtype", func(fl validator.FieldLevel) bool {
		return model.Subtype(fl.Field().String()).IsKnown()
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// validateStruct runs v over s and converts field errors into a *ValidationError
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.add(fieldPath(fe.Namespace()), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	if format, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg
	}
	return "is invalid"
}

// fieldPath drops the struct name: "RegisterUserInput.address.zip" -> "address.zip"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
