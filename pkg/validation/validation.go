// Package validation holds the form rules shared by gin request binding and
// the submission services, and turns validator errors into the
// {field: message} map the site's forms display inline.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	zipRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

	once     sync.Once
	validate *validator.Validate

	registerOnce sync.Once
	registerErr  error
)

// Digits strips everything but 0-9 from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validPhone(fl validator.FieldLevel) bool {
	n := len(Digits(fl.Field().String()))
	return n >= 10 && n <= 15
}

func validZip(fl validator.FieldLevel) bool {
	return zipRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func configure(v *validator.Validate) {
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("phone", validPhone)
	_ = v.RegisterValidation("zipcode", validZip)
}

// Register installs the custom rules on gin's default validator. It must run
// before the router binds any request; calls after the first are no-ops.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("validation: gin validator engine is not validator/v10")
			return
		}
		configure(v)
	})
	return registerErr
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		configure(validate)
	})
	return validate
}

// Struct validates v with the same rules gin binding uses and returns the
// failing fields, or nil.
func Struct(v any) map[string]string {
	return FieldErrors(instance().Struct(v))
}

// FieldErrors converts a validator error into {jsonField: message}. Errors of
// any other type yield nil.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

// fieldPath drops the top-level struct name: "SubmitFormRequest.formData.email"
// becomes "formData.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "zipcode":
		return "Please enter a valid ZIP code"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}
