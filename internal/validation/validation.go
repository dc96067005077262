// Package validation checks developer form input before it is sent to the
// backend. The same rules run again on the server.
//
// Struct fields opt in with validate tags:
//
//	Name    string `validate:"required"`
//	Age     int    `validate:"min=18,max=100"`
//	EndDate string `validate:"future"`
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// now is a test seam for the "future" rule.
var now = time.Now

// DateLayouts are the accepted end-date formats, tried in order.
var DateLayouts = []string{"2006-01-02", time.RFC3339}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("future", isFuture)
		validate = v
	})
	return validate
}

// ParseDate parses s using DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func isFuture(fl validator.FieldLevel) bool {
	t, err := ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return t.After(now())
}

// Error lists every failed rule as a human readable message.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Struct validates v and returns *Error when any rule fails.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Problems: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Problems = append(out.Problems, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max":
		if field == "age" {
			return "age must be between 18 and 100"
		}
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "future":
		return field + " must be a date in the future"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
