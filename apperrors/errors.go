package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error represents an application error
type Error struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind (same code).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Kinds used with errors.Is. Never mutate these.
var (
	ErrNotFound     = New(http.StatusNotFound, "Not found", nil)
	ErrValidation   = New(http.StatusBadRequest, "Validation failed", nil)
	ErrConflict     = New(http.StatusConflict, "Conflict", nil)
	ErrInvalidState = New(http.StatusInternalServerError, "Invalid state", nil)
)

func NotFound(resource string) *Error {
	return New(http.StatusNotFound, resource+" not found", nil)
}

// Validation builds a 400 error carrying field -> message pairs.
func Validation(fields map[string]string) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Fields:  fields,
	}
}

func Field(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// InvalidState marks a broken aggregate contract. Callers should log and escalate it.
func InvalidState(message string) *Error {
	return New(http.StatusInternalServerError, message, nil)
}

// Wrap attaches a cause to a fresh copy of kind.
func Wrap(kind *Error, message string, err error) *Error {
	return New(kind.Code, message, err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromValidator converts go-playground validation errors into a Validation error.
// Any other error is returned unchanged.
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, exists := fields[name]; exists {
			continue
		}
		fields[name] = message(fe)
	}
	return Validation(fields)
}

func message(fe validator.FieldError) string {
	label := capitalize(fe.Field())
	isText := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice

	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "email":
		return label + " is not valid"
	case "uuid", "uuid4":
		return label + " must be a valid UUID"
	case "min", "gte":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", label, fe.Param())
	}
	return label + " is invalid"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
