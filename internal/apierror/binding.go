package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FromBindingError turns a gin ShouldBind* error into a problem. Validator
// failures become one FieldError per field; anything else (bad JSON, wrong
// types) is a plain bad request.
func FromBindingError(requestID string, err error) *ProblemDetails {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fieldErrorFrom(fe))
		}
		return NewValidationError(requestID, fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return NewValidationError(requestID, []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type.String()),
			Code:    "invalid_type",
		}})
	}

	return NewBadRequestError(requestID, err.Error(), "Invalid JSON format")
}

func fieldErrorFrom(fe validator.FieldError) FieldError {
	field := SnakeCase(fe.Field())

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "oneof":
		msg = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid", "uuid4", "uuid7":
		msg = "must be a valid UUID"
	case "gte", "min":
		msg = "must be at least " + fe.Param()
	case "lte":
		msg = "must be at most " + fe.Param()
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		msg = "is invalid"
	}

	return FieldError{Field: field, Message: msg, Code: fe.Tag()}
}

// SnakeCase converts a Go field name to its JSON spelling: StartedAt ->
// started_at, AmountML -> amount_ml, ID -> id.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startsWord := i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])))
			if startsWord {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
