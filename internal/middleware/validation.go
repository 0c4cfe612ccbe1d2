package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"items-api/internal/apperror"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds the size of a request body
const MaxBodyBytes = 1 << 20

// Validator instance
var validate *validator.Validate

// itemIDPattern accepts RFC 4122 UUIDs of versions 1 through 5
var itemIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateRequest validates a decoded payload against its struct tags
func ValidateRequest(v any) error {
	if err := validate.Struct(v); err != nil {
		if fields := FormatValidationErrors(err); len(fields) > 0 {
			return apperror.Validation(validationMessage(fields), fields)
		}
		return err
	}
	return nil
}

// ParseBody reads the request body and checks that it holds a JSON document
func ParseBody(r *http.Request) (json.RawMessage, error) {
	if r.Body == nil {
		return nil, apperror.New(apperror.MalformedBody, "Request body is required")
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, apperror.Wrap(apperror.MalformedBody, "Invalid JSON in request body", err)
	}
	if len(raw) > MaxBodyBytes {
		return nil, apperror.New(apperror.MalformedBody, "Request body is too large")
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apperror.New(apperror.MalformedBody, "Request body is required")
	}
	if !json.Valid(raw) {
		return nil, apperror.New(apperror.MalformedBody, "Invalid JSON in request body")
	}

	return json.RawMessage(raw), nil
}

// DecodeAndValidate decodes a parsed body into v and validates it. JSON
// type mismatches are reported as schema violations on the offending field.
func DecodeAndValidate(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			fields := []apperror.FieldError{{
				Field:   field,
				Message: "Value must be of type " + jsonTypeName(typeErr.Type),
			}}
			return apperror.Validation(validationMessage(fields), fields)
		}
		return apperror.Wrap(apperror.MalformedBody, "Invalid JSON in request body", err)
	}
	return ValidateRequest(v)
}

// ValidateID checks that raw is a well formed item identifier and returns
// it in lowercase
func ValidateID(raw string) (string, error) {
	if raw == "" {
		return "", apperror.New(apperror.MissingID, "Item ID is required")
	}
	if !itemIDPattern.MatchString(raw) {
		return "", apperror.New(apperror.InvalidIDFormat, "Invalid item ID format")
	}
	return strings.ToLower(raw), nil
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []apperror.FieldError {
	var errs []apperror.FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, apperror.FieldError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errs
}

func validationMessage(fields []apperror.FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "oneof":
		return "Value must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	default:
		return "Invalid value"
	}
}
