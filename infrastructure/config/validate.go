package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator is implemented by configs that check themselves.
type Validator interface {
	Validate() error
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs `validate` struct tags on cfg and converts the first
// failure into a ValidationError keyed by the field's env name when it has
// one.
func ValidateStruct(cfg any) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fieldName(fe), Message: describe(fe)}
}

func fieldName(fe validator.FieldError) string {
	return strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt", "gte":
		return "must be greater than " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// ValidatePort checks 1..65535.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateLogLevel checks for a level the logger understands.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateLogFormat checks json or console.
func ValidateLogFormat(format string) error {
	switch format {
	case "json", "console":
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}

// Validate checks LoggingConfig.
func (c *LoggingConfig) Validate() error {
	if err := ValidateLogLevel(c.Level); err != nil {
		return err
	}
	return ValidateLogFormat(c.Format)
}
