package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/Mod5ied/eagle-server/infrastructure/errors"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report JSON field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes and validates the request body into v. Failures come
// back as a 400 error with per-field messages, or a 413 for oversized
// bodies.
func bindJSON(c *gin.Context, v any) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}
	return bindingError(err)
}

func bindingError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string][]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
		return apperrors.Validation(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.Validation(map[string][]string{typeErr.Field: {typeMessage(typeErr.Type)}})
	}

	if errors.Is(err, io.EOF) {
		return apperrors.Validation(map[string][]string{"body": {"is required"}})
	}
	return apperrors.Validation(map[string][]string{"body": {"must be valid JSON"}})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	default:
		return "has an invalid type"
	}
}
