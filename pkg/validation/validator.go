package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var initOnce sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	initOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
			v.RegisterAlias("pwd", "min=8")
			v.RegisterAlias("pct", "gte=0,lte=100")
		}
	})
}

// Normalizer is implemented by request structs that trim or lower-case fields
// before validation runs.
type Normalizer interface {
	Normalize()
}

// Messages maps "field.tag" (or just "field" for any tag) to the client message.
type Messages map[string]string

// Bind decodes the JSON body into obj, normalizes it and validates it.
// An empty body is validated as "{}" so missing fields report their own rule.
func Bind(c *gin.Context, obj any) error {
	Init()
	if c.Request.Body != nil {
		dec := json.NewDecoder(c.Request.Body)
		if err := dec.Decode(obj); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	if n, ok := obj.(Normalizer); ok {
		n.Normalize()
	}
	return binding.Validator.ValidateStruct(obj)
}

// Var validates a single value (e.g. a path parameter) against tag.
func Var(value any, tag string) error {
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.Var(value, tag)
}

// Message returns the message of the first failing rule in err.
// overrides take precedence over the shared defaults.
func Message(err error, overrides Messages) string {
	if err == nil {
		return ""
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return "Request body too large"
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return typeMessage(ute)
	}
	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "Invalid JSON payload"
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		for _, key := range []string{fe.Field() + "." + fe.Tag(), fe.Field()} {
			if m, ok := overrides[key]; ok {
				return m
			}
			if m, ok := defaults[key]; ok {
				return m
			}
		}
		return label(fe.Field()) + " " + formatFieldError(fe)
	}

	return "Invalid payload"
}

var defaults = Messages{
	"name.required":            "Name is required",
	"name.max":                 "Name must be less than 50 characters",
	"email.required":           "Email is required",
	"email.email":              "Please provide a valid email",
	"password.required":        "Password is required",
	"password.pwd":             "Password must be at least 8 characters long",
	"currentPassword.required": "Current password is required",
	"newPassword.required":     "New password is required",
	"newPassword.pwd":          "New password must be at least 8 characters long",
	"duration.required":        "Duration is required",
	"timestamp.gte":            "Timestamp must be a valid date",
	"timestamp.lte":            "Timestamp must be a valid date",
	"riskLevel.required":       "Risk level is required",
	"percentage.required":      "Percentage is required",
	"percentage.pct":           "Percentage must be between 0 and 100",
}

var labels = map[string]string{
	"duration":   "Duration",
	"timestamp":  "Timestamp",
	"percentage": "Percentage",
	"score":      "Score",
	"sleep":      "Sleep hours",
	"exercise":   "Exercise minutes",
	"water":      "Water intake",
	"stress":     "Stress level",
	"smoking":    "Smoking status",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func typeMessage(ute *json.UnmarshalTypeError) string {
	field := ute.Field
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if ute.Type != nil {
		switch ute.Type.Kind() {
		case reflect.Bool:
			return label(field) + " must be boolean"
		case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64:
			return label(field) + " must be a number"
		case reflect.Slice:
			return label(field) + " must be a list"
		}
	}
	return label(field) + " has an invalid type"
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid identifier"
	case "pwd":
		return "must be at least 8 characters long"
	case "pct":
		return "must be between 0 and 100"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("failed '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
