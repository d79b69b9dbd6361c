// validate.go checks a loaded configuration before it is compiled into a
// grammar.
//
// Field-level rules (required values, distinct keywords, compilable
// patterns) are expressed as go-playground/validator struct tags. The
// capture group check needs the compiled patterns and is delegated to
// directive.CompileGrammar.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmr-tortoise/checkin-directives/internal/directive"
)

// ValidationError represents a specific validation failure in a
// configuration file.
type ValidationError struct {
	// Field is the dotted path of the offending field (e.g., "workItem.pattern").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

var validate = newValidator()

// newValidator builds the validator shared by all Validate calls.
// Field names are reported with their YAML keys so messages match what
// the user wrote.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// "regexp" accepts any pattern the regexp package can compile.
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})

	return v
}

// Validate checks cfg and returns every problem found. An empty result
// means the configuration can be compiled into a grammar.
func Validate(cfg *Config) []ValidationError {
	var result []ValidationError

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []ValidationError{{Field: "config", Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			result = append(result, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: describeFieldError(fe),
			})
		}
		return result
	}

	// Field rules passed, so the patterns compile. What is left to check
	// is that they expose the capture groups the scanner needs.
	if _, err := directive.CompileGrammar(cfg.GrammarSpec()); err != nil {
		result = append(result, ValidationError{Field: "grammar", Message: err.Error()})
	}

	return result
}

// describeFieldError turns a validator tag failure into a sentence.
func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "nefield":
		return fmt.Sprintf("must differ from %s", fe.Param())
	case "regexp":
		return fmt.Sprintf("%q is not a valid regular expression", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// joinValidationErrors combines validation errors into one error value.
func joinValidationErrors(errs []ValidationError) error {
	joined := make([]error, 0, len(errs))
	for i := range errs {
		joined = append(joined, &errs[i])
	}
	return errors.Join(joined...)
}
