package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ConfigError represents a validation error for a specific field.
type ConfigError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of config errors.
type ValidationErrors []ConfigError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateWithDetails performs struct validation plus cross-field checks and
// returns detailed errors.
func ValidateWithDetails(cfg *Config) error {
	var details ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range validationErrors {
				details = append(details, ConfigError{
					Field:   fe.Namespace(),
					Message: formatValidationError(fe),
					Value:   fe.Value(),
				})
			}
		} else {
			return err
		}
	}

	if cfg.Voice.ReflectionCooldown <= 0 {
		details = append(details, ConfigError{
			Field:   "Config.Voice.ReflectionCooldown",
			Message: "must be a positive duration",
			Value:   cfg.Voice.ReflectionCooldown,
		})
	}
	if cfg.Voice.ContinuityCooldown <= 0 {
		details = append(details, ConfigError{
			Field:   "Config.Voice.ContinuityCooldown",
			Message: "must be a positive duration",
			Value:   cfg.Voice.ContinuityCooldown,
		})
	}
	if cfg.Model.Timeout <= 0 {
		details = append(details, ConfigError{
			Field:   "Config.Model.Timeout",
			Message: "must be a positive duration",
			Value:   cfg.Model.Timeout,
		})
	}
	if cfg.Storage.Type == "badger" && cfg.Storage.Badger.Path == "" {
		details = append(details, ConfigError{
			Field:   "Config.Storage.Badger.Path",
			Message: "path is required for badger storage",
			Value:   cfg.Storage.Badger.Path,
		})
	}
	if cfg.Voice.CooldownBackend == "redis" && cfg.Storage.Redis.Address == "" {
		details = append(details, ConfigError{
			Field:   "Config.Storage.Redis.Address",
			Message: "address is required for the redis cooldown backend",
			Value:   cfg.Storage.Redis.Address,
		})
	}

	if len(details) > 0 {
		return details
	}
	return nil
}

// formatValidationError converts validator.FieldError to a readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
