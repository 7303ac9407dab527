package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldKeys names struct fields by their config key in error messages.
var fieldKeys = map[string]string{
	"Config.API.BaseURL":       "api.base_url",
	"Config.API.Timeout":       "api.timeout",
	"Config.OutputFormat":      "output",
	"Config.UI.Port":           "ui.port",
	"Config.UI.PasswordHash":   "ui.password_hash",
	"Config.Alert.MentorEmail": "alert.mentor_email",
	"Config.Batch.Mode":        "batch.mode",
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	key, ok := fieldKeys[fe.Namespace()]
	if !ok {
		key = fe.Namespace()
	}
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Errorf("invalid config: %s is required", key)
	case "oneof":
		return fmt.Errorf("invalid config: %s must be one of %s, got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "gt":
		return fmt.Errorf("invalid config: %s must be positive", key)
	default:
		return fmt.Errorf("invalid config: %s is invalid (%s)", key, fe.Tag())
	}
}
