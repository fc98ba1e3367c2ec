// Package validation collects configuration checks that go beyond what
// struct tags can express.
package validation

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ConfigValidator provides a fluent interface for validating configuration
// values. It collects all validation errors rather than failing on the
// first one.
type ConfigValidator struct {
	errors []error
	name   string // config struct name for error messages
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: required field is empty", cv.name, field))
	}
	return cv
}

// Positive validates that an int field is positive (> 0).
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %d must be positive", cv.name, field, value))
	}
	return cv
}

// MinDuration validates that a duration is at least the minimum.
func (cv *ConfigValidator) MinDuration(field string, value, min time.Duration) *ConfigValidator {
	if value < min {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: duration %v is below minimum %v", cv.name, field, value, min))
	}
	return cv
}

// FileExists validates that a path names an existing regular file. Empty
// values are skipped; combine with Required when the field is mandatory.
func (cv *ConfigValidator) FileExists(field, path string) *ConfigValidator {
	if path == "" {
		return cv
	}
	info, err := os.Stat(path)
	if err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %v", cv.name, field, err))
		return cv
	}
	if info.IsDir() {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s is a directory, not a file", cv.name, field, path))
	}
	return cv
}

// DirExists validates that a path names an existing directory.
func (cv *ConfigValidator) DirExists(field, path string) *ConfigValidator {
	if path == "" {
		return cv
	}
	info, err := os.Stat(path)
	if err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %v", cv.name, field, err))
		return cv
	}
	if !info.IsDir() {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s is not a directory", cv.name, field, path))
	}
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// Err returns all collected errors joined, or nil when validation passed.
func (cv *ConfigValidator) Err() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}
