package chart

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid option, or a disallowed
// combination, detected before anything is emitted.
type ConfigurationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field == "" {
		return "chart configuration: " + msg
	}
	return fmt.Sprintf("chart configuration: %s: %s", e.Field, msg)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConversionError reports a figure that could not become a chart document.
type ConversionError struct{ Err error }

func (e *ConversionError) Error() string { return "chart conversion: " + e.Err.Error() }
func (e *ConversionError) Unwrap() error { return e.Err }

// PublishError wraps a failure from the chart-hosting service.  The cause
// is kept unmodified.
type PublishError struct{ Err error }

func (e *PublishError) Error() string { return "chart publish: " + e.Err.Error() }
func (e *PublishError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsConversionError reports whether err is (or wraps) a ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}

// IsPublishError reports whether err is (or wraps) a PublishError.
func IsPublishError(err error) bool {
	var pe *PublishError
	return errors.As(err, &pe)
}
