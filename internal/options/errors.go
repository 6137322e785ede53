package options

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid test configuration.
// Configuration errors are fatal to the test before anything runs.
type ConfigError struct {
	// Path is the configuration file, if known.
	Path string

	// Field locates the offending value (e.g. "image_comparisons.main.checks[1]").
	Field string

	Message string

	// Cause is the underlying decode or parse error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ComparisonErrorCode categorizes image comparison failures.
type ComparisonErrorCode string

const (
	// ErrCodeSizeMismatch indicates actual and expected dimensions differ.
	ErrCodeSizeMismatch ComparisonErrorCode = "SIZE_MISMATCH"

	// ErrCodeOutliersExceeded indicates a check found more outliers than allowed.
	ErrCodeOutliersExceeded ComparisonErrorCode = "OUTLIERS_EXCEEDED"

	// ErrCodeNoChecksExecuted indicates every check was filtered out.
	ErrCodeNoChecksExecuted ComparisonErrorCode = "NO_CHECKS_EXECUTED"

	// ErrCodeMixedCheckModes indicates both simple and advanced checks are set.
	ErrCodeMixedCheckModes ComparisonErrorCode = "MIXED_CHECK_MODES"

	// ErrCodeFilterFailed indicates a check's filter could not be evaluated.
	ErrCodeFilterFailed ComparisonErrorCode = "FILTER_FAILED"

	// ErrCodeEmptyImage indicates the frames have no pixels.
	ErrCodeEmptyImage ComparisonErrorCode = "EMPTY_IMAGE"

	// ErrCodeMissingCapture indicates no frame was captured for the comparison.
	ErrCodeMissingCapture ComparisonErrorCode = "MISSING_CAPTURE"

	// ErrCodeArtifactFailed indicates a diagnostic image or reference image
	// could not be read or written.
	ErrCodeArtifactFailed ComparisonErrorCode = "ARTIFACT_FAILED"
)

// NoCheck marks a ComparisonError not tied to a single check.
const NoCheck = -1

// ComparisonError reports a failed image comparison.
// The message is self-contained: it names the comparison and check and
// includes the measured values and configured limits.
type ComparisonError struct {
	Code       ComparisonErrorCode
	Comparison string

	// Check is the index of the failing check, or NoCheck.
	Check int

	Message string

	// Details contains the numeric diagnostics (outliers, limits, sizes).
	Details map[string]string

	Cause error
}

// Error implements the error interface.
func (e *ComparisonError) Error() string {
	prefix := fmt.Sprintf("Image '%s'", e.Comparison)
	if e.Check != NoCheck {
		prefix = fmt.Sprintf("Image '%s' check %d", e.Comparison, e.Check)
	}
	msg := fmt.Sprintf("%s failed: %s", prefix, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ComparisonError) Unwrap() error {
	return e.Cause
}

// IsComparisonError returns true if err is a ComparisonError with the given code.
// Uses errors.As to handle wrapped errors.
func IsComparisonError(err error, code ComparisonErrorCode) bool {
	var ce *ComparisonError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
