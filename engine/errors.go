package engine

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeMissingProperty  = "MISSING_PROPERTY"
	CodeNoMatchingBlock  = "NO_MATCHING_BLOCK"
	CodeMisalignedSeries = "MISALIGNED_SERIES"
	CodeConfiguration    = "CONFIGURATION_ERROR"
)

// Sentinels for errors.Is. The concrete error types below match them.
var (
	ErrMissingProperty  = errors.New("missing property")
	ErrNoMatchingBlock  = errors.New("no matching block")
	ErrMisalignedSeries = errors.New("misaligned series")
	ErrConfiguration    = errors.New("configuration error")

	// ErrLabelCollision means two cells of one call synthesized the same label.
	ErrLabelCollision = errors.New("column label collision")
)

// MissingPropertyError is returned when a property column is absent from a run's table.
type MissingPropertyError struct {
	Run      Run
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s: property %q not found in run %s", CodeMissingProperty, e.Property, e.Run)
}

func (e *MissingPropertyError) Is(target error) bool { return target == ErrMissingProperty }

// Code returns the machine-readable error code.
func (e *MissingPropertyError) Code() string { return CodeMissingProperty }

// NoMatchingBlockError is returned when a key addresses zero blocks. It is
// distinct from an empty series produced by slicing.
type NoMatchingBlockError struct {
	Run    Run
	Key    SpatialKey
	Detail string
}

func (e *NoMatchingBlockError) Error() string {
	msg := fmt.Sprintf("%s: %s addresses no block in run %s", CodeNoMatchingBlock, e.Key, e.Run)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *NoMatchingBlockError) Is(target error) bool { return target == ErrNoMatchingBlock }

// Code returns the machine-readable error code.
func (e *NoMatchingBlockError) Code() string { return CodeNoMatchingBlock }

// MisalignedSeriesError reports paired series of different lengths. It is
// always a defect in the reader or the caller.
type MisalignedSeriesError struct {
	XLen int
	YLen int
}

func (e *MisalignedSeriesError) Error() string {
	return fmt.Sprintf("%s: x has %d values, y has %d", CodeMisalignedSeries, e.XLen, e.YLen)
}

func (e *MisalignedSeriesError) Is(target error) bool { return target == ErrMisalignedSeries }

// Code returns the machine-readable error code.
func (e *MisalignedSeriesError) Code() string { return CodeMisalignedSeries }

// ConfigurationError reports an invalid request or option set.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", CodeConfiguration, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", CodeConfiguration, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Unwrap returns the underlying error
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *ConfigurationError) Code() string { return CodeConfiguration }

// NewConfigurationError wraps err as a ConfigurationError.
func NewConfigurationError(reason string, err error) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Err: err}
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
