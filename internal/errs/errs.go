// Package errs defines the typed error taxonomy shared across the engine
// (spec §4.10 / §7): errors that must surface to the caller are sentinel
// values usable with errors.Is; everything recoverable is logged and
// swallowed at its origin.
package errs

import "errors"

var (
	// ErrRequestTooLarge is returned by the validator when a request
	// exceeds a length or station-count gate.
	ErrRequestTooLarge = errors.New("request too large")

	// ErrUnknownProvider is returned when a caller names a provider id
	// that is not in the registry.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrIncompatibleMerge is returned when merge() is asked to combine
	// TimeSeries of different granularities.
	ErrIncompatibleMerge = errors.New("incompatible granularities in merge")

	// ErrEmptyMerge is returned when merge() is called with no inputs.
	ErrEmptyMerge = errors.New("merge requires at least one time series")

	// ErrUnknownConfigKey names an unknown configuration key. No function
	// in this module returns it: Config.LoadEnv logs and skips MS_<KEY>
	// variables that match no config property.
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)
