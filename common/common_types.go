package common

import "errors"

// Shared errors raised across multiple packages
var (
	// ErrNilArguments is returned when a required argument is nil
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrDateUnset is returned when a required time value is the zero value
	ErrDateUnset = errors.New("date unset")
	// ErrStartAfterEnd is returned when a date range is inverted or empty
	ErrStartAfterEnd = errors.New("start date equal to or after end date")
)
