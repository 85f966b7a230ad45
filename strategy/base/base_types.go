package base

import "errors"

var (
	// ErrInvalidParams is returned when a strategy cannot apply a supplied
	// parameter set
	ErrInvalidParams = errors.New("invalid strategy parameters")
	// ErrNilCandle is returned when a decision call receives no candle
	ErrNilCandle = errors.New("received nil candle")
)
