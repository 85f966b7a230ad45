// Package common holds constants and helpers shared across the backtesting
// packages
package common

import (
	"os"
)

// SimpleTimeFormat is the repo-wide human readable time layout
const SimpleTimeFormat = "2006-01-02 15:04:05"

// DataDir is the default directory written to when no override is supplied
const DataDir = "results"

// FileExists reports whether a path exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsEnabled returns a human readable state for config printing
func IsEnabled(isEnabled bool) string {
	if isEnabled {
		return "Enabled"
	}
	return "Disabled"
}
