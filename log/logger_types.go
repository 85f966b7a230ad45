package log

import (
	"io"
	"os"
	"sync"
)

const (
	timestampFormat = "02/01/2006 15:04:05"
	spacer          = " | "

	// InfoHeader is the tag prefixed to informational messages
	InfoHeader = "[INFO]"
	// WarnHeader is the tag prefixed to warning messages
	WarnHeader = "[WARN]"
	// DebugHeader is the tag prefixed to debug messages
	DebugHeader = "[DEBUG]"
	// ErrorHeader is the tag prefixed to error messages
	ErrorHeader = "[ERROR]"
)

// Levels flags each logging level a sublogger will emit
type Levels struct {
	Info  bool
	Warn  bool
	Debug bool
	Error bool
}

// SubLogger defines a logging identity for one subsystem so output can be
// filtered and attributed per concern
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

var (
	mu         sync.RWMutex
	subLoggers = map[string]*SubLogger{}

	defaultOutput io.Writer = os.Stdout
	defaultLevels           = Levels{Info: true, Warn: true, Error: true}
)
