package log

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Subsystem subloggers registered at package init
var (
	Global    *SubLogger
	BackTest  *SubLogger
	Data      *SubLogger
	Strategy  *SubLogger
	Sweep     *SubLogger
	Report    *SubLogger
	ConfigMgr *SubLogger
)

var errSubLoggerAlreadyRegistered = errors.New("sub logger already registered")

// RegisterSubLogger registers a new sublogger under a unique name with the
// default levels and output
func RegisterSubLogger(name string) (*SubLogger, error) {
	mu.Lock()
	defer mu.Unlock()
	name = strings.ToUpper(name)
	if _, ok := subLoggers[name]; ok {
		return nil, fmt.Errorf("%w: %v", errSubLoggerAlreadyRegistered, name)
	}
	sl := &SubLogger{
		name:   name,
		levels: defaultLevels,
		output: defaultOutput,
	}
	subLoggers[name] = sl
	return sl, nil
}

func mustRegisterSubLogger(name string) *SubLogger {
	sl, err := RegisterSubLogger(name)
	if err != nil {
		panic(err)
	}
	return sl
}

// SetLevels alters which levels a sublogger emits, from a pipe-delimited
// level string eg "INFO|WARN|ERROR"
func SetLevels(sl *SubLogger, levels string) {
	if sl == nil {
		return
	}
	mu.Lock()
	sl.levels = splitLevel(levels)
	mu.Unlock()
}

// SetOutput redirects a single sublogger's output
func SetOutput(sl *SubLogger, w io.Writer) {
	if sl == nil || w == nil {
		return
	}
	mu.Lock()
	sl.output = w
	mu.Unlock()
}

// SetGlobalOutput redirects every registered sublogger along with any
// registered afterwards
func SetGlobalOutput(w io.Writer) {
	if w == nil {
		return
	}
	mu.Lock()
	defaultOutput = w
	for _, sl := range subLoggers {
		sl.output = w
	}
	mu.Unlock()
}

// SetGlobalLevels applies a pipe-delimited level string to every registered
// sublogger along with any registered afterwards
func SetGlobalLevels(levels string) {
	mu.Lock()
	defaultLevels = splitLevel(levels)
	for _, sl := range subLoggers {
		sl.levels = defaultLevels
	}
	mu.Unlock()
}

func splitLevel(level string) (l Levels) {
	for _, enabled := range strings.Split(strings.ToUpper(level), "|") {
		switch enabled {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return l
}

func init() {
	Global = mustRegisterSubLogger("LOG")
	BackTest = mustRegisterSubLogger("BACKTEST")
	Data = mustRegisterSubLogger("DATA")
	Strategy = mustRegisterSubLogger("STRATEGY")
	Sweep = mustRegisterSubLogger("SWEEP")
	Report = mustRegisterSubLogger("REPORT")
	ConfigMgr = mustRegisterSubLogger("CONFIG")
}
