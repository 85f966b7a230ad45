package log

import (
	"fmt"
	"time"
)

// Info logs data at the info level for a sublogger
func Info(sl *SubLogger, data string) {
	stage(sl, InfoHeader, data)
}

// Infoln logs its operands at the info level for a sublogger
func Infoln(sl *SubLogger, v ...interface{}) {
	stage(sl, InfoHeader, fmt.Sprint(v...))
}

// Infof logs formatted data at the info level for a sublogger
func Infof(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, InfoHeader, fmt.Sprintf(data, v...))
}

// Debug logs data at the debug level for a sublogger
func Debug(sl *SubLogger, data string) {
	stage(sl, DebugHeader, data)
}

// Debugln logs its operands at the debug level for a sublogger
func Debugln(sl *SubLogger, v ...interface{}) {
	stage(sl, DebugHeader, fmt.Sprint(v...))
}

// Debugf logs formatted data at the debug level for a sublogger
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, DebugHeader, fmt.Sprintf(data, v...))
}

// Warn logs data at the warn level for a sublogger
func Warn(sl *SubLogger, data string) {
	stage(sl, WarnHeader, data)
}

// Warnln logs its operands at the warn level for a sublogger
func Warnln(sl *SubLogger, v ...interface{}) {
	stage(sl, WarnHeader, fmt.Sprint(v...))
}

// Warnf logs formatted data at the warn level for a sublogger
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, WarnHeader, fmt.Sprintf(data, v...))
}

// Error logs data at the error level for a sublogger
func Error(sl *SubLogger, data string) {
	stage(sl, ErrorHeader, data)
}

// Errorln logs its operands at the error level for a sublogger
func Errorln(sl *SubLogger, v ...interface{}) {
	stage(sl, ErrorHeader, fmt.Sprint(v...))
}

// Errorf logs formatted data at the error level for a sublogger
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, ErrorHeader, fmt.Sprintf(data, v...))
}

func (sl *SubLogger) enabled(header string) bool {
	switch header {
	case InfoHeader:
		return sl.levels.Info
	case WarnHeader:
		return sl.levels.Warn
	case DebugHeader:
		return sl.levels.Debug
	case ErrorHeader:
		return sl.levels.Error
	}
	return false
}

func stage(sl *SubLogger, header, data string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	if !sl.enabled(header) || sl.output == nil {
		return
	}
	fmt.Fprintf(sl.output, "%s%s%s%s%s%s%s\n",
		time.Now().Format(timestampFormat), spacer,
		sl.name, spacer,
		header, spacer,
		data)
}
