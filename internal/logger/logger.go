package logger

import (
	"fmt"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorRed    = "\033[31m"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var GlobalLogLevel = LogLevelInfo

type Log struct {
	level     LogLevel
	component string
	err       error
}

func New() *Log {
	return &Log{level: GlobalLogLevel}
}

func (l *Log) SetLevel(level LogLevel) {
	l.level = level
}

// WithComponent returns a logger that prefixes every line with the component name.
func (l *Log) WithComponent(name string) *Log {
	return &Log{level: l.level, component: name, err: l.err}
}

func (l *Log) WithError(err error) *Log {
	return &Log{level: l.level, component: l.component, err: err}
}

func (l *Log) prefix() string {
	ts := time.Now().Format("15:04:05")
	if l.component != "" {
		return fmt.Sprintf("[%s] [%s]", ts, l.component)
	}
	return fmt.Sprintf("[%s]", ts)
}

func (l *Log) print(color, icon, msg string) {
	if l.err != nil {
		fmt.Printf("%s%s%s %s %s: %v\n", color, l.prefix(), ColorReset, icon, msg, l.err)
		return
	}
	fmt.Printf("%s%s%s %s %s\n", color, l.prefix(), ColorReset, icon, msg)
}

func (l *Log) Debug(msg string) {
	if l.level > LogLevelDebug {
		return
	}
	l.print(ColorCyan, "ℹ️ ", msg)
}

func (l *Log) Info(msg string) {
	if l.level > LogLevelInfo {
		return
	}
	l.print(ColorBlue, "ℹ️ ", msg)
}

func (l *Log) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Log) Warn(msg string) {
	if l.level > LogLevelWarn {
		return
	}
	l.print(ColorYellow, "⚠️ ", msg)
}

func (l *Log) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

func (l *Log) Error(msg string) {
	l.print(ColorRed, "❌", msg)
}

func (l *Log) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}
