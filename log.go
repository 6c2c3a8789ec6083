package main

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	silentLevel
)

var levelColors = map[Level]*color.Color{
	DebugLevel: color.New(color.FgHiBlack),
	InfoLevel:  color.New(color.FgCyan),
	WarnLevel:  color.New(color.FgYellow),
	ErrorLevel: color.New(color.FgRed, color.Bold),
}

var levelNames = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info ",
	WarnLevel:  "warn ",
	ErrorLevel: "error",
}

// Logger is a leveled logger on top of log.Logger. A nil *Logger discards
// everything. It is safe for concurrent use.
type Logger struct {
	out   *log.Logger
	level Level
}

func NewLogger(w io.Writer, level Level) *Logger {
	return &Logger{out: log.New(w, "", 0), level: level}
}

func NopLogger() *Logger {
	return NewLogger(io.Discard, silentLevel)
}

func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.level
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.out.Printf("%s %s", levelColors[level].Sprint(levelNames[level]), fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(DebugLevel, format, args...) }

func (l *Logger) Infof(format string, args ...interface{}) { l.logf(InfoLevel, format, args...) }

func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(WarnLevel, format, args...) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(ErrorLevel, format, args...) }
