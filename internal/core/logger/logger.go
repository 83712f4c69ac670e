// Package logger is a thin leveled wrapper around the standard log
// package. The teacher CLI (cmd/cimis) logs with bare log/fmt and builds
// hint-bearing error strings by hand; this keeps that idiom instead of
// pulling in a structured-logging dependency for a codebase of this shape.
package logger

import (
	"log"
	"os"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

var (
	std   = log.New(os.Stderr, "", log.LstdFlags)
	level = LevelInfo
)

// SetLevel changes the minimum level that gets printed. Tests that expect
// quiet output call this with LevelSilent.
func SetLevel(l Level) { level = l }

func Debug(format string, args ...any) { logAt(LevelDebug, "DEBUG", format, args...) }
func Info(format string, args ...any)  { logAt(LevelInfo, "INFO", format, args...) }
func Warn(format string, args ...any)  { logAt(LevelWarn, "WARN", format, args...) }
func Error(format string, args ...any) { logAt(LevelError, "ERROR", format, args...) }

func logAt(l Level, tag, format string, args ...any) {
	if l < level {
		return
	}
	std.Printf(tag+": "+format, args...)
}
