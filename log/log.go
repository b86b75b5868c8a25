// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package log is a small leveled logging facade. Embedders can replace the
// sinks with SetLogger; by default lines go to stderr so they never mix with
// the ping output on stdout.
package log

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// LogLevel orders messages from least to most verbose
type LogLevel int32

// Levels, least verbose first. The zero value is not a valid level.
const (
	LevelError LogLevel = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = map[string]LogLevel{
	"error": LevelError,
	"warn":  LevelWarn,
	"info":  LevelInfo,
	"debug": LevelDebug,
	"trace": LevelTrace,
}

// ParseLogLevel maps a lowercase level name to its LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	level, ok := levelNames[s]
	if !ok {
		return 0, fmt.Errorf("invalid log level %q, expected one of error, warn, info, debug, trace", s)
	}
	return level, nil
}

func (l LogLevel) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}
	return fmt.Sprintf("LogLevel(%d)", int32(l))
}

var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(LevelWarn))
}

// SetLogLevel sets the most verbose level the default logger writes
func SetLogLevel(l LogLevel) {
	currentLevel.Store(int32(l))
}

// GetLogLevel returns the current level
func GetLogLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetVerbose is shorthand for SetLogLevel(LevelTrace), false restores LevelWarn
func SetVerbose(v bool) {
	if v {
		SetLogLevel(LevelTrace)
	} else {
		SetLogLevel(LevelWarn)
	}
}

func enabled(l LogLevel) bool {
	return l <= GetLogLevel()
}

type Logger struct {
	Tracef    func(format string, args ...interface{})
	Infof     func(format string, args ...interface{})
	Debugf    func(format string, args ...interface{})
	Warnf     func(format string, args ...interface{}) error
	Errorf    func(format string, args ...interface{}) error
	TraceFunc func(func() string)
}

var std = log.New(os.Stderr, "", log.LstdFlags)

var logger = Logger{
	Tracef:    defaultTracef,
	Infof:     defaultInfof,
	Debugf:    defaultDebugf,
	Warnf:     defaultWarnf,
	Errorf:    defaultErrorf,
	TraceFunc: defaultTraceFunc,
}

func SetLogger(l Logger) {
	logger = l
}

func Tracef(format string, args ...interface{}) {
	if logger.Tracef != nil {
		logger.Tracef(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if logger.Infof != nil {
		logger.Infof(format, args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if logger.Debugf != nil {
		logger.Debugf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) error {
	if logger.Warnf != nil {
		return logger.Warnf(format, args...)
	}
	return nil
}

func Errorf(format string, args ...interface{}) error {
	if logger.Errorf != nil {
		return logger.Errorf(format, args...)
	}
	return nil
}

// TraceFunc defers building the message until trace output is known to be wanted
func TraceFunc(logFunc func() string) {
	if logger.TraceFunc != nil {
		logger.TraceFunc(logFunc)
	}
}

var (
	defaultTracef = func(format string, args ...interface{}) {
		if enabled(LevelTrace) {
			std.Printf("[TRACE] "+format, args...)
		}
	}

	defaultInfof = func(format string, args ...interface{}) {
		if enabled(LevelInfo) {
			std.Printf("[INFO] "+format, args...)
		}
	}

	defaultDebugf = func(format string, args ...interface{}) {
		if enabled(LevelDebug) {
			std.Printf("[DEBUG] "+format, args...)
		}
	}

	defaultErrorf = func(format string, args ...interface{}) error {
		if enabled(LevelError) {
			std.Printf("[ERROR] "+format, args...)
		}
		return nil
	}

	defaultWarnf = func(format string, args ...interface{}) error {
		if enabled(LevelWarn) {
			std.Printf("[WARN] "+format, args...)
		}
		return nil
	}

	defaultTraceFunc = func(logFunc func() string) {
		if enabled(LevelTrace) {
			std.Print("[TRACEFUNC] " + logFunc())
		}
	}
)
