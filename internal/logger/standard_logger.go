package logger

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// StandardLogger is a Logger implementation backed by the standard library,
// for hosts that embed the engine without configuring zap.
type StandardLogger struct {
	logger *log.Logger
	level  contracts.LogLevel
}

// NewStandardLogger creates a logger writing to stderr.
func NewStandardLogger() contracts.Logger {
	return &StandardLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		level:  contracts.InfoLevel,
	}
}

// Info logs a message at the INFO level
func (s *StandardLogger) Info(msg string, fields ...contracts.Field) {
	s.log(contracts.InfoLevel, "INFO", msg, fields...)
}

// Error logs a message at the ERROR level
func (s *StandardLogger) Error(msg string, fields ...contracts.Field) {
	s.log(contracts.ErrorLevel, "ERROR", msg, fields...)
}

// Debug logs a message at the DEBUG level
func (s *StandardLogger) Debug(msg string, fields ...contracts.Field) {
	s.log(contracts.DebugLevel, "DEBUG", msg, fields...)
}

// Warn logs a message at the WARN level
func (s *StandardLogger) Warn(msg string, fields ...contracts.Field) {
	s.log(contracts.WarnLevel, "WARN", msg, fields...)
}

// Field returns a new instance of Field
func (s *StandardLogger) Field() contracts.Field {
	return &standardField{}
}

// SetLevel sets the logging level
func (s *StandardLogger) SetLevel(level contracts.LogLevel) {
	s.level = level
}

func (s *StandardLogger) log(level contracts.LogLevel, tag, msg string, fields ...contracts.Field) {
	if s.level > level {
		return
	}
	out := fmt.Sprintf("[%s] %s", tag, msg)
	for _, field := range fields {
		if f, ok := field.(*standardField); ok {
			out += fmt.Sprintf(" %s=%v", f.key, f.value)
		}
	}
	s.logger.Println(out)
}

// standardField implements contracts.Field
type standardField struct {
	key   string
	value interface{}
}

func (f *standardField) Bool(key string, val bool) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Int(key string, val int) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Float64(key string, val float64) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) String(key string, val string) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Time(key string, val time.Time) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Int64(key string, val int64) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Error(key string, val error) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Uint64(key string, val uint64) contracts.Field {
	return &standardField{key, val}
}

func (f *standardField) Uint8(key string, val uint8) contracts.Field {
	return &standardField{key, val}
}
