package dispatch

import (
	"fmt"
	"log"
	"strings"
)

// Receives the queue's diagnostic messages. Implementations may forward to
// any structured logging library.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// A key/value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// Creates a new Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Writes messages to a *log.Logger as "[LEVEL] msg {key: value, ...}".
type StdLogger struct {
	l *log.Logger
}

// Creates a Logger writing to l, or to the standard logger if l is nil.
func NewStdLogger(l *log.Logger) *StdLogger {
	if l == nil {
		l = log.Default()
	}
	return &StdLogger{l: l}
}

func (s *StdLogger) Debug(msg string, fields ...Field) { s.log("DEBUG", msg, fields) }
func (s *StdLogger) Info(msg string, fields ...Field)  { s.log("INFO", msg, fields) }
func (s *StdLogger) Warn(msg string, fields ...Field)  { s.log("WARN", msg, fields) }
func (s *StdLogger) Error(msg string, fields ...Field) { s.log("ERROR", msg, fields) }

func (s *StdLogger) log(level, msg string, fields []Field) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if len(fields) > 0 {
		b.WriteString(" {")
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", f.Key, f.Value)
		}
		b.WriteString("}")
	}
	s.l.Println(b.String())
}

// Discards everything. This is the default logger.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
