// Package logger provides leveled, structured JSON logging for the
// placement hub. One line per entry, written atomically, with optional
// caller attribution and a set of recruitment field helpers.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown values fall back
// to INFO rather than failing startup.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fields
// ─────────────────────────────────────────────────────────────────────────────

// Field is one key-value pair attached to an entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field     { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }
func Any(key string, value any) Field         { return Field{Key: key, Value: value} }

// Err renders an error under the "error" key. Nil errors produce a null
// value so call sites need no guard.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration renders a duration in its human form ("1.5s").
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Recruitment field helpers shared across the pipeline.
func StudentID(id string) Field     { return String("student_id", id) }
func ApplicationID(id string) Field { return String("application_id", id) }
func OpeningID(id string) Field     { return String("opening_id", id) }
func WindowID(id string) Field      { return String("window_id", id) }
func RoundID(id string) Field       { return String("round_id", id) }
func RoundNumber(n int) Field       { return Int("round_number", n) }
func ReviewerID(id string) Field    { return String("reviewer_id", id) }
func Status(s string) Field         { return String("status", s) }
func Component(name string) Field   { return String("component", name) }
func Operation(name string) Field   { return String("operation", name) }
func Latency(d time.Duration) Field { return Duration("latency", d) }

// ─────────────────────────────────────────────────────────────────────────────
// Logger
// ─────────────────────────────────────────────────────────────────────────────

// Options configures a Logger.
type Options struct {
	// Output receives the encoded entries (default os.Stdout).
	Output io.Writer

	// Level filters entries below this severity.
	Level Level

	// AddCaller attaches the short file:line of the call site.
	AddCaller bool
}

// Logger writes JSON entries. Safe for concurrent use; With creates
// children that share the output and mutex.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	level     Level
	base      []Field
	addCaller bool
}

// New creates a Logger from opts.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Logger{
		mu:        &sync.Mutex{},
		output:    opts.Output,
		level:     opts.Level,
		addCaller: opts.AddCaller,
	}
}

// Default returns an INFO logger on stdout with caller attribution.
func Default() *Logger {
	return New(Options{Level: LevelInfo, AddCaller: true})
}

// With returns a child logger whose entries always carry fields.
func (l *Logger) With(fields ...Field) *Logger {
	child := *l
	child.base = append(append([]Field(nil), l.base...), fields...)
	return &child
}

// Debug logs at DEBUG.
func (l *Logger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, fields) }

// Info logs at INFO.
func (l *Logger) Info(msg string, fields ...Field) { l.write(LevelInfo, msg, fields) }

// Warn logs at WARN.
func (l *Logger) Warn(msg string, fields ...Field) { l.write(LevelWarn, msg, fields) }

// Error logs at ERROR.
func (l *Logger) Error(msg string, fields ...Field) { l.write(LevelError, msg, fields) }

type entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Caller    string         `json:"caller,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func (l *Logger) write(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
	}

	if l.addCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			if idx := strings.LastIndex(file, "/"); idx >= 0 {
				file = file[idx+1:]
			}
			e.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	if n := len(l.base) + len(fields); n > 0 {
		e.Fields = make(map[string]any, n)
		for _, f := range l.base {
			e.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			e.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(e)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"timestamp":%q,"level":%q,"message":%q}`,
			e.Timestamp, e.Level, msg))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.output.Write(append(data, '\n'))
}
