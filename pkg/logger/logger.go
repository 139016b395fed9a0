// Package logger provides structured logging for docsynth on top of uber-go/zap.
// Log lines go to stderr so the generation progress printed on stdout stays readable.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var bufferpool = buffer.NewPool()

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Field names shared by every log line that belongs to a generation run
const (
	FieldRunID      = "run_id"
	FieldDocumentID = "document_id"
	FieldTool       = "tool"
	FieldSectionID  = "section_id"
)

const timeLayout = "2006-01-02 15:04:05"

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
	// Format is the output format (json, text)
	Format string `yaml:"format"`
	// File is an optional log file written in addition to stderr
	File string `yaml:"file"`
	// MaxSize is the size in megabytes at which the log file is rotated
	MaxSize int `yaml:"max_size"`
	// MaxAge is the number of days rotated files are kept
	MaxAge int `yaml:"max_age"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `yaml:"compress"`
}

// Init initializes the global logger. Only the first call takes effect.
func Init(cfg Config) error {
	var initErr error
	once.Do(func() {
		globalLogger, initErr = build(cfg, os.Stderr)
	})
	return initErr
}

func build(cfg Config, console io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}

	encoder := func(color bool) zapcore.Encoder {
		if cfg.Format == "text" {
			return newTextEncoder(color)
		}
		return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		})
	}

	core := zapcore.NewCore(encoder(true), zapcore.AddSync(console), level)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory: %v, using stderr only\n", err)
		} else {
			file := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxAge:     cfg.MaxAge,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			})
			core = zapcore.NewTee(core, zapcore.NewCore(encoder(false), file, level))
		}
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(level))
	return l, err
}

// Get returns the global logger, or a no-op logger before Init
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Named creates a child logger with the given name
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// WithDocumentContext creates a child logger carrying the run and document ids.
//
//	log := logger.WithDocumentContext(runID, documentID)
//	log.Info("Synthesizing sections")
func WithDocumentContext(runID, documentID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if runID != "" {
		fields = append(fields, zap.String(FieldRunID, runID))
	}
	if documentID != "" {
		fields = append(fields, zap.String(FieldDocumentID, documentID))
	}
	return Get().With(fields...)
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: "\x1b[35m",
	zapcore.InfoLevel:  "\x1b[34m",
	zapcore.WarnLevel:  "\x1b[33m",
}

// textEncoder renders "[time] [LEVEL] caller message key=value ...".
// Fields bound with With come first, sorted by key, then the call's own fields in order.
type textEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newTextEncoder(color bool) zapcore.Encoder {
	return &textEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

func (e *textEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &textEncoder{MapObjectEncoder: clone, color: e.color}
}

func (e *textEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferpool.Get()

	buf.AppendString("[" + entry.Time.Format(timeLayout) + "] ")
	lvl := "[" + entry.Level.CapitalString() + "]"
	if e.color {
		color, ok := levelColors[entry.Level]
		if !ok {
			color = "\x1b[31m"
		}
		lvl = color + lvl + "\x1b[0m"
	}
	buf.AppendString(lvl + " ")
	if entry.Caller.Defined {
		buf.AppendString(entry.Caller.TrimmedPath() + " ")
	}
	buf.AppendString(entry.Message)

	appendSorted(buf, e.Fields)
	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		appendSorted(buf, m.Fields)
	}

	if entry.Stack != "" {
		buf.AppendString("\n" + entry.Stack)
	}
	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}

func appendSorted(buf *buffer.Buffer, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.AppendString(" " + k + "=")
		buf.AppendString(fmt.Sprint(fields[k]))
	}
}
