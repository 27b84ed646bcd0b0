package logger

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	traceIDKey ctxKey = "trace_id"
)

// Logger wraps zap.Logger with the service name and trace ID helpers
type Logger struct {
	*zap.Logger
	service string
}

// Options configures a logger
type Options struct {
	Service string
	Level   string
	// Format is "json" (default) or "console"
	Format string
	Output io.Writer
}

// New creates a JSON logger writing to stdout
func New(service, level string) *Logger {
	return NewWithOptions(Options{Service: service, Level: level})
}

// NewWithOptions creates a logger from opts
func NewWithOptions(opts Options) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if opts.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), parseLevel(opts.Level))

	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	zapLogger = zapLogger.With(zap.String("service", opts.Service))

	return &Logger{
		Logger:  zapLogger,
		service: opts.Service,
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Service returns the service name attached to every entry
func (l *Logger) Service() string {
	return l.service
}

// WithContext returns a logger carrying the trace ID from ctx, if any
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	if traceID := GetTraceID(ctx); traceID != "" {
		return l.With(zap.String("trace_id", traceID))
	}
	return l.Logger
}

// WithTraceIDContext adds a trace ID to the context
func WithTraceIDContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
