package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger passed to every component
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field is a single structured log field
type Field struct {
	zap.Field
}

type zapLogger struct {
	z *zap.Logger
}

// New creates a logger for the given mode (dev or prod) and level.
// Dev writes a console format, prod writes JSON.
func New(mode, level, serviceName string) (Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	var encoder zapcore.Encoder
	if mode == "dev" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.MessageKey = "msg"
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(zapLevel))

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel)).
		With(
			zap.String("service", serviceName),
			zap.String("mode", mode),
		)

	return &zapLogger{z: z}, nil
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, unwrap(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.z.Info(msg, unwrap(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, unwrap(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.z.Error(msg, unwrap(fields)...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(unwrap(fields)...)}
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

func unwrap(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.Field
	}
	return out
}

// String creates a string field
func String(key, val string) Field {
	return Field{zap.String(key, val)}
}

// Strings creates a string slice field
func Strings(key string, val []string) Field {
	return Field{zap.Strings(key, val)}
}

// Int creates an int field
func Int(key string, val int) Field {
	return Field{zap.Int(key, val)}
}

// Int64 creates an int64 field
func Int64(key string, val int64) Field {
	return Field{zap.Int64(key, val)}
}

// Float64 creates a float64 field
func Float64(key string, val float64) Field {
	return Field{zap.Float64(key, val)}
}

// Bool creates a bool field
func Bool(key string, val bool) Field {
	return Field{zap.Bool(key, val)}
}

// Duration creates a duration field
func Duration(key string, val time.Duration) Field {
	return Field{zap.Duration(key, val)}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{zap.String("error", "nil")}
	}
	return Field{zap.String("error", err.Error())}
}

// Any creates a field with any value
func Any(key string, val interface{}) Field {
	return Field{zap.Any(key, val)}
}
