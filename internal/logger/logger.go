package logger

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured JSON entries tagged with service, hostname,
// action and request id.
type Logger struct {
	service  string
	hostname string
	zl       *zap.Logger
}

// New creates a logger for the given service at info level
func New(service string) *Logger {
	return NewWithLevel(service, "info")
}

// NewWithLevel creates a logger for the given service. Unknown levels fall back to info.
func NewWithLevel(service, level string) *Logger {
	hostname, _ := os.Hostname()

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.MessageKey = "message"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(lvl),
	)

	return &Logger{
		service:  service,
		hostname: hostname,
		zl:       zap.New(core),
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{service: "nop", zl: zap.NewNop()}
}

// GenerateRequestID returns a fresh request correlation id
func GenerateRequestID() string {
	return uuid.NewString()
}

func (l *Logger) Info(action, message, requestID string, fields map[string]interface{}) {
	l.zl.Info(message, l.base(action, requestID, fields)...)
}

func (l *Logger) Debug(action, message, requestID string, fields map[string]interface{}) {
	l.zl.Debug(message, l.base(action, requestID, fields)...)
}

func (l *Logger) Warn(action, message, requestID string, fields map[string]interface{}) {
	l.zl.Warn(message, l.base(action, requestID, fields)...)
}

// Error logs at error level; err may be nil.
func (l *Logger) Error(action, message, requestID string, err error, fields map[string]interface{}) {
	zf := l.base(action, requestID, fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.zl.Error(message, zf...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) base(action, requestID string, fields map[string]interface{}) []zap.Field {
	zf := make([]zap.Field, 0, 4+len(fields))
	zf = append(zf,
		zap.String("service", l.service),
		zap.String("hostname", l.hostname),
		zap.String("action", action),
		zap.String("request_id", requestID),
	)
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}
