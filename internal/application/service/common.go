package service

import (
	"errors"

	"go.uber.org/zap"
)

// Logger is the narrow logging interface services depend on
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// zapLogger adapts *zap.Logger to the service Logger interface
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps a zap logger for service use
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	z.sugar.Infow(msg, keysAndValues...)
}

func (z *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	z.sugar.Errorw(msg, keysAndValues...)
}

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the acting profile may not perform
	// the operation
	ErrUnauthorized = errors.New("not authorized")

	// ErrLevelAlreadyDecided is returned when a validation decision lands on
	// a level that a concurrent decision already resolved
	ErrLevelAlreadyDecided = errors.New("validation level already decided")

	// ErrNoValidationLevels is returned when validation is requested for a
	// task that has no pending validation levels
	ErrNoValidationLevels = errors.New("task has no pending validation levels")
)
