// Package logging builds the zap logger shared by the server and the CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"garagesite/pkg/apperr"
)

// New returns a JSON production logger, or a console logger in development.
// level is one of debug, info, warn, error; anything else means info.
func New(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("env", env)), nil
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// LevelFor maps an application error's severity to a log level.
func LevelFor(err error) zapcore.Level {
	switch apperr.SeverityOf(err) {
	case apperr.SeverityInfo:
		return zapcore.InfoLevel
	case apperr.SeverityWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// LogError writes err at the level its severity calls for.
func LogError(l *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ae, ok := apperr.As(err); ok {
		fields = append(fields,
			zap.String("kind", ae.Kind()),
			zap.String("code", ae.Code),
			zap.String("severity", string(ae.Severity)))
	}
	if ce := l.Check(LevelFor(err), msg); ce != nil {
		ce.Write(fields...)
	}
}
