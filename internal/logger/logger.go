// Package logger builds the zerolog logger used by the CLI and adapts it to the domain Logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/zoomio/formulary/internal/domain/interfaces"
)

// DefaultLogLevel is used when no level is configured
const DefaultLogLevel = "info"

// New creates a new logger instance
func New(opts ...Option) *zerolog.Logger {
	config := &Config{
		output:       os.Stderr,
		level:        zerolog.InfoLevel,
		excludeParts: []string{zerolog.TimestampFieldName},
		isDev:        true,
	}

	for _, opt := range opts {
		opt.apply(config)
	}

	logger := zerolog.New(config.output).
		Level(config.level).
		With().
		Timestamp().
		Logger()

	if config.isDev {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:          config.output,
			PartsExclude: config.excludeParts,
		})
	}

	return &logger
}

// domainLogger adapts zerolog to interfaces.Logger
type domainLogger struct {
	log *zerolog.Logger
}

// NewDomainLogger wraps a zerolog logger for use by domain services
func NewDomainLogger(log *zerolog.Logger) interfaces.Logger {
	return &domainLogger{log: log}
}

func (l *domainLogger) Debug(msg string, fields ...interfaces.Field) {
	withFields(l.log.Debug(), fields).Msg(msg)
}

func (l *domainLogger) Info(msg string, fields ...interfaces.Field) {
	withFields(l.log.Info(), fields).Msg(msg)
}

func (l *domainLogger) Warn(msg string, fields ...interfaces.Field) {
	withFields(l.log.Warn(), fields).Msg(msg)
}

func (l *domainLogger) Error(msg string, fields ...interfaces.Field) {
	withFields(l.log.Error(), fields).Msg(msg)
}

func withFields(e *zerolog.Event, fields []interfaces.Field) *zerolog.Event {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			e = e.AnErr(f.Key, err)
			continue
		}
		e = e.Interface(f.Key, f.Value)
	}
	return e
}
