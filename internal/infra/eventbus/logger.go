package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// ZapLoggerAdapter adapts a zap logger to Watermill's LoggerAdapter.
type ZapLoggerAdapter struct {
	logger *zap.Logger
	fields watermill.LogFields
}

// NewZapLoggerAdapter creates a new Watermill logger adapter.
func NewZapLoggerAdapter(logger *zap.Logger) watermill.LoggerAdapter {
	return &ZapLoggerAdapter{
		logger: logger,
		fields: make(watermill.LogFields),
	}
}

func (l *ZapLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error(msg, append(l.toZapFields(fields), zap.Error(err))...)
}

func (l *ZapLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.logger.Info(msg, l.toZapFields(fields)...)
}

func (l *ZapLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, l.toZapFields(fields)...)
}

// Trace maps to zap's debug level; zap has no trace level.
func (l *ZapLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, l.toZapFields(fields)...)
}

func (l *ZapLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZapLoggerAdapter{
		logger: l.logger,
		fields: l.fields.Add(fields),
	}
}

func (l *ZapLoggerAdapter) toZapFields(fields watermill.LogFields) []zap.Field {
	all := l.fields.Add(fields)
	zapFields := make([]zap.Field, 0, len(all)+1)
	for k, v := range all {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
