package search

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes search events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates an audit sink backed by logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Record logs the event at info level.
func (s *LogSink) Record(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("query", ev.Query),
		zap.String("variant", ev.Variant),
		zap.Int("k", ev.K),
		zap.Strings("result_ids", ev.ResultIDs),
		zap.Duration("duration", ev.Duration),
	}
	if ev.Err != nil {
		fields = append(fields, zap.Error(ev.Err))
	}
	s.logger.Info("Search audit", fields...)
	return nil
}
