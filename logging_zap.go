package reconcile

import "go.uber.org/zap"

// NewZapLogger forwards session log events to a zap logger. Events carrying
// an error log at error level, invalid handlers and activity failures at
// warn, everything else at debug.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return zapLogger{logger: logger.Named("reconcile")}
}

type zapLogger struct {
	logger *zap.Logger
}

func (l zapLogger) Log(event LogEvent) {
	msg := event.Message
	if msg == "" {
		msg = event.Stage
	}

	zf := []zap.Field{zap.String("stage", event.Stage)}
	if event.Handler != "" {
		zf = append(zf, zap.String("handler", event.Handler))
	}
	if event.Kind != "" {
		zf = append(zf, zap.String("kind", string(event.Kind)))
	}
	if event.Lookup != "" {
		zf = append(zf, zap.String("lookup", event.Lookup))
	}
	if event.Count > 0 {
		zf = append(zf, zap.Int("count", event.Count))
	}
	if event.Duration > 0 {
		zf = append(zf, zap.Duration("duration", event.Duration))
	}

	switch {
	case event.Stage == StageHandlerInvalid:
		l.logger.Warn(msg, append(zf, zap.Error(event.Err))...)
	case event.Stage == StageActivity && event.Err != nil:
		l.logger.Warn(msg, append(zf, zap.Error(event.Err))...)
	case event.Err != nil:
		l.logger.Error(msg, append(zf, zap.Error(event.Err))...)
	default:
		l.logger.Debug(msg, zf...)
	}
}
