package reconcile

import "time"

// Log stages.
const (
	StageAssign         = "assign"
	StageValidate       = "validate"
	StageHandlerInvalid = "handler.invalid"
	StageHandlerSkipped = "handler.skipped"
	StageDispatch       = "dispatch"
	StagePersist        = "persist"
	StageReset          = "reset"
	StageRestore        = "restore"
	StageActivity       = "activity"
)

// LogEvent describes one step of a session for logging.
type LogEvent struct {
	Stage    string
	Handler  string
	Kind     EventKind
	Lookup   string
	Count    int
	Duration time.Duration
	Err      error
	Message  string
}

// Logger records session events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// WithLogger attaches a logger to the session.
func WithLogger(logger Logger) Option {
	return func(cfg *sessionConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
