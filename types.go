package reconcile

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-reconcile/pkg/activity"
	"github.com/goliatone/go-reconcile/pkg/state"
	"github.com/goliatone/go-reconcile/tree"
)

// Option configures a Session.
type Option func(*sessionConfig)

// IDGenerator returns unique identifiers for runs, events and snapshots.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// Metrics records session outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveEvent(handler, kind string)
	ObservePersist(outcome string, duration time.Duration)
	ObserveValidation(errors int, duration time.Duration)
	ObserveInvalidHandler(handler string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvent(string, string)          {}
func (noopMetrics) ObservePersist(string, time.Duration) {}
func (noopMetrics) ObserveValidation(int, time.Duration) {}
func (noopMetrics) ObserveInvalidHandler(string)         {}

type sessionConfig struct {
	sortHandlers  []SortHandler
	mergeHandlers []MergeHandler
	validator     Validator
	schema        any
	logger        Logger
	activityHooks activity.Hooks
	actor         actor
	newID         IDGenerator
	documentID    string
	inPlace       bool
	store         state.Store[tree.Node]
	ref           state.Ref
	metrics       Metrics
	tracer        trace.Tracer
	now           func() time.Time
}

type actor struct {
	actorID  string
	userID   string
	tenantID string
}

func applyOptions(opts []Option) sessionConfig {
	cfg := sessionConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.newID == nil {
		cfg.newID = NewUUID
	}
	if cfg.metrics == nil {
		cfg.metrics = noopMetrics{}
	}
	if cfg.tracer == nil {
		cfg.tracer = tracer
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return cfg
}
