package reconcile

import (
	"context"

	"github.com/goliatone/go-reconcile/pkg/activity"
)

// WithActivityHooks attaches lifecycle activity hooks. Nil entries are
// dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *sessionConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (s *Session) ActivityHooks() activity.Hooks {
	if s == nil {
		return nil
	}
	return s.cfg.activityHooks.Clone()
}

func (s *Session) activityInput(runID string) activity.TreeEventInput {
	return activity.TreeEventInput{
		ActorID:    s.cfg.actor.actorID,
		UserID:     s.cfg.actor.userID,
		TenantID:   s.cfg.actor.tenantID,
		DocumentID: s.cfg.documentID,
		RunID:      runID,
		OccurredAt: s.cfg.now(),
	}
}

// emit delivers an activity event. Hook failures are logged, never returned.
func (s *Session) emit(ctx context.Context, event activity.Event) {
	emitter := activity.NewEmitter(s.cfg.activityHooks, activity.Config{Enabled: true})
	if !emitter.Enabled() {
		return
	}
	if err := emitter.Emit(ctx, event); err != nil {
		s.cfg.logger.Log(LogEvent{
			Stage:   StageActivity,
			Err:     err,
			Message: "activity hook failed: " + event.Verb,
		})
	}
}
