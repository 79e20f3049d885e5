package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/goliatone/go-reconcile/pkg/activity"
	"github.com/goliatone/go-reconcile/pkg/state"
	"github.com/goliatone/go-reconcile/tree"
)

// Persist reports every change between the original and the target to the
// handlers, then commits the target as the new original.
//
// Sort handlers run first, then merge handlers, each in registration order.
// Events are dispatched one at a time and each callback returns before the
// next event is handed over. Invalid handlers are skipped. The first
// callback error stops the run and is returned as a *DispatchError; events
// already dispatched are not undone and nothing is committed.
//
// Callbacks run without the session lock held and may use its read
// accessors. A concurrent Persist returns ErrPersistInProgress.
func (s *Session) Persist(ctx context.Context) (report Report, err error) {
	if !s.persisting.CompareAndSwap(false, true) {
		return Report{}, ErrPersistInProgress
	}
	defer s.persisting.Store(false)

	if s.Target() == nil {
		return Report{}, ErrNoTarget
	}

	started := time.Now()
	report = Report{RunID: s.cfg.newID()}
	ctx, span := s.startSpan(ctx, "reconcile.Persist", attribute.String("reconcile.run_id", report.RunID))
	defer func() {
		report.Duration = time.Since(started)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.cfg.metrics.ObservePersist(outcome, report.Duration)
		s.cfg.logger.Log(LogEvent{
			Stage:    StagePersist,
			Count:    len(report.Events),
			Duration: report.Duration,
			Err:      err,
		})
		span.SetAttributes(attribute.Int("reconcile.events", len(report.Events)))
		endSpan(span, err)
	}()

	for i, h := range s.cfg.sortHandlers {
		name := handlerName(h.Handler, sortFallback(i))
		events, ok := s.planSort(i, h, name)
		if !ok {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		if err = s.dispatch(ctx, &report, name, "sort", h.Callback, events); err != nil {
			return report, err
		}
	}

	for i, h := range s.cfg.mergeHandlers {
		name := handlerName(h.Handler, mergeFallback(i))
		events, ok := s.planMerge(i, h, name)
		if !ok {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		if err = s.dispatch(ctx, &report, name, "merge", h.Callback, events); err != nil {
			return report, err
		}
	}

	annotations, err := s.commit(ctx)
	report.Errors = s.Errors()
	if err != nil {
		return report, err
	}

	input := s.activityInput(report.RunID)
	input.Events = len(report.Events)
	input.Skipped = report.Skipped
	input.Invalid = hasErrors(annotations)
	input.Baseline = s.Baseline().SnapshotID
	s.emit(ctx, activity.BuildTreePersistedEvent(input))
	return report, nil
}

// planSort validates the handler against the current pair and plans its
// events. ok is false when the handler is, or just became, invalid.
func (s *Session) planSort(i int, h SortHandler, name string) ([]ChangeEvent, bool) {
	if s.isInvalid(s.sortState, i) {
		s.cfg.logger.Log(LogEvent{Stage: StageHandlerSkipped, Handler: name})
		return nil, false
	}
	so, err := Search(h.Handler, s.scope())
	if err == nil {
		err = CheckSortHandler(h, so)
	}
	if err != nil {
		s.invalidateAt(s.sortState, i, name, err)
		return nil, false
	}
	return PlanSortEvents(h, so), true
}

func (s *Session) planMerge(i int, h MergeHandler, name string) ([]ChangeEvent, bool) {
	if s.isInvalid(s.mergeState, i) {
		s.cfg.logger.Log(LogEvent{Stage: StageHandlerSkipped, Handler: name})
		return nil, false
	}
	so, err := Search(h.Handler, s.scope())
	if err == nil {
		err = CheckMergeHandler(h, so)
	}
	if err != nil {
		s.invalidateAt(s.mergeState, i, name, err)
		return nil, false
	}
	return PlanMergeEvents(h, so), true
}

func (s *Session) dispatch(ctx context.Context, report *Report, name, kind string, cb Callback, events []ChangeEvent) (err error) {
	ctx, span := s.startSpan(ctx, "reconcile.Dispatch", spanHandler(name, kind)...)
	defer func() { endSpan(span, err) }()

	for _, event := range events {
		event.ID = s.cfg.newID()
		event.RunID = report.RunID
		event.Handler = name
		if cbErr := cb.Handle(ctx, event); cbErr != nil {
			err = &DispatchError{
				Handler: name,
				Kind:    event.Kind,
				Lookup:  event.Lookup,
				EventID: event.ID,
				Err:     cbErr,
			}
			s.cfg.logger.Log(LogEvent{
				Stage:   StageDispatch,
				Handler: name,
				Kind:    event.Kind,
				Lookup:  event.Lookup,
				Err:     err,
			})
			return err
		}
		report.Events = append(report.Events, event)
		s.cfg.metrics.ObserveEvent(name, string(event.Kind))
		s.cfg.logger.Log(LogEvent{
			Stage:   StageDispatch,
			Handler: name,
			Kind:    event.Kind,
			Lookup:  event.Lookup,
		})
	}
	span.SetAttributes(attribute.Int("reconcile.events", len(events)))
	return nil
}

// commit makes the target the new original, clears the dirty set,
// revalidates and saves the baseline when a store is configured.
func (s *Session) commit(ctx context.Context) (Annotations, error) {
	s.mu.Lock()
	s.original = tree.Strip(s.target)
	s.dirty = map[string]struct{}{}
	snapshot := tree.Clone(s.original)
	expected := s.baseline
	s.mu.Unlock()

	annotations, err := s.Validate(ctx)
	if err != nil {
		return annotations, err
	}
	if s.cfg.store == nil {
		return annotations, nil
	}

	baselines := state.Baselines[tree.Node]{Store: s.cfg.store, NewID: s.cfg.newID, Now: s.cfg.now}
	meta, err := baselines.Commit(ctx, s.cfg.ref, snapshot, expected)
	if err != nil {
		if errors.Is(err, state.ErrETagMismatch) {
			return annotations, fmt.Errorf("reconcile: baseline changed underneath session: %w", err)
		}
		return annotations, fmt.Errorf("reconcile: save baseline: %w", err)
	}
	s.mu.Lock()
	s.baseline = meta
	s.mu.Unlock()
	return annotations, nil
}
