package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/goliatone/go-reconcile/pkg/activity"
	"github.com/goliatone/go-reconcile/pkg/state"
	"github.com/goliatone/go-reconcile/tree"
)

// Session holds a target tree and the original it is reconciled against.
//
// The target is owned by the caller and may be edited between calls;
// NotifyChanged reports such edits. The original is a private deep copy
// taken on Assign and after each successful Persist.
type Session struct {
	cfg sessionConfig

	mu          sync.RWMutex
	target      tree.Node
	original    tree.Node
	dirty       map[string]struct{}
	errors      []ValidationError
	annotations Annotations
	sortState   []handlerState
	mergeState  []handlerState
	baseline    state.Meta

	persisting atomic.Bool
}

type handlerState struct {
	invalid bool
	reason  error
}

// NewSession builds a session. Handlers without a callback are flagged
// invalid straight away.
func NewSession(opts ...Option) *Session {
	s := &Session{
		cfg:   applyOptions(opts),
		dirty: map[string]struct{}{},
	}
	s.sortState = make([]handlerState, len(s.cfg.sortHandlers))
	s.mergeState = make([]handlerState, len(s.cfg.mergeHandlers))
	for i, h := range s.cfg.sortHandlers {
		if h.Callback == nil {
			s.invalidate(&s.sortState[i], handlerName(h.Handler, sortFallback(i)), fmt.Errorf("%w: %q", ErrNilCallback, h.Name))
		}
	}
	for i, h := range s.cfg.mergeHandlers {
		if h.Callback == nil {
			s.invalidate(&s.mergeState[i], handlerName(h.Handler, mergeFallback(i)), fmt.Errorf("%w: %q", ErrNilCallback, h.Name))
		}
	}
	return s
}

func sortFallback(i int) string  { return fmt.Sprintf("sort[%d]", i) }
func mergeFallback(i int) string { return fmt.Sprintf("merge[%d]", i) }

// Assign replaces the target and snapshots a deep copy of it as the
// original. Annotation state is reset to pristine, handler validity is
// checked against the new pair and the target is validated.
func (s *Session) Assign(ctx context.Context, target tree.Node) (Annotations, error) {
	return s.assign(ctx, target, target, activity.BuildTreeAssignedEvent)
}

// AssignWithBaseline is Assign with the original copied from baseline
// instead of target.
func (s *Session) AssignWithBaseline(ctx context.Context, target, baseline tree.Node) (Annotations, error) {
	return s.assign(ctx, target, baseline, activity.BuildTreeAssignedEvent)
}

// Restore loads the baseline saved under the configured ref and assigns it
// as the original. A nil target starts from a copy of the baseline.
func (s *Session) Restore(ctx context.Context, target tree.Node) (Annotations, error) {
	if s.cfg.store == nil {
		return nil, fmt.Errorf("reconcile: restore requires a baseline store")
	}
	baselines := state.Baselines[tree.Node]{Store: s.cfg.store, NewID: s.cfg.newID, Now: s.cfg.now}
	baseline, meta, err := baselines.Load(ctx, s.cfg.ref)
	if err != nil {
		s.cfg.logger.Log(LogEvent{Stage: StageRestore, Err: err})
		return nil, err
	}
	if target == nil {
		target = tree.Clone(baseline)
	}

	s.mu.Lock()
	s.baseline = meta
	s.mu.Unlock()

	return s.assign(ctx, target, baseline, func(input activity.TreeEventInput) activity.Event {
		input.Baseline = meta.SnapshotID
		return activity.BuildTreeRestoredEvent(input)
	})
}

func (s *Session) assign(ctx context.Context, target, baseline tree.Node, build func(activity.TreeEventInput) activity.Event) (Annotations, error) {
	if target == nil {
		return nil, ErrNoTarget
	}
	s.mu.Lock()
	s.target = target
	s.original = tree.Strip(baseline)
	s.dirty = map[string]struct{}{}
	s.mu.Unlock()

	s.checkHandlers()
	s.cfg.logger.Log(LogEvent{Stage: StageAssign, Count: len(tree.Deconstruct(target))})

	annotations, err := s.Validate(ctx)

	input := s.activityInput("")
	input.Skipped = s.InvalidHandlers()
	input.Invalid = hasErrors(annotations)
	s.emit(ctx, build(input))
	return annotations, err
}

// checkHandlers flags handlers whose matches have the wrong shape against
// the current pair. Invalid handlers stay invalid.
func (s *Session) checkHandlers() {
	scope := s.scope()
	for i, h := range s.cfg.sortHandlers {
		if s.isInvalid(s.sortState, i) {
			continue
		}
		so, err := Search(h.Handler, scope)
		if err == nil {
			err = CheckSortHandler(h, so)
		}
		if err != nil {
			s.invalidateAt(s.sortState, i, handlerName(h.Handler, sortFallback(i)), err)
		}
	}
	for i, h := range s.cfg.mergeHandlers {
		if s.isInvalid(s.mergeState, i) {
			continue
		}
		so, err := Search(h.Handler, scope)
		if err == nil {
			err = CheckMergeHandler(h, so)
		}
		if err != nil {
			s.invalidateAt(s.mergeState, i, handlerName(h.Handler, mergeFallback(i)), err)
		}
	}
}

func (s *Session) isInvalid(states []handlerState, i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return states[i].invalid
}

func (s *Session) invalidateAt(states []handlerState, i int, name string, reason error) {
	s.mu.Lock()
	s.invalidate(&states[i], name, reason)
	s.mu.Unlock()
}

func (s *Session) invalidate(st *handlerState, name string, reason error) {
	st.invalid = true
	st.reason = reason
	s.cfg.metrics.ObserveInvalidHandler(name)
	s.cfg.logger.Log(LogEvent{
		Stage:   StageHandlerInvalid,
		Handler: name,
		Err:     reason,
		Message: "handler disabled",
	})
}

// NotifyChanged marks the node at lookup as edited and revalidates.
func (s *Session) NotifyChanged(ctx context.Context, lookup string) (Annotations, error) {
	s.mu.Lock()
	if s.target == nil {
		s.mu.Unlock()
		return nil, ErrNoTarget
	}
	s.dirty[lookup] = struct{}{}
	s.mu.Unlock()
	return s.Validate(ctx)
}

// Reset discards edits: the target becomes a copy of the original.
func (s *Session) Reset(ctx context.Context) (Annotations, error) {
	s.mu.Lock()
	if s.original == nil {
		s.mu.Unlock()
		return nil, ErrNoTarget
	}
	s.target = tree.Clone(s.original)
	s.dirty = map[string]struct{}{}
	s.mu.Unlock()

	s.cfg.logger.Log(LogEvent{Stage: StageReset})
	annotations, err := s.Validate(ctx)
	input := s.activityInput("")
	input.Invalid = hasErrors(annotations)
	s.emit(ctx, activity.BuildTreeResetEvent(input))
	return annotations, err
}

// Validate runs the validator against the target and recomputes the
// annotations. Without a target, validator or schema only the dirty flags
// are computed and no error is reported. A validator that cannot run
// returns its error and leaves the previous validation errors in place.
func (s *Session) Validate(ctx context.Context) (Annotations, error) {
	s.mu.RLock()
	target := s.target
	s.mu.RUnlock()
	if target == nil {
		return Annotations{}, nil
	}

	var runErr error
	if s.cfg.validator != nil && s.cfg.schema != nil {
		ctx, span := s.startSpan(ctx, "reconcile.Validate")
		started := time.Now()
		errs, err := s.cfg.validator.Validate(ctx, tree.Export(target), s.cfg.schema)
		endSpan(span, err)
		if err != nil {
			runErr = fmt.Errorf("reconcile: validate: %w", err)
			s.cfg.logger.Log(LogEvent{Stage: StageValidate, Err: runErr})
		} else {
			sortValidationErrors(errs)
			s.cfg.metrics.ObserveValidation(len(errs), time.Since(started))
			s.cfg.logger.Log(LogEvent{Stage: StageValidate, Count: len(errs), Duration: time.Since(started)})
			s.mu.Lock()
			s.errors = errs
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = Annotate(s.target, s.errors, s.dirty)
	if s.cfg.inPlace {
		ApplyAnnotations(s.target, s.annotations)
	}
	return cloneAnnotations(s.annotations), runErr
}

func sortValidationErrors(errs []ValidationError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Message < errs[j].Message
	})
}

// Target returns the current target.
func (s *Session) Target() tree.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// Original returns a copy of the original snapshot.
func (s *Session) Original() tree.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tree.Clone(s.original)
}

// Annotations returns the annotations of the last validation.
func (s *Session) Annotations() Annotations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAnnotations(s.annotations)
}

// Errors returns the validation errors of the last validation.
func (s *Session) Errors() []ValidationError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ValidationError(nil), s.errors...)
}

// Baseline returns the store metadata of the last restored or saved
// baseline.
func (s *Session) Baseline() state.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline
}

// InvalidHandlers returns the names of the handlers flagged invalid, sort
// handlers first.
func (s *Session) InvalidHandlers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for i, st := range s.sortState {
		if st.invalid {
			names = append(names, handlerName(s.cfg.sortHandlers[i].Handler, sortFallback(i)))
		}
	}
	for i, st := range s.mergeState {
		if st.invalid {
			names = append(names, handlerName(s.cfg.mergeHandlers[i].Handler, mergeFallback(i)))
		}
	}
	return names
}

// HandlerError returns why the named handler was flagged invalid.
func (s *Session) HandlerError(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, st := range s.sortState {
		if st.invalid && handlerName(s.cfg.sortHandlers[i].Handler, sortFallback(i)) == name {
			return st.reason
		}
	}
	for i, st := range s.mergeState {
		if st.invalid && handlerName(s.cfg.mergeHandlers[i].Handler, mergeFallback(i)) == name {
			return st.reason
		}
	}
	return nil
}

func (s *Session) scope() Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Scope{Target: s.target, Original: s.original}
}

func cloneAnnotations(in Annotations) Annotations {
	out := make(Annotations, len(in))
	for lookup, ann := range in {
		ann.Errors = append([]ValidationError(nil), ann.Errors...)
		out[lookup] = ann
	}
	return out
}

func hasErrors(annotations Annotations) bool {
	root, ok := annotations[""]
	return ok && root.Invalid
}

func spanHandler(name string, kind string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("reconcile.handler", name),
		attribute.String("reconcile.handler_kind", kind),
	}
}
