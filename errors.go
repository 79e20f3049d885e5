package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTarget is returned by Persist before any target was assigned.
	ErrNoTarget = errors.New("reconcile: no target assigned")
	// ErrPersistInProgress is returned when Persist is called while another
	// Persist on the same session is still dispatching.
	ErrPersistInProgress = errors.New("reconcile: persist already in progress")
	// ErrNilCallback marks a handler registered without a callback. Such
	// handlers are flagged invalid.
	ErrNilCallback = errors.New("reconcile: handler callback is nil")
	// ErrInvalidHandler marks a handler whose matches do not have the shape
	// it expects.
	ErrInvalidHandler = errors.New("reconcile: invalid handler")
)

// DispatchError reports a callback failure. Events dispatched before the
// failure are not rolled back.
type DispatchError struct {
	Handler string
	Kind    EventKind
	Lookup  string
	EventID string
	Err     error
}

func (e *DispatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("reconcile: handler %q %s at %s: %v", e.Handler, e.Kind, describeLookup(e.Lookup), e.Err)
}

func (e *DispatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PatternError captures the engine and expression of a search pattern that
// failed to compile or evaluate.
type PatternError struct {
	Engine string
	Expr   string
	Lookup string
	Err    error
}

func (e *PatternError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("reconcile: %s pattern %s", e.Engine, describeExpression(e.Expr))
	if e.Lookup != "" {
		msg += " lookup=" + describeLookup(e.Lookup)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *PatternError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func describeLookup(lookup string) string {
	if lookup == "" {
		return "<root>"
	}
	return lookup
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var patternErr *PatternError
	if errors.As(err, &patternErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "reconcile:") {
		return err
	}
	return fmt.Errorf("reconcile: %s pattern: %w", engine, err)
}

func wrapPatternError(engine, expr, lookup string, err error) error {
	if err == nil {
		return nil
	}

	var patternErr *PatternError
	if errors.As(err, &patternErr) {
		if patternErr.Engine == "" {
			patternErr.Engine = engine
		}
		if patternErr.Expr == "" {
			patternErr.Expr = expr
		}
		if patternErr.Lookup == "" {
			patternErr.Lookup = lookup
		}
		return patternErr
	}

	return &PatternError{
		Engine: engine,
		Expr:   expr,
		Lookup: lookup,
		Err:    err,
	}
}
