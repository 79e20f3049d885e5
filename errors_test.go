package reconcile

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapPatternErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapPatternError("expr", "depth > ", "items.0", base)

	var patternErr *PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternError, got %T", err)
	}
	if patternErr.Engine != "expr" || patternErr.Expr != "depth > " || patternErr.Lookup != "items.0" {
		t.Fatalf("unexpected metadata %+v", patternErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if !strings.HasPrefix(err.Error(), "reconcile: expr pattern") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapPatternErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &PatternError{Engine: "cel", Err: base}

	err := wrapPatternError("expr", "key == 'x'", "a.b", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "cel" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "key == 'x'" || existing.Lookup != "a.b" {
		t.Fatalf("missing fields should be filled, got %+v", existing)
	}
}

func TestWrapEngineErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("reconcile: already wrapped")
	if got := wrapEngineError("cel", prefixed); got != prefixed {
		t.Fatalf("expected prefixed error untouched, got %v", got)
	}
	if got := wrapEngineError("cel", errors.New("raw")); got.Error() != "reconcile: cel pattern: raw" {
		t.Fatalf("unexpected wrap %q", got.Error())
	}
	if wrapEngineError("cel", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestDispatchErrorUnwraps(t *testing.T) {
	base := errors.New("sink down")
	err := error(&DispatchError{Handler: "items", Kind: EventMove, Lookup: "items", Err: base})
	if !errors.Is(err, base) {
		t.Fatalf("expected unwrap to base")
	}
	if !strings.Contains(err.Error(), `handler "items" move at items`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
	root := &DispatchError{Handler: "h", Kind: EventUpdate, Err: base}
	if !strings.Contains(root.Error(), "<root>") {
		t.Fatalf("expected root marker, got %q", root.Error())
	}
}
