package reconcile

import (
	"context"
	"fmt"
)

// ValidationError is a schema violation located by a "#/a/b" root address.
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RootPath implements tree.Rooted.
func (e ValidationError) RootPath() string { return e.Path }

func (e ValidationError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Message, e.Code)
}

// Validator checks a document against a schema. The document is plain Go
// data as produced by tree.Export. Violations are returned as data; the
// error is reserved for validators that cannot run at all.
type Validator interface {
	Validate(ctx context.Context, document any, schema any) ([]ValidationError, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, document any, schema any) ([]ValidationError, error)

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, document any, schema any) ([]ValidationError, error) {
	return f(ctx, document, schema)
}
