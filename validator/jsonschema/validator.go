// Package jsonschema validates documents with santhosh-tekuri/jsonschema and
// reports every leaf violation as a reconcile.ValidationError addressed by a
// "#/a/b" root path.
package jsonschema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	sjs "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-reconcile"
	"github.com/goliatone/go-reconcile/tree"
)

const resourceURL = "reconcile://schema.json"

// Option configures a Validator.
type Option func(*Validator)

// WithPrinter localises violation messages.
func WithPrinter(p *message.Printer) Option {
	return func(v *Validator) {
		if p != nil {
			v.printer = p
		}
	}
}

// WithDraft selects the draft used for schemas without $schema.
func WithDraft(draft *sjs.Draft) Option {
	return func(v *Validator) {
		v.draft = draft
	}
}

// Validator implements reconcile.Validator. Compiled schemas are cached by
// their canonical JSON.
type Validator struct {
	printer *message.Printer
	draft   *sjs.Draft

	mu       sync.Mutex
	compiled map[string]*sjs.Schema
}

var _ reconcile.Validator = (*Validator)(nil)

// New returns a validator printing English messages.
func New(opts ...Option) *Validator {
	v := &Validator{
		printer:  message.NewPrinter(language.English),
		draft:    sjs.Draft2020,
		compiled: map[string]*sjs.Schema{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate checks document against schema. The schema may be raw JSON
// ([]byte or string), a tree.Node or plain Go data. Schema nodes are encoded
// as is, "$" keys included.
func (v *Validator) Validate(_ context.Context, document any, schema any) ([]reconcile.ValidationError, error) {
	compiled, err := v.compile(schema)
	if err != nil {
		return nil, err
	}
	instance, err := normalize(document)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: document: %w", err)
	}

	err = compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *sjs.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("jsonschema: validate: %w", err)
	}
	var out []reconcile.ValidationError
	v.collect(verr, &out)
	return out, nil
}

func (v *Validator) collect(verr *sjs.ValidationError, out *[]reconcile.ValidationError) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			v.collect(cause, out)
		}
		return
	}
	*out = append(*out, reconcile.ValidationError{
		Path:    tree.PathToRoot(verr.InstanceLocation),
		Code:    keyword(verr.ErrorKind.KeywordPath()),
		Message: verr.ErrorKind.LocalizedString(v.printer),
	})
}

func keyword(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func (v *Validator) compile(schema any) (*sjs.Schema, error) {
	if schema == nil {
		return nil, fmt.Errorf("jsonschema: schema is required")
	}
	raw, err := rawJSON(schema)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: schema: %w", err)
	}
	sum := sha256.Sum256(raw)
	key := hex.EncodeToString(sum[:])

	v.mu.Lock()
	defer v.mu.Unlock()
	if compiled, ok := v.compiled[key]; ok {
		return compiled, nil
	}

	doc, err := sjs.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("jsonschema: schema: %w", err)
	}
	c := sjs.NewCompiler()
	c.DefaultDraft(v.draft)
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("jsonschema: schema: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: compile: %w", err)
	}
	v.compiled[key] = compiled
	return compiled, nil
}

func rawJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(strings.TrimSpace(v)), nil
	case json.RawMessage:
		return v, nil
	case tree.Node:
		// $ref, $defs and friends are schema keywords here, not annotations.
		return tree.MarshalJSON(v)
	default:
		return json.Marshal(v)
	}
}

// normalize round-trips document through JSON so numbers reach the
// validator as json.Number.
func normalize(document any) (any, error) {
	if node, ok := document.(tree.Node); ok {
		document = tree.Export(node)
	}
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	return sjs.UnmarshalJSON(bytes.NewReader(raw))
}
