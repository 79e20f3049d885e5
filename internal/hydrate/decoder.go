// Package hydrate decodes JSON and YAML documents into trees, running
// caller supplied hooks before the result is handed to a session.
package hydrate

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-reconcile/tree"
)

// Format names a document encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Context identifies the document being decoded.
type Context struct {
	Name   string
	Format Format
}

// PreHook rewrites the decoded tree before post hooks run. Returning nil
// keeps the current tree.
type PreHook func(Context, tree.Node) (tree.Node, error)

// PostHook validates the final tree.
type PostHook func(Context, tree.Node) error

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// Decoder converts raw documents into trees.
type Decoder struct {
	preHooks      []PreHook
	postHooks     []PostHook
	requireObject bool
}

// WithPreHook appends hook to the pre-decode chain.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook appends hook to the post-decode chain.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithRequireObject rejects documents whose root is not a map.
func WithRequireObject() DecoderOption {
	return func(d *Decoder) {
		d.requireObject = true
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// ErrEmptyDocument is returned for empty payloads.
var ErrEmptyDocument = errors.New("hydrate: document is empty")

// Decode parses payload according to ctx.Format. FormatAuto treats payloads
// starting with '{' or '[' as JSON and everything else as YAML.
func (d *Decoder) Decode(ctx Context, payload []byte) (tree.Node, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDocument, ctx.Name)
	}

	format := ctx.Format
	if format == FormatAuto {
		format = FormatYAML
		if trimmed[0] == '{' || trimmed[0] == '[' {
			format = FormatJSON
		}
		ctx.Format = format
	}

	var (
		current tree.Node
		err     error
	)
	switch format {
	case FormatJSON:
		current, err = tree.ParseJSON(trimmed)
	case FormatYAML:
		current, err = ParseYAML(trimmed)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("hydrate: decode %q: %w", ctx.Name, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.Name, err)
		}
		if next != nil {
			current = next
		}
	}

	if d.requireObject && current.Kind() != tree.KindMap {
		return nil, fmt.Errorf("hydrate: %q must be an object, got %s", ctx.Name, current.Kind())
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, current); err != nil {
			return nil, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.Name, err)
		}
	}
	return current, nil
}
