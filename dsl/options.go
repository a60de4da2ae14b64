package dsl

import (
	"context"
	"fmt"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/i18n"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

// Option configures a node at construction. Options override the default
// derivation of one of the node's artifacts or attach descriptor metadata.
type Option func(*hooks)

type hooks struct {
	parse           func(ctx context.Context, raw any) (any, error)
	skipConstraints bool
	mock            func(mc mock.Context) any
	describe        []func(*descriptor.Type) *descriptor.Type
	validation      rules.Func
	meta            []func(*descriptor.Type)
}

func newHooks(opts []Option) hooks {
	var h hooks
	for _, o := range opts {
		if o != nil {
			o(&h)
		}
	}
	return h
}

// ParseWith replaces the default parser. Constraint checks declared on the
// node still run against the returned value unless SkipConstraints is also
// given.
func ParseWith[T any](fn func(ctx context.Context, raw any) (T, error)) Option {
	return func(h *hooks) {
		if fn == nil {
			h.parse = nil
			return
		}
		h.parse = func(ctx context.Context, raw any) (any, error) { return fn(ctx, raw) }
	}
}

// SkipConstraints opts a custom parser out of the node's constraint checks.
// The descriptor still carries the constraint-derived rules.
func SkipConstraints() Option { return func(h *hooks) { h.skipConstraints = true } }

// MockWith replaces the default mock producer. The returned raw value must
// satisfy the node's parser.
func MockWith(fn func(mc mock.Context) any) Option { return func(h *hooks) { h.mock = fn } }

// DescribeWith post-processes the derived descriptor. Several calls apply in
// order.
func DescribeWith(fn func(t *descriptor.Type) *descriptor.Type) Option {
	return func(h *hooks) {
		if fn != nil {
			h.describe = append(h.describe, fn)
		}
	}
}

// Validation folds fn after the constraint-derived rules. rules.Custom
// predicates recorded by fn are also enforced at parse.
func Validation(fn rules.Func) Option {
	return func(h *hooks) { h.validation = rules.Compose(h.validation, fn) }
}

// Title sets the descriptor title.
func Title(s string) Option { return metaOption(func(t *descriptor.Type) { t.Title = s }) }

// Description sets the descriptor description.
func Description(s string) Option {
	return metaOption(func(t *descriptor.Type) { t.Description = s })
}

// Hidden marks the descriptor hidden.
func Hidden() Option { return metaOption(func(t *descriptor.Type) { t.Hidden = true }) }

// ReadOnly marks the descriptor read-only.
func ReadOnly() Option { return metaOption(func(t *descriptor.Type) { t.ReadOnly = true }) }

// InitialValue sets the descriptor initial value.
func InitialValue(v any) Option {
	return metaOption(func(t *descriptor.Type) { t.InitialValue = v })
}

// Meta sets an arbitrary descriptor key, passed through unchanged.
func Meta(key string, v any) Option {
	return metaOption(func(t *descriptor.Type) {
		if t.Extra == nil {
			t.Extra = map[string]any{}
		}
		t.Extra[key] = v
	})
}

func metaOption(fn func(*descriptor.Type)) Option {
	return func(h *hooks) { h.meta = append(h.meta, fn) }
}

// describeNode finishes a derived descriptor: metadata, folded validation,
// then caller post-processors.
func (h hooks) describeNode(t *descriptor.Type, constraints rules.Func) *descriptor.Type {
	for _, m := range h.meta {
		m(t)
	}
	t.Validation = rules.Compose(constraints, t.Validation, h.validation)
	for _, fn := range h.describe {
		if out := fn(t); out != nil {
			t = out
		}
	}
	return t
}

func (h hooks) mockNode(mc mock.Context, def func(mock.Context) any) any {
	if h.mock != nil {
		return h.mock(mc)
	}
	return def(mc)
}

// parseNode runs the default or custom parser followed by the custom rule
// predicates. check validates a custom parser's result against the node's
// declared constraints.
func parseNode[T any](ctx context.Context, h hooks, raw any, def func(context.Context, any) (T, error), check func(T) docskema.Issues) (T, error) {
	var zero T
	var v T
	if h.parse != nil {
		out, err := h.parse(ctx, raw)
		if err != nil {
			if iss, ok := docskema.AsIssues(err); ok {
				return zero, iss
			}
			return zero, docskema.Issues{{Path: "/", Code: docskema.CodeParseError, Message: err.Error(), Cause: err}}
		}
		t, ok := out.(T)
		if !ok {
			return zero, docskema.Issues{{Path: "/", Code: docskema.CodeInvalidType, Message: i18n.T(docskema.CodeInvalidType, nil), Hint: fmt.Sprintf("custom parser returned %T", out)}}
		}
		v = t
		if !h.skipConstraints && check != nil {
			if iss := check(v); len(iss) > 0 {
				return zero, iss
			}
		}
	} else {
		t, err := def(ctx, raw)
		if err != nil {
			return zero, err
		}
		v = t
	}
	if h.skipConstraints {
		return v, nil
	}
	if errs := rules.Check(h.validation, v); len(errs) > 0 {
		iss := make(docskema.Issues, 0, len(errs))
		for _, e := range errs {
			iss = append(iss, docskema.Issue{Path: "/", Code: docskema.CodeCustom, Message: e.Error(), Cause: e})
		}
		return zero, iss
	}
	return v, nil
}
