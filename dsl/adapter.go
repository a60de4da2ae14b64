package dsl

import (
	"context"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// Child is accepted wherever a container takes a nested node. Every builder
// in this package implements it; wrap other Node implementations with Of.
type Child interface {
	Any() AnyNode
}

// AnyNode adapts a typed node to an any-typed wrapper so containers can hold
// heterogeneous children. It keeps the original node for introspection.
type AnyNode struct {
	descriptor func() *descriptor.Type
	parse      func(context.Context, any) (any, error)
	mock       func(mock.Context) any
	resolve    func(context.Context, any, docskema.Resolver) (any, error)
	// keyed marks record-shaped nodes whose array elements carry a _key.
	keyed   bool
	withKey func(v any, key string) any
	// tag is the _type a raw value of this node carries, if any.
	tag string
	// covers reports whether every authored key of a raw record is a
	// declared field. Only object-shaped nodes set it.
	covers func(map[string]any) bool
	orig   any
}

// Of adapts an arbitrary Node[T]. When n also implements Resolvable[T], its
// Resolve is wired through.
func Of[T any](n docskema.Node[T]) AnyNode {
	if c, ok := any(n).(Child); ok {
		return c.Any()
	}
	ad := AnyNode{
		descriptor: n.Descriptor,
		parse:      func(ctx context.Context, raw any) (any, error) { return n.Parse(ctx, raw) },
		mock:       n.Mock,
		orig:       n,
	}
	if r, ok := any(n).(docskema.Resolvable[T]); ok {
		ad.resolve = func(ctx context.Context, v any, res docskema.Resolver) (any, error) {
			tv, ok := v.(T)
			if !ok {
				return v, nil
			}
			return r.Resolve(ctx, tv, res)
		}
	}
	return ad
}

// Any implements Child.
func (a AnyNode) Any() AnyNode { return a }

// Orig returns the builder or Node the adapter was created from.
func (a AnyNode) Orig() any { return a.orig }

// Keyed reports whether array elements of this node carry a _key.
func (a AnyNode) Keyed() bool { return a.keyed }

// Tag returns the _type literal raw values of this node carry, or "".
func (a AnyNode) Tag() string { return a.tag }

func (a AnyNode) coversAll(raw any) bool {
	m, ok := raw.(map[string]any)
	return ok && a.covers != nil && a.covers(m)
}

// Descriptor implements docskema.Node.
func (a AnyNode) Descriptor() *descriptor.Type {
	if a.descriptor == nil {
		return &descriptor.Type{Type: "unknown"}
	}
	return a.descriptor()
}

// Parse implements docskema.Node.
func (a AnyNode) Parse(ctx context.Context, raw any) (any, error) {
	if a.parse == nil {
		return raw, nil
	}
	return a.parse(ctx, raw)
}

// Mock implements docskema.Node.
func (a AnyNode) Mock(mc mock.Context) any {
	if a.mock == nil {
		return nil
	}
	return a.mock(mc)
}

// Resolve implements docskema.Resolvable. Nodes without references return v
// unchanged.
func (a AnyNode) Resolve(ctx context.Context, v any, r docskema.Resolver) (any, error) {
	if a.resolve == nil || v == nil {
		return v, nil
	}
	return a.resolve(ctx, v, r)
}

// attachKey places key on an element value of a keyed node.
func (a AnyNode) attachKey(v any, key string) any {
	if !a.keyed || key == "" {
		return v
	}
	if a.withKey != nil {
		return a.withKey(v, key)
	}
	return mapWithKey(v, key)
}

func mapWithKey(v any, key string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m)+1)
	for k, x := range m {
		out[k] = x
	}
	out[KeyField] = key
	return out
}

// typed wires a builder's typed parse into an AnyNode.
func typed[T any](desc func() *descriptor.Type, parse func(context.Context, any) (T, error), mk func(mock.Context) any, orig any) AnyNode {
	return AnyNode{
		descriptor: desc,
		parse:      func(ctx context.Context, raw any) (any, error) { return parse(ctx, raw) },
		mock:       mk,
		orig:       orig,
	}
}
