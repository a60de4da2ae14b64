package dsl

import (
	"context"

	"github.com/pkg/errors"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// ObjectNode is an anonymous record of named fields. Its application value
// is a map holding the declared fields only.
type ObjectNode struct {
	fields FieldSet
	h      hooks
}

// Object returns an anonymous object over fs.
func Object(fs FieldSet, opts ...Option) ObjectNode {
	return ObjectNode{fields: fs, h: newHooks(opts)}
}

// Fields returns the object's field set.
func (n ObjectNode) Fields() FieldSet { return n.fields }

// Descriptor implements docskema.Node.
func (n ObjectNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: "object", Fields: n.fields.Descriptors()}, nil)
}

// Parse implements docskema.Node.
func (n ObjectNode) Parse(ctx context.Context, raw any) (map[string]any, error) {
	return parseNode(ctx, n.h, raw, func(ctx context.Context, raw any) (map[string]any, error) {
		m, ok := asMap(raw)
		if !ok {
			return nil, invalidType("object", raw)
		}
		out, iss := n.fields.parse(ctx, m)
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}, nil)
}

// Mock implements docskema.Node.
func (n ObjectNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any { return n.fields.mock(mc) })
}

// Resolve implements docskema.Resolvable.
func (n ObjectNode) Resolve(ctx context.Context, v map[string]any, r docskema.Resolver) (any, error) {
	return n.fields.resolve(ctx, v, r)
}

// Any implements Child.
func (n ObjectNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.resolve = resolveMap(n.Resolve)
	ad.keyed = true
	ad.covers = n.fields.covers
	return ad
}

// NamedObjectNode is an object with a type name. Its wire and application
// values carry _type set to the name, which also lets it be referenced from
// elsewhere in a schema by name (see Ref).
type NamedObjectNode struct {
	name   string
	fields FieldSet
	h      hooks
}

// NamedObject returns a named object over fs. It panics when name is empty.
func NamedObject(name string, fs FieldSet, opts ...Option) NamedObjectNode {
	if name == "" {
		panic(errors.New("dsl: named object requires a name"))
	}
	return NamedObjectNode{name: name, fields: fs, h: newHooks(opts)}
}

// Name returns the type name.
func (n NamedObjectNode) Name() string { return n.name }

// Fields returns the object's field set.
func (n NamedObjectNode) Fields() FieldSet { return n.fields }

// Descriptor implements docskema.Node.
func (n NamedObjectNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: "object", Name: n.name, Fields: n.fields.Descriptors()}, nil)
}

// Parse implements docskema.Node. An absent _type is tolerated; a different
// one is rejected.
func (n NamedObjectNode) Parse(ctx context.Context, raw any) (map[string]any, error) {
	return parseNode(ctx, n.h, raw, func(ctx context.Context, raw any) (map[string]any, error) {
		m, ok := asMap(raw)
		if !ok {
			return nil, invalidType("object", raw)
		}
		var iss docskema.Issues
		if tv, present := m[TypeField]; present && tv != n.name {
			iss = append(iss, issue(field(TypeField), docskema.CodeInvalidLiteral, "expected "+n.name, "expected", n.name, "got", tv))
		}
		out, fiss := n.fields.parse(ctx, m)
		iss = append(iss, fiss...)
		if len(iss) > 0 {
			return nil, iss
		}
		out[TypeField] = n.name
		return out, nil
	}, nil)
}

// Mock implements docskema.Node.
func (n NamedObjectNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		out := n.fields.mock(mc)
		out[TypeField] = n.name
		return out
	})
}

// Resolve implements docskema.Resolvable.
func (n NamedObjectNode) Resolve(ctx context.Context, v map[string]any, r docskema.Resolver) (any, error) {
	return n.fields.resolve(ctx, v, r)
}

// Any implements Child.
func (n NamedObjectNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.resolve = resolveMap(n.Resolve)
	ad.keyed = true
	ad.tag = n.name
	ad.covers = n.fields.covers
	return ad
}

// Ref returns a node that points at n by name. Its descriptor is only the
// type name; parse, mock and resolve delegate to n. Options apply to the
// pointer's own descriptor.
func (n NamedObjectNode) Ref(opts ...Option) ObjectRefNode {
	return ObjectRefNode{target: n, h: newHooks(opts)}
}

// ObjectRefNode is a by-name pointer to a NamedObjectNode.
type ObjectRefNode struct {
	target NamedObjectNode
	h      hooks
}

// Target returns the named object pointed at.
func (n ObjectRefNode) Target() NamedObjectNode { return n.target }

// Descriptor implements docskema.Node.
func (n ObjectRefNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: n.target.name}, nil)
}

// Parse implements docskema.Node.
func (n ObjectRefNode) Parse(ctx context.Context, raw any) (map[string]any, error) {
	return parseNode(ctx, n.h, raw, n.target.Parse, nil)
}

// Mock implements docskema.Node.
func (n ObjectRefNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, n.target.Mock)
}

// Resolve implements docskema.Resolvable.
func (n ObjectRefNode) Resolve(ctx context.Context, v map[string]any, r docskema.Resolver) (any, error) {
	return n.target.Resolve(ctx, v, r)
}

// Any implements Child.
func (n ObjectRefNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.resolve = resolveMap(n.Resolve)
	ad.keyed = true
	ad.tag = n.target.name
	ad.covers = n.target.fields.covers
	return ad
}

func resolveMap(fn func(context.Context, map[string]any, docskema.Resolver) (any, error)) func(context.Context, any, docskema.Resolver) (any, error) {
	return func(ctx context.Context, v any, r docskema.Resolver) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		return fn(ctx, m, r)
	}
}
