package dsl

import (
	"context"
	"slices"

	"github.com/pkg/errors"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// ReferenceNode is a pointer to a document by id. The wire value is
// {_ref, _type: "reference", _weak?}; the application value is a
// docskema.Reference. Targets are appended with To/ToName; a name already
// present is not added twice.
type ReferenceNode struct {
	targets []string
	weak    bool
	h       hooks
}

// Reference returns a reference with no targets yet.
func Reference(opts ...Option) ReferenceNode { return ReferenceNode{h: newHooks(opts)} }

// To adds d as an allowed target.
func (n ReferenceNode) To(d DocumentNode) ReferenceNode { return n.ToName(d.Name()) }

// ToName adds the document type name as an allowed target. It panics when
// name is empty.
func (n ReferenceNode) ToName(name string) ReferenceNode {
	if name == "" {
		panic(errors.New("dsl: empty reference target"))
	}
	if slices.Contains(n.targets, name) {
		return n
	}
	next := make([]string, len(n.targets), len(n.targets)+1)
	copy(next, n.targets)
	n.targets = append(next, name)
	return n
}

// Weak marks the reference weak: the target may not exist.
func (n ReferenceNode) Weak() ReferenceNode { n.weak = true; return n }

// Targets returns the allowed target names in declaration order.
func (n ReferenceNode) Targets() []string { return append([]string(nil), n.targets...) }

// Descriptor implements docskema.Node.
func (n ReferenceNode) Descriptor() *descriptor.Type {
	to := make([]*descriptor.Type, 0, len(n.targets))
	for _, name := range n.targets {
		to = append(to, &descriptor.Type{Type: name})
	}
	return n.h.describeNode(&descriptor.Type{Type: "reference", To: to, Weak: n.weak}, nil)
}

// Parse implements docskema.Node.
func (n ReferenceNode) Parse(ctx context.Context, raw any) (docskema.Reference, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (docskema.Reference, error) {
		m, ok := asMap(raw)
		if !ok {
			return docskema.Reference{}, invalidType("reference object", raw)
		}
		var iss docskema.Issues
		switch tv, present := m[TypeField]; {
		case !present:
			iss = append(iss, issue(field(TypeField), docskema.CodeRequired, ""))
		case tv != "reference":
			iss = append(iss, issue(field(TypeField), docskema.CodeInvalidLiteral, "expected reference", "expected", "reference", "got", tv))
		}
		var ref docskema.Reference
		switch rv := m[RefField].(type) {
		case nil:
			iss = append(iss, issue(field(RefField), docskema.CodeRequired, ""))
		case string:
			ref.Ref = rv
			iss = append(iss, n.check(ref)...)
		default:
			iss = append(iss, docskema.Rebase(field(RefField), invalidType("string", rv))...)
		}
		if wv, present := m[WeakField]; present && wv != nil {
			b, ok := wv.(bool)
			if !ok {
				iss = append(iss, docskema.Rebase(field(WeakField), invalidType("boolean", wv))...)
			}
			ref.Weak = b
		}
		if len(iss) > 0 {
			return docskema.Reference{}, iss
		}
		return ref, nil
	}, n.check)
}

func (n ReferenceNode) check(ref docskema.Reference) docskema.Issues {
	if ref.Ref == "" {
		return docskema.Issues{issue(field(RefField), docskema.CodeTooShort, "reference id must not be empty", "min", 1)}
	}
	return nil
}

// Mock implements docskema.Node. The id is freshly generated and does not
// name an existing document.
func (n ReferenceNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		out := map[string]any{RefField: mc.Gen().ID(), TypeField: "reference"}
		if n.weak {
			out[WeakField] = true
		}
		return out
	})
}

// Resolve implements docskema.Resolvable. With a nil resolver, or when the
// resolver declines, the reference is returned unchanged.
func (n ReferenceNode) Resolve(ctx context.Context, ref docskema.Reference, r docskema.Resolver) (any, error) {
	if r == nil {
		return ref, nil
	}
	v, ok, err := r.ResolveReference(ctx, ref, n.Targets())
	if err != nil {
		return nil, errors.Wrapf(err, "resolve reference %s", ref.Ref)
	}
	if !ok {
		return ref, nil
	}
	return v, nil
}

// Any implements Child.
func (n ReferenceNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.keyed = true
	ad.tag = "reference"
	ad.withKey = func(v any, key string) any {
		ref, ok := v.(docskema.Reference)
		if !ok {
			return v
		}
		ref.Key = key
		return ref
	}
	ad.resolve = func(ctx context.Context, v any, r docskema.Resolver) (any, error) {
		ref, ok := v.(docskema.Reference)
		if !ok {
			return v, nil
		}
		return n.Resolve(ctx, ref, r)
	}
	return ad
}
