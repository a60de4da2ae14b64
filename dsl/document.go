package dsl

import (
	"context"
	"time"

	"github.com/pkg/errors"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/codec"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// DocumentNode is a top-level named record. Besides its declared fields,
// every document value carries the identity fields _id, _type (equal to the
// document name), _createdAt, _updatedAt (time.Time once parsed) and _rev.
type DocumentNode struct {
	name    string
	fields  FieldSet
	preview *descriptor.Preview
	h       hooks
}

// Document returns a document named name over fs. It panics when name is
// empty.
func Document(name string, fs FieldSet, opts ...Option) DocumentNode {
	if name == "" {
		panic(errors.New("dsl: document requires a name"))
	}
	return DocumentNode{name: name, fields: fs, h: newHooks(opts)}
}

// Name returns the document type name.
func (d DocumentNode) Name() string { return d.name }

// Fields returns the declared (non-identity) fields.
func (d DocumentNode) Fields() FieldSet { return d.fields }

// Preview attaches a preview projection emitted with the descriptor.
func (d DocumentNode) Preview(p descriptor.Preview) DocumentNode {
	sel := make(map[string]string, len(p.Select))
	for k, v := range p.Select {
		sel[k] = v
	}
	d.preview = &descriptor.Preview{Select: sel, Prepare: p.Prepare}
	return d
}

// RenderPreview applies the preview projection to a document value. It
// returns false when the document has no preview.
func (d DocumentNode) RenderPreview(v map[string]any) (descriptor.PreviewValue, bool) {
	if d.preview == nil {
		return descriptor.PreviewValue{}, false
	}
	return d.preview.Render(v), true
}

// Descriptor implements docskema.Node.
func (d DocumentNode) Descriptor() *descriptor.Type {
	t := &descriptor.Type{Type: "document", Name: d.name, Fields: d.fields.Descriptors()}
	if d.preview != nil {
		p := *d.preview
		t.Preview = &p
	}
	return d.h.describeNode(t, nil)
}

var (
	identityString = String().Min(1)
	identityTime   = DateTime()
)

// Parse implements docskema.Node.
func (d DocumentNode) Parse(ctx context.Context, raw any) (map[string]any, error) {
	return parseNode(ctx, d.h, raw, func(ctx context.Context, raw any) (map[string]any, error) {
		m, ok := asMap(raw)
		if !ok {
			return nil, invalidType("document object", raw)
		}
		var iss docskema.Issues
		switch tv, present := m[TypeField]; {
		case !present || tv == nil:
			iss = append(iss, issue(field(TypeField), docskema.CodeRequired, "expected "+d.name, "field", TypeField))
		case tv != d.name:
			iss = append(iss, issue(field(TypeField), docskema.CodeInvalidLiteral, "expected "+d.name, "expected", d.name, "got", tv))
		}
		out, fiss := d.fields.parse(ctx, m)
		identity := func(name string, n Child) {
			rv, present := m[name]
			if !present || rv == nil {
				iss = append(iss, issue(field(name), docskema.CodeRequired, "", "field", name))
				return
			}
			v, err := n.Any().Parse(ctx, rv)
			if err != nil {
				iss = append(iss, docskema.Rebase(field(name), err)...)
				return
			}
			out[name] = v
		}
		identity(IDField, identityString)
		identity(CreatedAtField, identityTime)
		identity(UpdatedAtField, identityTime)
		identity(RevField, identityString)
		iss = append(iss, fiss...)
		if len(iss) > 0 {
			return nil, iss
		}
		out[TypeField] = d.name
		return out, nil
	}, d.check)
}

func (d DocumentNode) check(v map[string]any) docskema.Issues {
	if v[TypeField] != d.name {
		return docskema.Issues{issue(field(TypeField), docskema.CodeInvalidLiteral, "expected "+d.name, "expected", d.name, "got", v[TypeField])}
	}
	return nil
}

// Mock implements docskema.Node. _createdAt never follows _updatedAt.
func (d DocumentNode) Mock(mc mock.Context) any {
	return d.h.mockNode(mc, func(mc mock.Context) any {
		out := d.fields.mock(mc)
		g := mc.Field(IDField).Gen()
		lo, hi := mc.TimeRange()
		created := mc.Field(CreatedAtField).Gen().Time(lo, hi)
		updated := mc.Field(UpdatedAtField).Gen().Time(created, hi)
		out[IDField] = g.ID()
		out[TypeField] = d.name
		out[CreatedAtField] = codec.FormatRFC3339(created)
		out[UpdatedAtField] = codec.FormatRFC3339(updated)
		out[RevField] = mc.Field(RevField).Gen().Revision()
		return out
	})
}

// Resolve implements docskema.Resolvable. The document name is pushed on the
// resolution stack of ctx so resolvers can skip references back to it.
func (d DocumentNode) Resolve(ctx context.Context, v map[string]any, r docskema.Resolver) (any, error) {
	ctx = docskema.WithResolving(ctx, d.name)
	out, err := d.fields.resolve(ctx, v, r)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s", d.name)
	}
	return out, nil
}

// ResolveDocument is Resolve with the result typed as a map.
func (d DocumentNode) ResolveDocument(ctx context.Context, v map[string]any, r docskema.Resolver) (map[string]any, error) {
	out, err := d.Resolve(ctx, v, r)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	return m, nil
}

// Any implements Child.
func (d DocumentNode) Any() AnyNode {
	ad := typed(d.Descriptor, d.Parse, d.Mock, d)
	ad.resolve = resolveMap(d.Resolve)
	ad.tag = d.name
	return ad
}

// CreatedAt returns the parsed _createdAt of a document value.
func CreatedAt(v map[string]any) time.Time { t, _ := v[CreatedAtField].(time.Time); return t }

// UpdatedAt returns the parsed _updatedAt of a document value.
func UpdatedAt(v map[string]any) time.Time { t, _ := v[UpdatedAtField].(time.Time); return t }
