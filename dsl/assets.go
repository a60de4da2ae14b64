package dsl

import (
	"context"
	"fmt"
	"strings"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// AssetNode is an image or file field. The wire value is
// {_type, asset: {_ref, _type: "reference"}, ...fields}; the application
// value is a map with _type, asset (a docskema.Reference), the declared
// fields, and hotspot/crop when present.
type AssetNode struct {
	kind    string
	fields  FieldSet
	hotspot bool
	accept  string
	h       hooks
}

// Image returns an image asset field.
func Image(opts ...Option) AssetNode { return AssetNode{kind: "image", h: newHooks(opts)} }

// File returns a file asset field.
func File(opts ...Option) AssetNode { return AssetNode{kind: "file", h: newHooks(opts)} }

// WithFields declares extra fields stored alongside the asset (alt text,
// caption).
func (n AssetNode) WithFields(fs FieldSet) AssetNode { n.fields = fs; return n }

// Hotspot enables hotspot and crop editing for images.
func (n AssetNode) Hotspot() AssetNode { n.hotspot = true; return n }

// Accept sets the accepted MIME types, e.g. "image/png,image/jpeg".
func (n AssetNode) Accept(mime string) AssetNode { n.accept = mime; return n }

// Descriptor implements docskema.Node.
func (n AssetNode) Descriptor() *descriptor.Type {
	t := &descriptor.Type{Type: n.kind, Fields: n.fields.Descriptors()}
	if n.hotspot || n.accept != "" {
		t.Options = map[string]any{}
		if n.hotspot {
			t.Options["hotspot"] = true
		}
		if n.accept != "" {
			t.Options["accept"] = n.accept
		}
	}
	return n.h.describeNode(t, nil)
}

// Parse implements docskema.Node.
func (n AssetNode) Parse(ctx context.Context, raw any) (map[string]any, error) {
	return parseNode(ctx, n.h, raw, func(ctx context.Context, raw any) (map[string]any, error) {
		m, ok := asMap(raw)
		if !ok {
			return nil, invalidType(n.kind+" object", raw)
		}
		var iss docskema.Issues
		if tv, present := m[TypeField]; present && tv != n.kind {
			iss = append(iss, issue(field(TypeField), docskema.CodeInvalidLiteral, "expected "+n.kind, "expected", n.kind, "got", tv))
		}
		ref, err := parseAssetRef(m["asset"])
		if err != nil {
			iss = append(iss, docskema.Rebase("/asset", err)...)
		}
		out, fiss := n.fields.parse(ctx, m)
		iss = append(iss, fiss...)
		if len(iss) > 0 {
			return nil, iss
		}
		out[TypeField] = n.kind
		out["asset"] = ref
		for _, k := range []string{"hotspot", "crop"} {
			if v, ok := asMap(m[k]); ok {
				out[k] = v
			}
		}
		return out, nil
	}, nil)
}

func parseAssetRef(raw any) (docskema.Reference, error) {
	if raw == nil {
		return docskema.Reference{}, fail(docskema.CodeRequired, "asset reference missing")
	}
	m, ok := asMap(raw)
	if !ok {
		return docskema.Reference{}, invalidType("asset reference", raw)
	}
	if tv, present := m[TypeField]; present && tv != "reference" {
		return docskema.Reference{}, docskema.Issues{issue(field(TypeField), docskema.CodeInvalidLiteral, "expected reference", "expected", "reference", "got", tv)}
	}
	id, _ := m[RefField].(string)
	if id == "" {
		return docskema.Reference{}, docskema.Issues{issue(field(RefField), docskema.CodeRequired, "")}
	}
	return docskema.Reference{Ref: id}, nil
}

// Mock implements docskema.Node. Asset ids follow the content store's
// naming: image-<hash>-<w>x<h>-<ext> and file-<hash>-<ext>.
func (n AssetNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		hash := strings.ReplaceAll(g.ID(), "-", "")
		var id string
		if n.kind == "image" {
			id = fmt.Sprintf("image-%s-%dx%d-jpg", hash, g.Int(200, 2400), g.Int(200, 2400))
		} else {
			id = fmt.Sprintf("file-%s-pdf", hash)
		}
		out := n.fields.mock(mc)
		out[TypeField] = n.kind
		out["asset"] = map[string]any{TypeField: "reference", RefField: id}
		return out
	})
}

// Resolve implements docskema.Resolvable. Asset references are left as is;
// declared fields are resolved.
func (n AssetNode) Resolve(ctx context.Context, v map[string]any, r docskema.Resolver) (any, error) {
	return n.fields.resolve(ctx, v, r)
}

// Any implements Child.
func (n AssetNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.resolve = resolveMap(n.Resolve)
	ad.keyed = true
	ad.tag = n.kind
	return ad
}
