package dsl

import (
	"context"
	"strings"
	"unicode/utf8"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// SlugNode is a URL slug leaf. The wire value is {_type: "slug", current};
// the application value is the current string.
type SlugNode struct {
	source string
	maxLen int
	h      hooks
}

// Slug returns a slug leaf.
func Slug(opts ...Option) SlugNode { return SlugNode{maxLen: -1, h: newHooks(opts)} }

// Source names the sibling field the editor derives the slug from.
func (n SlugNode) Source(field string) SlugNode { n.source = field; return n }

// Max allows at most k characters.
func (n SlugNode) Max(k int) SlugNode { n.maxLen = k; return n }

// Descriptor implements docskema.Node.
func (n SlugNode) Descriptor() *descriptor.Type {
	t := &descriptor.Type{Type: "slug"}
	if n.source != "" || n.maxLen >= 0 {
		t.Options = map[string]any{}
		if n.source != "" {
			t.Options["source"] = n.source
		}
		if n.maxLen >= 0 {
			t.Options["maxLength"] = n.maxLen
		}
	}
	return n.h.describeNode(t, nil)
}

// Parse implements docskema.Node.
func (n SlugNode) Parse(ctx context.Context, raw any) (string, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (string, error) {
		m, ok := asMap(raw)
		if !ok {
			return "", invalidType("slug object", raw)
		}
		if tv, present := m[TypeField]; present && tv != "slug" {
			return "", docskema.Issues{issue(field(TypeField), docskema.CodeInvalidLiteral, "expected slug", "expected", "slug", "got", tv)}
		}
		cur, present := m["current"]
		if !present || cur == nil {
			return "", docskema.Issues{issue("/current", docskema.CodeRequired, "")}
		}
		s, ok := cur.(string)
		if !ok {
			return "", docskema.Rebase("/current", invalidType("string", cur))
		}
		if iss := n.check(s); len(iss) > 0 {
			return "", docskema.Rebase("/current", iss)
		}
		return s, nil
	}, n.check)
}

func (n SlugNode) check(s string) docskema.Issues {
	l := utf8.RuneCountInString(s)
	if l == 0 {
		return fail(docskema.CodeTooShort, "slug must not be empty", "min", 1, "got", 0)
	}
	if n.maxLen >= 0 && l > n.maxLen {
		return fail(docskema.CodeTooLong, "", "max", n.maxLen, "got", l)
	}
	return nil
}

// Mock implements docskema.Node.
func (n SlugNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		hi := 40
		if n.maxLen >= 0 && n.maxLen < hi {
			hi = n.maxLen
		}
		s := slugify(g.Words(1, hi))
		if s == "" {
			s = g.Key()
		}
		if len(s) > hi {
			s = strings.TrimRight(s[:hi], "-")
		}
		return map[string]any{TypeField: "slug", "current": s}
	})
}

// slugify lowercases s and joins its alphanumeric runs with hyphens.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

// Any implements Child.
func (n SlugNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.tag = "slug"
	return ad
}

// Point is the application value of a geopoint leaf.
type Point struct {
	Lat float64  `json:"lat" yaml:"lat"`
	Lng float64  `json:"lng" yaml:"lng"`
	Alt *float64 `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// GeopointNode is a geographic coordinate leaf. The wire value is
// {_type: "geopoint", lat, lng, alt?}. It is a leaf, so array elements of
// this kind get no _key.
type GeopointNode struct{ h hooks }

// Geopoint returns a geopoint leaf.
func Geopoint(opts ...Option) GeopointNode { return GeopointNode{h: newHooks(opts)} }

// Descriptor implements docskema.Node.
func (n GeopointNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: "geopoint"}, nil)
}

var (
	latitude  = Number().Min(-90).Max(90)
	longitude = Number().Min(-180).Max(180)
)

// Parse implements docskema.Node.
func (n GeopointNode) Parse(ctx context.Context, raw any) (Point, error) {
	return parseNode(ctx, n.h, raw, func(ctx context.Context, raw any) (Point, error) {
		m, ok := asMap(raw)
		if !ok {
			return Point{}, invalidType("geopoint object", raw)
		}
		var iss docskema.Issues
		if tv, present := m[TypeField]; present && tv != "geopoint" {
			iss = append(iss, issue(field(TypeField), docskema.CodeInvalidLiteral, "expected geopoint", "expected", "geopoint", "got", tv))
		}
		var g Point
		coord := func(name string, node NumberNode, dst *float64) {
			v, present := m[name]
			if !present || v == nil {
				iss = append(iss, issue(field(name), docskema.CodeRequired, ""))
				return
			}
			f, err := node.Parse(ctx, v)
			if err != nil {
				iss = append(iss, docskema.Rebase(field(name), err)...)
				return
			}
			*dst = f
		}
		coord("lat", latitude, &g.Lat)
		coord("lng", longitude, &g.Lng)
		if v, present := m["alt"]; present && v != nil {
			f, err := Number().Parse(ctx, v)
			if err != nil {
				iss = append(iss, docskema.Rebase("/alt", err)...)
			} else {
				g.Alt = &f
			}
		}
		if len(iss) > 0 {
			return Point{}, iss
		}
		return g, nil
	}, n.check)
}

func (GeopointNode) check(g Point) docskema.Issues {
	var iss docskema.Issues
	if err := latitude.check(g.Lat); len(err) > 0 {
		iss = append(iss, docskema.Rebase("/lat", err)...)
	}
	if err := longitude.check(g.Lng); len(err) > 0 {
		iss = append(iss, docskema.Rebase("/lng", err)...)
	}
	return iss
}

// Mock implements docskema.Node.
func (n GeopointNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		return map[string]any{TypeField: "geopoint", "lat": g.Latitude(), "lng": g.Longitude()}
	})
}

// Any implements Child.
func (n GeopointNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.tag = "geopoint"
	return ad
}
