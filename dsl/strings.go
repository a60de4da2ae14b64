package dsl

import (
	"context"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"unicode/utf8"

	"github.com/pkg/errors"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

// StringNode is a string or text leaf. Constraint methods return a copy.
type StringNode struct {
	kind        string
	minLen      int
	maxLen      int
	length      int
	pattern     *regexp.Regexp
	patternName string
	list        []string
	rows        int
	h           hooks
}

// String returns a single-line string leaf.
func String(opts ...Option) StringNode {
	return StringNode{kind: "string", minLen: -1, maxLen: -1, length: -1, h: newHooks(opts)}
}

// Text returns a multi-line string leaf.
func Text(opts ...Option) StringNode {
	n := String(opts...)
	n.kind = "text"
	return n
}

// Min requires at least k characters.
func (n StringNode) Min(k int) StringNode { n.minLen = k; return n }

// Max allows at most k characters.
func (n StringNode) Max(k int) StringNode { n.maxLen = k; return n }

// Length requires exactly k characters.
func (n StringNode) Length(k int) StringNode { n.length = k; return n }

// Regex requires the value to match pattern. It panics when pattern does not
// compile.
func (n StringNode) Regex(pattern string, name ...string) StringNode {
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(errors.Wrapf(err, "dsl: invalid pattern %q", pattern))
	}
	n.pattern = re
	n.patternName = ""
	if len(name) > 0 {
		n.patternName = name[0]
	}
	return n
}

// List restricts the value to one of values.
func (n StringNode) List(values ...string) StringNode {
	n.list = append([]string(nil), values...)
	return n
}

// Rows sets the editor height of a text leaf.
func (n StringNode) Rows(k int) StringNode { n.rows = k; return n }

func (n StringNode) rules() rules.Func {
	if n.minLen < 0 && n.maxLen < 0 && n.length < 0 && n.pattern == nil {
		return nil
	}
	return func(r rules.Rule) rules.Rule {
		if n.minLen >= 0 {
			r = r.Min(n.minLen)
		}
		if n.maxLen >= 0 {
			r = r.Max(n.maxLen)
		}
		if n.length >= 0 {
			r = r.Length(n.length)
		}
		if n.pattern != nil {
			r = r.Regex(n.pattern.String(), n.patternName)
		}
		return r
	}
}

// Descriptor implements docskema.Node.
func (n StringNode) Descriptor() *descriptor.Type {
	t := &descriptor.Type{Type: n.kind}
	if len(n.list) > 0 || n.rows > 0 {
		t.Options = map[string]any{}
		if len(n.list) > 0 {
			t.Options["list"] = append([]string(nil), n.list...)
		}
		if n.rows > 0 {
			t.Options["rows"] = n.rows
		}
	}
	return n.h.describeNode(t, n.rules())
}

// Parse implements docskema.Node.
func (n StringNode) Parse(ctx context.Context, raw any) (string, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (string, error) {
		s, ok := raw.(string)
		if !ok {
			return "", invalidType("string", raw)
		}
		if iss := n.check(s); len(iss) > 0 {
			return "", iss
		}
		return s, nil
	}, n.check)
}

func (n StringNode) check(s string) docskema.Issues {
	var iss docskema.Issues
	l := utf8.RuneCountInString(s)
	if n.length >= 0 && l != n.length {
		code := docskema.CodeTooShort
		if l > n.length {
			code = docskema.CodeTooLong
		}
		iss = append(iss, issue("/", code, "", "length", n.length, "got", l))
	}
	if n.minLen >= 0 && l < n.minLen {
		iss = append(iss, issue("/", docskema.CodeTooShort, "", "min", n.minLen, "got", l))
	}
	if n.maxLen >= 0 && l > n.maxLen {
		iss = append(iss, issue("/", docskema.CodeTooLong, "", "max", n.maxLen, "got", l))
	}
	if n.pattern != nil && !n.pattern.MatchString(s) {
		iss = append(iss, issue("/", docskema.CodePattern, n.pattern.String(), "pattern", n.pattern.String()))
	}
	if len(n.list) > 0 && !slices.Contains(n.list, s) {
		iss = append(iss, issue("/", docskema.CodeInvalidEnum, "", "value", s))
	}
	return iss
}

// Mock implements docskema.Node.
func (n StringNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		if len(n.list) > 0 {
			return n.list[g.Pick(len(n.list))]
		}
		lo, hi := n.minLen, n.maxLen
		if n.length >= 0 {
			lo, hi = n.length, n.length
		}
		if n.pattern != nil {
			var s string
			for range 8 {
				s = g.Regex(n.pattern.String())
				if len(n.check(s)) == 0 {
					return s
				}
			}
			plo, phi := max(lo, 0), hi
			if phi < 0 {
				phi = plo + 32
			}
			if p, ok := boundedPattern(n.pattern.String(), plo, phi, g.Int(plo, phi)); ok {
				return g.Regex(p)
			}
			return s
		}
		if n.kind == "text" && hi < 0 {
			return g.Words(max(lo, 20), -1)
		}
		return g.Words(lo, hi)
	})
}

// Any implements Child.
func (n StringNode) Any() AnyNode {
	return typed(n.Descriptor, n.Parse, n.Mock, n)
}

// EmailNode is an email address leaf.
type EmailNode struct{ h hooks }

// Email returns an email address leaf.
func Email(opts ...Option) EmailNode { return EmailNode{h: newHooks(opts)} }

// Descriptor implements docskema.Node.
func (n EmailNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: "email"}, nil)
}

// Parse implements docskema.Node.
func (n EmailNode) Parse(ctx context.Context, raw any) (string, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (string, error) {
		s, ok := raw.(string)
		if !ok {
			return "", invalidType("string", raw)
		}
		if iss := n.check(s); len(iss) > 0 {
			return "", iss
		}
		return s, nil
	}, n.check)
}

func (EmailNode) check(s string) docskema.Issues {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return fail(docskema.CodeInvalidFormat, "expected email address", "format", "email")
	}
	return nil
}

// Mock implements docskema.Node.
func (n EmailNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		if s := g.Email(); len(n.check(s)) == 0 {
			return s
		}
		return "user-" + g.Key() + "@example.com"
	})
}

// Any implements Child.
func (n EmailNode) Any() AnyNode { return typed(n.Descriptor, n.Parse, n.Mock, n) }

// URLNode is a URL leaf. By default only absolute http and https URLs are
// accepted.
type URLNode struct {
	schemes       []string
	allowRelative bool
	h             hooks
}

// URL returns a URL leaf.
func URL(opts ...Option) URLNode {
	return URLNode{schemes: []string{"http", "https"}, h: newHooks(opts)}
}

// Schemes replaces the accepted schemes.
func (n URLNode) Schemes(s ...string) URLNode {
	n.schemes = append([]string(nil), s...)
	return n
}

// AllowRelative also accepts relative references.
func (n URLNode) AllowRelative() URLNode { n.allowRelative = true; return n }

// Descriptor implements docskema.Node.
func (n URLNode) Descriptor() *descriptor.Type {
	schemes := n.schemes
	return n.h.describeNode(&descriptor.Type{Type: "url"}, func(r rules.Rule) rules.Rule {
		return r.URI(schemes...)
	})
}

// Parse implements docskema.Node.
func (n URLNode) Parse(ctx context.Context, raw any) (string, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (string, error) {
		s, ok := raw.(string)
		if !ok {
			return "", invalidType("string", raw)
		}
		if iss := n.check(s); len(iss) > 0 {
			return "", iss
		}
		return s, nil
	}, n.check)
}

func (n URLNode) check(s string) docskema.Issues {
	u, err := url.Parse(s)
	if err != nil || s == "" {
		return fail(docskema.CodeInvalidFormat, "expected URL", "format", "uri")
	}
	if u.Scheme == "" {
		if n.allowRelative {
			return nil
		}
		return fail(docskema.CodeInvalidFormat, "expected absolute URL", "format", "uri")
	}
	if len(n.schemes) > 0 && !slices.Contains(n.schemes, u.Scheme) {
		return fail(docskema.CodeInvalidFormat, "scheme not allowed: "+u.Scheme, "scheme", u.Scheme)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return fail(docskema.CodeInvalidFormat, "missing host", "format", "uri")
	}
	return nil
}

// Mock implements docskema.Node.
func (n URLNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		if s := g.URL(); len(n.check(s)) == 0 {
			return s
		}
		scheme := "https"
		if len(n.schemes) > 0 {
			scheme = n.schemes[0]
		}
		return scheme + "://www.example.com/" + g.Key()
	})
}

// Any implements Child.
func (n URLNode) Any() AnyNode { return typed(n.Descriptor, n.Parse, n.Mock, n) }
