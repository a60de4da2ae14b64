package dsl

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

// ItemSet is the ordered list of kinds an array may hold. It is immutable;
// Item returns an extended copy.
type ItemSet struct {
	items []AnyNode
}

// Items returns an empty ItemSet.
func Items() ItemSet { return ItemSet{} }

// Item appends a kind.
func (s ItemSet) Item(n Child) ItemSet {
	if n == nil {
		panic(errors.New("dsl: nil array item"))
	}
	next := make([]AnyNode, len(s.items), len(s.items)+1)
	copy(next, s.items)
	return ItemSet{items: append(next, n.Any())}
}

// Len returns the number of kinds.
func (s ItemSet) Len() int { return len(s.items) }

// Element is one value of an array declaring more than one kind. Kind is the
// index of the matching kind in the ItemSet.
type Element struct {
	Kind  int    `json:"kind" yaml:"kind"`
	Key   string `json:"_key,omitempty" yaml:"_key,omitempty"`
	Value any    `json:"value" yaml:"value"`
}

// ArrayNode is an ordered collection of values of one or more kinds.
//
// With a single kind the application value is []any of that kind's values.
// With several kinds it is []any of Element. A raw element whose _type names
// declared kinds is parsed by those kinds only; other elements are tried
// against the untagged kinds, then the tagged ones. When several kinds
// accept an element, the one whose fields cover every key of the element
// wins; otherwise the element is rejected as ambiguous.
type ArrayNode struct {
	items    ItemSet
	min      int
	max      int
	length   int
	nonEmpty bool
	h        hooks
}

// Array returns an array of the given kinds. It panics when items is empty.
func Array(items ItemSet, opts ...Option) ArrayNode {
	if items.Len() == 0 {
		panic(errors.New("dsl: array requires at least one item kind"))
	}
	return ArrayNode{items: items, min: -1, max: -1, length: -1, h: newHooks(opts)}
}

// ArrayOf is shorthand for an array of a single kind.
func ArrayOf(n Child, opts ...Option) ArrayNode { return Array(Items().Item(n), opts...) }

// Min requires at least k elements.
func (n ArrayNode) Min(k int) ArrayNode { n.min = k; return n }

// Max allows at most k elements.
func (n ArrayNode) Max(k int) ArrayNode { n.max = k; return n }

// Length requires exactly k elements. It takes precedence over Min and Max.
func (n ArrayNode) Length(k int) ArrayNode { n.length = k; return n }

// NonEmpty requires at least one element.
func (n ArrayNode) NonEmpty() ArrayNode { n.nonEmpty = true; return n }

func (n ArrayNode) multi() bool { return n.items.Len() > 1 }

// bounds returns the effective cardinality; -1 means unbounded.
func (n ArrayNode) bounds() (lo, hi int) {
	if n.length >= 0 {
		return n.length, n.length
	}
	lo, hi = n.min, n.max
	if n.nonEmpty && lo < 1 {
		lo = 1
	}
	return lo, hi
}

func (n ArrayNode) rules() rules.Func {
	if n.length >= 0 {
		return func(r rules.Rule) rules.Rule { return r.Length(n.length) }
	}
	lo, hi := n.bounds()
	if lo < 0 && hi < 0 {
		return nil
	}
	return func(r rules.Rule) rules.Rule {
		if lo >= 0 {
			r = r.Min(lo)
		}
		if hi >= 0 {
			r = r.Max(hi)
		}
		return r
	}
}

// Descriptor implements docskema.Node.
func (n ArrayNode) Descriptor() *descriptor.Type {
	of := make([]*descriptor.Type, 0, n.items.Len())
	for _, it := range n.items.items {
		of = append(of, it.Descriptor())
	}
	return n.h.describeNode(&descriptor.Type{Type: "array", Of: of}, n.rules())
}

// Parse implements docskema.Node.
func (n ArrayNode) Parse(ctx context.Context, raw any) ([]any, error) {
	return parseNode(ctx, n.h, raw, func(ctx context.Context, raw any) ([]any, error) {
		src, ok := raw.([]any)
		if !ok {
			return nil, invalidType("array", raw)
		}
		iss := n.check(src)
		out := make([]any, 0, len(src))
		seen := make(map[string]int, len(src))
		for i, el := range src {
			base := "/" + strconv.Itoa(i)
			key, hasKey := elementKey(el)
			v, kind, err := n.parseElement(ctx, el)
			if err != nil {
				iss = append(iss, docskema.Rebase(base, err)...)
				continue
			}
			node := n.items.items[kind]
			if node.Keyed() {
				if !hasKey {
					key = "auto-" + strconv.Itoa(i)
				}
				if prev, dup := seen[key]; dup {
					iss = append(iss, issue(base+"/"+KeyField, docskema.CodeDuplicateKey, "first used at index "+strconv.Itoa(prev), "key", key))
					continue
				}
				seen[key] = i
				v = node.attachKey(v, key)
			} else {
				key = ""
			}
			if n.multi() {
				v = Element{Kind: kind, Key: key, Value: v}
			}
			out = append(out, v)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}, n.check)
}

func (n ArrayNode) check(v []any) docskema.Issues {
	lo, hi := n.bounds()
	l := len(v)
	if lo >= 0 && l < lo {
		if n.length >= 0 {
			return fail(docskema.CodeTooShort, "", "length", n.length, "got", l)
		}
		return fail(docskema.CodeTooShort, "", "min", lo, "got", l)
	}
	if hi >= 0 && l > hi {
		if n.length >= 0 {
			return fail(docskema.CodeTooLong, "", "length", n.length, "got", l)
		}
		return fail(docskema.CodeTooLong, "", "max", hi, "got", l)
	}
	return nil
}

// parseElement picks the kind of el and parses it.
func (n ArrayNode) parseElement(ctx context.Context, el any) (any, int, error) {
	if !n.multi() {
		v, err := n.items.items[0].Parse(ctx, el)
		return v, 0, err
	}
	tiers, tagged := n.candidates(el)
	var tagErr error
	for _, tier := range tiers {
		var kinds []int
		var vals []any
		for _, k := range tier {
			v, err := n.items.items[k].Parse(ctx, el)
			if err != nil {
				if tagged && tagErr == nil {
					tagErr = err
				}
				continue
			}
			kinds, vals = append(kinds, k), append(vals, v)
		}
		switch len(kinds) {
		case 0:
			continue
		case 1:
			return vals[0], kinds[0], nil
		}
		pick := -1
		for i, k := range kinds {
			if !n.items.items[k].coversAll(el) {
				continue
			}
			if pick >= 0 {
				pick = -1
				break
			}
			pick = i
		}
		if pick >= 0 {
			return vals[pick], kinds[pick], nil
		}
		return nil, -1, fail(docskema.CodeUnionAmbiguous, "", "kinds", n.kindNames(kinds))
	}
	if tagErr != nil && len(tiers) == 1 && len(tiers[0]) == 1 {
		return nil, -1, tagErr
	}
	all := make([]int, n.items.Len())
	for k := range all {
		all[k] = k
	}
	return nil, -1, fail(docskema.CodeUnionNoMatch, "", "kinds", n.kindNames(all))
}

// candidates groups the kinds to try for el. A record whose _type names
// declared kinds yields only those kinds, and tagged reports true.
func (n ArrayNode) candidates(el any) (tiers [][]int, tagged bool) {
	m, ok := el.(map[string]any)
	if !ok {
		all := make([]int, n.items.Len())
		for k := range all {
			all[k] = k
		}
		return [][]int{all}, false
	}
	tv, hasType := m[TypeField]
	if s, ok := tv.(string); ok && s != "" {
		var named []int
		for k, it := range n.items.items {
			if it.tag == s {
				named = append(named, k)
			}
		}
		if len(named) > 0 {
			return [][]int{named}, true
		}
	}
	var plain, withTag []int
	for k, it := range n.items.items {
		if it.tag == "" {
			plain = append(plain, k)
		} else {
			withTag = append(withTag, k)
		}
	}
	if hasType {
		return [][]int{plain}, false
	}
	return [][]int{plain, withTag}, false
}

func (n ArrayNode) kindNames(kinds []int) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, kindName(n.items.items[k]))
	}
	return out
}

func kindName(n AnyNode) string {
	d := n.Descriptor()
	if d.Name != "" {
		return d.Name
	}
	return d.Type
}

func elementKey(el any) (string, bool) {
	m, ok := el.(map[string]any)
	if !ok {
		return "", false
	}
	k, ok := m[KeyField].(string)
	if !ok || k == "" {
		return "", false
	}
	return k, true
}

// Mock implements docskema.Node. Kinds are assigned to elements round-robin
// by index; keyed elements receive a generated _key.
func (n ArrayNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		count := n.mockCount(mc)
		out := make([]any, 0, count)
		for i := range count {
			emc := mc.Index(i)
			node := n.items.items[i%n.items.Len()]
			v := node.Mock(emc)
			if node.Keyed() {
				v = mapWithKey(v, emc.Gen().Key())
			}
			out = append(out, v)
		}
		return out
	})
}

func (n ArrayNode) mockCount(mc mock.Context) int {
	if n.length >= 0 {
		return n.length
	}
	dlo, dhi := mc.ArrayLength()
	lo, hi := n.bounds()
	switch {
	case lo >= 0 && hi >= 0:
	case lo >= 0:
		hi = lo + (dhi - dlo)
	case hi >= 0:
		lo = min(dlo, hi)
		hi = min(dhi, hi)
	default:
		lo, hi = dlo, dhi
	}
	if hi < lo {
		hi = lo
	}
	return mc.Gen().Int(lo, hi)
}

// Resolve implements docskema.Resolvable. Resolved keyed elements keep
// their _key.
func (n ArrayNode) Resolve(ctx context.Context, v []any, r docskema.Resolver) (any, error) {
	out := make([]any, 0, len(v))
	for i, el := range v {
		kind, key, val := 0, "", el
		if e, ok := el.(Element); ok {
			kind, key, val = e.Kind, e.Key, e.Value
		} else {
			key = valueKey(el)
		}
		if kind < 0 || kind >= n.items.Len() {
			return nil, errors.Errorf("element %d: unknown kind %d", i, kind)
		}
		node := n.items.items[kind]
		rv, err := node.Resolve(ctx, val, r)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		if key != "" {
			rv = mapWithKey(rv, key)
		}
		if _, ok := el.(Element); ok {
			rv = Element{Kind: kind, Key: key, Value: rv}
		}
		out = append(out, rv)
	}
	return out, nil
}

func valueKey(v any) string {
	switch x := v.(type) {
	case map[string]any:
		k, _ := x[KeyField].(string)
		return k
	case docskema.Reference:
		return x.Key
	}
	return ""
}

// Any implements Child.
func (n ArrayNode) Any() AnyNode {
	ad := typed(n.Descriptor, n.Parse, n.Mock, n)
	ad.resolve = func(ctx context.Context, v any, r docskema.Resolver) (any, error) {
		s, ok := v.([]any)
		if !ok {
			return v, nil
		}
		return n.Resolve(ctx, s, r)
	}
	return ad
}
