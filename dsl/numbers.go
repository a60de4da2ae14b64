package dsl

import (
	"context"
	"math"
	"slices"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

// NumberNode is a numeric leaf parsed into float64.
type NumberNode struct {
	min, max  *float64
	integer   bool
	positive  bool
	precision int
	list      []float64
	h         hooks
}

// Number returns a numeric leaf.
func Number(opts ...Option) NumberNode { return NumberNode{precision: -1, h: newHooks(opts)} }

// Min sets the inclusive lower bound.
func (n NumberNode) Min(v float64) NumberNode { n.min = &v; return n }

// Max sets the inclusive upper bound.
func (n NumberNode) Max(v float64) NumberNode { n.max = &v; return n }

// Integer requires a whole number.
func (n NumberNode) Integer() NumberNode { n.integer = true; return n }

// Positive requires a value greater than zero.
func (n NumberNode) Positive() NumberNode { n.positive = true; return n }

// Precision limits the number of decimal places.
func (n NumberNode) Precision(digits int) NumberNode { n.precision = digits; return n }

// List restricts the value to one of values.
func (n NumberNode) List(values ...float64) NumberNode {
	n.list = append([]float64(nil), values...)
	return n
}

func (n NumberNode) rules() rules.Func {
	if n.min == nil && n.max == nil && !n.integer && !n.positive && n.precision < 0 {
		return nil
	}
	return func(r rules.Rule) rules.Rule {
		if n.min != nil {
			r = r.Min(*n.min)
		}
		if n.max != nil {
			r = r.Max(*n.max)
		}
		if n.integer {
			r = r.Integer()
		}
		if n.positive {
			r = r.Positive()
		}
		if n.precision >= 0 {
			r = r.Precision(n.precision)
		}
		return r
	}
}

// Descriptor implements docskema.Node.
func (n NumberNode) Descriptor() *descriptor.Type {
	t := &descriptor.Type{Type: "number"}
	if len(n.list) > 0 {
		t.Options = map[string]any{"list": append([]float64(nil), n.list...)}
	}
	return n.h.describeNode(t, n.rules())
}

// Parse implements docskema.Node. Any Go numeric type and json.Number are
// accepted.
func (n NumberNode) Parse(ctx context.Context, raw any) (float64, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (float64, error) {
		f, ok := toFloat(raw)
		if !ok {
			return 0, invalidType("number", raw)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fail(docskema.CodeInvalidFormat, "expected finite number")
		}
		if iss := n.check(f); len(iss) > 0 {
			return 0, iss
		}
		return f, nil
	}, n.check)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case interface{ Float64() (float64, error) }:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func (n NumberNode) check(f float64) docskema.Issues {
	var iss docskema.Issues
	if n.min != nil && f < *n.min {
		iss = append(iss, issue("/", docskema.CodeTooSmall, "", "min", *n.min, "got", f))
	}
	if n.max != nil && f > *n.max {
		iss = append(iss, issue("/", docskema.CodeTooBig, "", "max", *n.max, "got", f))
	}
	if n.positive && f <= 0 {
		iss = append(iss, issue("/", docskema.CodeTooSmall, "expected positive number", "min", 0, "got", f))
	}
	if n.integer && f != math.Trunc(f) {
		iss = append(iss, issue("/", docskema.CodeInvalidType, "expected integer", "got", f))
	}
	if n.precision >= 0 && !hasPrecision(f, n.precision) {
		iss = append(iss, issue("/", docskema.CodeInvalidFormat, "too many decimal places", "precision", n.precision, "got", f))
	}
	if len(n.list) > 0 && !slices.Contains(n.list, f) {
		iss = append(iss, issue("/", docskema.CodeInvalidEnum, "", "value", f))
	}
	return iss
}

func hasPrecision(f float64, digits int) bool {
	scaled := f * math.Pow10(digits)
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// Mock implements docskema.Node. Unbounded sides extend 1000 past the other
// bound (or from zero).
func (n NumberNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		g := mc.Gen()
		if len(n.list) > 0 {
			return n.list[g.Pick(len(n.list))]
		}
		lo, hi := n.bounds()
		if n.integer {
			ilo, ihi := int(math.Ceil(lo)), int(math.Floor(hi))
			if n.positive && ilo < 1 {
				ilo = 1
			}
			if ihi < ilo {
				ihi = ilo
			}
			return float64(g.Int(ilo, ihi))
		}
		v := g.Float(lo, hi)
		if n.positive && v <= 0 {
			v = math.Nextafter(0, 1)
		}
		if n.precision >= 0 {
			step := math.Pow10(-n.precision)
			v = math.Round(v*math.Pow10(n.precision)) / math.Pow10(n.precision)
			if v > hi {
				v -= step
			}
			if v < lo || (n.positive && v <= 0) {
				v += step
			}
		}
		return v
	})
}

func (n NumberNode) bounds() (lo, hi float64) {
	const span = 1000
	switch {
	case n.min != nil && n.max != nil:
		lo, hi = *n.min, *n.max
	case n.min != nil:
		lo, hi = *n.min, *n.min+span
	case n.max != nil:
		lo, hi = *n.max-span, *n.max
		if n.positive && lo < 0 {
			lo = 0
		}
	default:
		lo, hi = 0, span
	}
	if n.positive && lo < 0 {
		lo = 0
	}
	return lo, hi
}

// Any implements Child.
func (n NumberNode) Any() AnyNode { return typed(n.Descriptor, n.Parse, n.Mock, n) }

// BooleanNode is a boolean leaf.
type BooleanNode struct{ h hooks }

// Boolean returns a boolean leaf.
func Boolean(opts ...Option) BooleanNode { return BooleanNode{h: newHooks(opts)} }

// Descriptor implements docskema.Node.
func (n BooleanNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: "boolean"}, nil)
}

// Parse implements docskema.Node.
func (n BooleanNode) Parse(ctx context.Context, raw any) (bool, error) {
	return parseNode(ctx, n.h, raw, func(_ context.Context, raw any) (bool, error) {
		b, ok := raw.(bool)
		if !ok {
			return false, invalidType("boolean", raw)
		}
		return b, nil
	}, nil)
}

// Mock implements docskema.Node.
func (n BooleanNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any { return mc.Gen().Bool() })
}

// Any implements Child.
func (n BooleanNode) Any() AnyNode { return typed(n.Descriptor, n.Parse, n.Mock, n) }
