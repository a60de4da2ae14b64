package dsl

import (
	"context"
	"time"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/codec"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

// TimeNode is a datetime or date leaf. The wire value is a string; the
// application value is a time.Time in UTC.
type TimeNode struct {
	kind     string
	codec    docskema.Codec[string, time.Time]
	min, max *time.Time
	h        hooks
}

// DateTime returns an RFC3339 timestamp leaf.
func DateTime(opts ...Option) TimeNode {
	return TimeNode{kind: "datetime", codec: codec.TimeRFC3339(), h: newHooks(opts)}
}

// Date returns a calendar date leaf (YYYY-MM-DD).
func Date(opts ...Option) TimeNode {
	return TimeNode{kind: "date", codec: codec.Date(), h: newHooks(opts)}
}

// Min sets the inclusive lower bound.
func (n TimeNode) Min(t time.Time) TimeNode { t = t.UTC(); n.min = &t; return n }

// Max sets the inclusive upper bound.
func (n TimeNode) Max(t time.Time) TimeNode { t = t.UTC(); n.max = &t; return n }

func (n TimeNode) format(t time.Time) string {
	s, err := n.codec.Encode(context.Background(), t)
	if err != nil {
		return ""
	}
	return s
}

func (n TimeNode) rules() rules.Func {
	if n.min == nil && n.max == nil {
		return nil
	}
	return func(r rules.Rule) rules.Rule {
		if n.min != nil {
			r = r.Min(n.format(*n.min))
		}
		if n.max != nil {
			r = r.Max(n.format(*n.max))
		}
		return r
	}
}

// Descriptor implements docskema.Node.
func (n TimeNode) Descriptor() *descriptor.Type {
	return n.h.describeNode(&descriptor.Type{Type: n.kind}, n.rules())
}

// Parse implements docskema.Node. A time.Time raw value is accepted as is
// (YAML decoders may produce one).
func (n TimeNode) Parse(ctx context.Context, raw any) (time.Time, error) {
	return parseNode(ctx, n.h, raw, func(ctx context.Context, raw any) (time.Time, error) {
		var t time.Time
		switch v := raw.(type) {
		case string:
			d, err := n.codec.Decode(ctx, v)
			if err != nil {
				return time.Time{}, err
			}
			t = d
		case time.Time:
			t = v
		default:
			return time.Time{}, invalidType(n.kind+" string", raw)
		}
		t = t.UTC()
		if iss := n.check(t); len(iss) > 0 {
			return time.Time{}, iss
		}
		return t, nil
	}, n.check)
}

func (n TimeNode) check(t time.Time) docskema.Issues {
	var iss docskema.Issues
	if n.min != nil && t.Before(*n.min) {
		iss = append(iss, issue("/", docskema.CodeTooSmall, "", "min", n.format(*n.min), "got", n.format(t)))
	}
	if n.max != nil && t.After(*n.max) {
		iss = append(iss, issue("/", docskema.CodeTooBig, "", "max", n.format(*n.max), "got", n.format(t)))
	}
	return iss
}

// Mock implements docskema.Node.
func (n TimeNode) Mock(mc mock.Context) any {
	return n.h.mockNode(mc, func(mc mock.Context) any {
		lo, hi := mc.TimeRange()
		if n.min != nil {
			lo = *n.min
			if n.max == nil && !hi.After(lo) {
				hi = lo.AddDate(1, 0, 0)
			}
		}
		if n.max != nil {
			hi = *n.max
			if n.min == nil && !lo.Before(hi) {
				lo = hi.AddDate(-1, 0, 0)
			}
		}
		t := mc.Gen().Time(lo, hi)
		if n.kind == "date" {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if d.Before(lo) {
				d = d.AddDate(0, 0, 1)
			}
			t = d
		}
		return n.format(t)
	})
}

// Any implements Child.
func (n TimeNode) Any() AnyNode { return typed(n.Descriptor, n.Parse, n.Mock, n) }
