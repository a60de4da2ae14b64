package docskema

import (
	"context"

	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
)

// Node is the contract every schema node satisfies. One declaration yields
// three independent artifacts:
//
//   - Descriptor emits the schema fragment consumed by the content store.
//   - Parse converts a raw wire value into the application value T, failing
//     with Issues when the value does not conform.
//   - Mock synthesizes a raw wire value that the same node's Parse accepts.
//     Generation is deterministic for a given mock.Context path.
type Node[T any] interface {
	Descriptor() *descriptor.Type
	Parse(ctx context.Context, raw any) (T, error)
	Mock(mc mock.Context) any
}

// Resolvable is implemented by nodes whose application values may embed
// references. Resolve returns the resolved shape of v.
type Resolvable[T any] interface {
	Resolve(ctx context.Context, v T, r Resolver) (any, error)
}

// Resolver expands a reference into a full document value. targets lists
// the document names the reference may point to, in declaration order.
// Returning ok=false leaves the reference unchanged.
type Resolver interface {
	ResolveReference(ctx context.Context, ref Reference, targets []string) (v any, ok bool, err error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, ref Reference, targets []string) (any, bool, error)

// ResolveReference implements Resolver.
func (f ResolverFunc) ResolveReference(ctx context.Context, ref Reference, targets []string) (any, bool, error) {
	return f(ctx, ref, targets)
}

// Reference is the application value of a reference field. Key is set when
// the reference is an array element.
type Reference struct {
	Ref  string `json:"_ref" yaml:"_ref"`
	Weak bool   `json:"_weak,omitempty" yaml:"_weak,omitempty"`
	Key  string `json:"_key,omitempty" yaml:"_key,omitempty"`
}

// Codec performs bidirectional transformation between the wire
// representation A and the application representation B.
type Codec[A, B any] interface {
	Decode(ctx context.Context, a A) (B, error)
	Encode(ctx context.Context, b B) (A, error)
}

// SafeParse parses v, returning (zero, false) on validation error.
func SafeParse[T any](ctx context.Context, n Node[T], v any) (T, bool) {
	val, err := n.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// Is returns true if v conforms to the node n.
func Is[T any](ctx context.Context, n Node[T], v any) bool {
	_, err := n.Parse(ctx, v)
	return err == nil
}

// ---- resolution-stack context (internal wiring, exported for subpackages) ----

type contextKey int

const (
	_ctxKeyResolving contextKey = iota
)

// WithResolving returns a child context recording that the document named
// name is being resolved. Resolvers consult it to skip self-references.
func WithResolving(ctx context.Context, name string) context.Context {
	prev := ResolvingStack(ctx)
	next := make([]string, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, name)
	return context.WithValue(ctx, _ctxKeyResolving, next)
}

// ResolvingStack returns the names of the documents currently being
// resolved, outermost first.
func ResolvingStack(ctx context.Context) []string {
	v, _ := ctx.Value(_ctxKeyResolving).([]string)
	return v
}

// IsResolving reports whether the document named name is on the resolution
// stack of ctx.
func IsResolving(ctx context.Context, name string) bool {
	for _, n := range ResolvingStack(ctx) {
		if n == name {
			return true
		}
	}
	return false
}
