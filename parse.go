package docskema

import (
	"bytes"
	"context"
	"errors"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docskema/mock"
)

// DecodeJSON decodes a JSON document into a raw value tree (map[string]any,
// []any, string, json.Number, bool, nil). Numbers are kept as json.Number so
// no precision is lost before a node parses them.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	// reject trailing data after the first value
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, Fail(CodeParseError, "trailing data after JSON value")
	}
	return v, nil
}

// DecodeYAML decodes a single YAML document into the same raw value tree
// shape as DecodeJSON.
func DecodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, Issues{Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return NormalizeYAML(v), nil
}

// ParseJSON decodes data and parses it with n.
func ParseJSON[T any](ctx context.Context, n Node[T], data []byte) (T, error) {
	var zero T
	if n == nil {
		return zero, Fail(CodeParseError, "nil node")
	}
	v, err := DecodeJSON(data)
	if err != nil {
		return zero, err
	}
	return n.Parse(ctx, v)
}

// ParseYAML decodes data and parses it with n.
func ParseYAML[T any](ctx context.Context, n Node[T], data []byte) (T, error) {
	var zero T
	if n == nil {
		return zero, Fail(CodeParseError, "nil node")
	}
	v, err := DecodeYAML(data)
	if err != nil {
		return zero, err
	}
	return n.Parse(ctx, v)
}

// MockJSON generates a raw mock value for n and encodes it as JSON.
func MockJSON[T any](n Node[T], mc mock.Context) ([]byte, error) {
	return json.Marshal(n.Mock(mc))
}

// ParseResolve parses raw with n and, when n is Resolvable, resolves the
// parsed value with r.
func ParseResolve[T any](ctx context.Context, n Node[T], raw any, r Resolver) (any, error) {
	v, err := n.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	if rs, ok := n.(Resolvable[T]); ok {
		return rs.Resolve(ctx, v, r)
	}
	return v, nil
}

// NormalizeYAML converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-string keys are dropped.
func NormalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = NormalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = NormalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = NormalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}
