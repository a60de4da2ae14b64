package dsl

import (
	"fmt"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/i18n"
)

// Reserved keys of the wire format.
const (
	KeyField       = "_key"
	TypeField      = "_type"
	IDField        = "_id"
	CreatedAtField = "_createdAt"
	UpdatedAtField = "_updatedAt"
	RevField       = "_rev"
	RefField       = "_ref"
	WeakField      = "_weak"
)

func issue(path, code, hint string, kv ...any) docskema.Issue {
	var params map[string]any
	var data map[string]string
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		data = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k := fmt.Sprint(kv[i])
			params[k] = kv[i+1]
			data[k] = fmt.Sprint(kv[i+1])
		}
	}
	it := docskema.IssueAt(docskema.At(path), code, i18n.T(code, data), params)
	it.Hint = hint
	return it
}

// fail returns a single issue at the root of the node being parsed.
func fail(code, hint string, kv ...any) docskema.Issues {
	return docskema.Issues{issue("/", code, hint, kv...)}
}

func invalidType(expected string, got any) docskema.Issues {
	return fail(docskema.CodeInvalidType, "expected "+expected, "expected", expected, "got", fmt.Sprintf("%T", got))
}

func field(name string) string { return docskema.Root().Field(name).Pointer() }

func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	}
	return nil, false
}
