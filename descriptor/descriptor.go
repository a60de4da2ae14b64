// Package descriptor models the schema fragments emitted for the content
// store. A Type mirrors the store's schema JSON shape field for field and
// encodes with a stable key order: type, name, title, description, hidden,
// readOnly, fields, of, to, weak, options, initialValue, validation,
// preview, then caller extras sorted by key.
package descriptor

import (
	"bytes"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docskema/rules"
)

// Type is a schema fragment. The zero value is not meaningful; set Type.
type Type struct {
	Type        string
	Name        string
	Title       string
	Description string
	Hidden      bool
	ReadOnly    bool

	// Containers
	Fields []*Type
	Of     []*Type
	To     []*Type
	Weak   bool

	Options      map[string]any
	InitialValue any

	// Validation is the folded rule function; it is emitted as the list of
	// constraints it records on an empty rules.Rule.
	Validation rules.Func
	Preview    *Preview

	// Extra holds caller overrides merged last. A key that collides with a
	// known key replaces that key's value.
	Extra map[string]any
}

// Clone returns a copy of t whose slices and maps may be modified without
// affecting t. Child types are shared.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := *t
	c.Fields = append([]*Type(nil), t.Fields...)
	c.Of = append([]*Type(nil), t.Of...)
	c.To = append([]*Type(nil), t.To...)
	c.Options = cloneMap(t.Options)
	c.Extra = cloneMap(t.Extra)
	if t.Preview != nil {
		p := *t.Preview
		c.Preview = &p
	}
	return &c
}

// Constraints returns the constraints recorded by the validation function.
func (t *Type) Constraints() []rules.Constraint {
	if t == nil || t.Validation == nil {
		return nil
	}
	return t.Validation(rules.New()).Constraints()
}

// Field returns the child field descriptor named name, or nil.
func (t *Type) Field(name string) *Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type pair struct {
	key string
	val any
}

// pairs lists the populated keys in emission order with extras applied.
func (t *Type) pairs() []pair {
	ps := make([]pair, 0, 16)
	add := func(k string, v any, set bool) {
		if set {
			ps = append(ps, pair{k, v})
		}
	}
	add("type", t.Type, true)
	add("name", t.Name, t.Name != "")
	add("title", t.Title, t.Title != "")
	add("description", t.Description, t.Description != "")
	add("hidden", t.Hidden, t.Hidden)
	add("readOnly", t.ReadOnly, t.ReadOnly)
	add("fields", t.Fields, len(t.Fields) > 0)
	add("of", t.Of, len(t.Of) > 0)
	add("to", t.To, len(t.To) > 0)
	add("weak", t.Weak, t.Weak)
	add("options", t.Options, len(t.Options) > 0)
	add("initialValue", t.InitialValue, t.InitialValue != nil)
	cs := t.Constraints()
	add("validation", cs, len(cs) > 0)
	add("preview", t.Preview, t.Preview != nil)

	if len(t.Extra) == 0 {
		return ps
	}
	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		replaced := false
		for i := range ps {
			if ps[i].key == k {
				ps[i].val = t.Extra[k]
				replaced = true
				break
			}
		}
		if !replaced {
			ps = append(ps, pair{k, t.Extra[k]})
		}
	}
	return ps
}

// MarshalJSON implements json.Marshaler with a stable key order.
func (t *Type) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range t.pairs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.val)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler with the same key order as JSON.
func (t *Type) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range t.pairs() {
		vn := &yaml.Node{}
		if err := vn.Encode(p.val); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.key}, vn)
	}
	return n, nil
}

// Preview configures how the content store summarizes a document. Select
// maps preview keys (title, subtitle, media or custom keys) to dot paths in
// the document. Prepare optionally reshapes the selection.
type Preview struct {
	Select  map[string]string
	Prepare func(selection map[string]any) PreviewValue
}

// PreviewValue is the summary triple produced by a preview.
type PreviewValue struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Media    any    `json:"media,omitempty" yaml:"media,omitempty"`
}

type previewWire struct {
	Select map[string]string `json:"select,omitempty" yaml:"select,omitempty"`
}

// MarshalJSON emits only the selection; Prepare is a function and stays
// in process.
func (p *Preview) MarshalJSON() ([]byte, error) {
	return json.Marshal(previewWire{Select: p.Select})
}

// MarshalYAML mirrors MarshalJSON.
func (p *Preview) MarshalYAML() (any, error) { return previewWire{Select: p.Select}, nil }

// Render selects values from doc and applies Prepare. Without Prepare, the
// title, subtitle and media selections are used directly.
func (p *Preview) Render(doc map[string]any) PreviewValue {
	sel := make(map[string]any, len(p.Select))
	for k, path := range p.Select {
		if v, ok := lookupDotPath(doc, path); ok {
			sel[k] = v
		}
	}
	if p.Prepare != nil {
		return p.Prepare(sel)
	}
	out := PreviewValue{Media: sel["media"]}
	out.Title, _ = sel["title"].(string)
	out.Subtitle, _ = sel["subtitle"].(string)
	return out
}

func lookupDotPath(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
