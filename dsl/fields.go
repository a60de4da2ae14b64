package dsl

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

// Field is one named member of a FieldSet.
type Field struct {
	Name     string
	Node     AnyNode
	Optional bool
}

// FieldSet is an ordered collection of named fields. It is immutable; Field
// and OptionalField return an extended copy.
//
//	fs := dsl.Fields().
//	    Field("title", dsl.String().Max(80)).
//	    OptionalField("subtitle", dsl.String())
type FieldSet struct {
	fields []Field
}

// Fields returns an empty FieldSet.
func Fields() FieldSet { return FieldSet{} }

// Field appends a required field. It panics when name is empty, starts with
// an underscore or is already present.
func (fs FieldSet) Field(name string, n Child) FieldSet { return fs.with(name, n, false) }

// OptionalField appends a field that may be absent.
func (fs FieldSet) OptionalField(name string, n Child) FieldSet { return fs.with(name, n, true) }

func (fs FieldSet) with(name string, n Child, optional bool) FieldSet {
	if name == "" {
		panic(errors.New("dsl: empty field name"))
	}
	if strings.HasPrefix(name, "_") {
		panic(errors.Errorf("dsl: field name %q is reserved", name))
	}
	if n == nil {
		panic(errors.Errorf("dsl: nil node for field %q", name))
	}
	if _, dup := fs.Lookup(name); dup {
		panic(errors.Errorf("dsl: duplicate field %q", name))
	}
	next := make([]Field, len(fs.fields), len(fs.fields)+1)
	copy(next, fs.fields)
	return FieldSet{fields: append(next, Field{Name: name, Node: n.Any(), Optional: optional})}
}

// Len returns the number of fields.
func (fs FieldSet) Len() int { return len(fs.fields) }

// All returns the fields in declaration order.
func (fs FieldSet) All() []Field { return append([]Field(nil), fs.fields...) }

// Lookup returns the field named name.
func (fs FieldSet) Lookup(name string) (Field, bool) {
	for _, f := range fs.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// covers reports whether every key of m that is not a system key names a
// field of fs.
func (fs FieldSet) covers(m map[string]any) bool {
	for k := range m {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if _, ok := fs.Lookup(k); !ok {
			return false
		}
	}
	return true
}

// Descriptors returns one descriptor per field, named after the field.
// Required fields compose a required rule onto the child's validation.
func (fs FieldSet) Descriptors() []*descriptor.Type {
	out := make([]*descriptor.Type, 0, len(fs.fields))
	for _, f := range fs.fields {
		d := f.Node.Descriptor().Clone()
		d.Name = f.Name
		if !f.Optional {
			d.Validation = rules.Compose(d.Validation, func(r rules.Rule) rules.Rule { return r.Required() })
		}
		out = append(out, d)
	}
	return out
}

// parse parses the declared fields of src. Undeclared keys are dropped.
// An absent or null optional field is omitted from the result.
func (fs FieldSet) parse(ctx context.Context, src map[string]any) (map[string]any, docskema.Issues) {
	out := make(map[string]any, len(fs.fields))
	var iss docskema.Issues
	for _, f := range fs.fields {
		raw, present := src[f.Name]
		if !present || raw == nil {
			if !f.Optional {
				iss = append(iss, issue(field(f.Name), docskema.CodeRequired, "", "field", f.Name))
			}
			continue
		}
		v, err := f.Node.Parse(ctx, raw)
		if err != nil {
			iss = append(iss, docskema.Rebase(field(f.Name), err)...)
			continue
		}
		out[f.Name] = v
	}
	return out, iss
}

func (fs FieldSet) mock(mc mock.Context) map[string]any {
	out := make(map[string]any, len(fs.fields))
	for _, f := range fs.fields {
		out[f.Name] = f.Node.Mock(mc.Field(f.Name))
	}
	return out
}

// resolve resolves every present field value. Keys without a declared field
// are copied unchanged.
func (fs FieldSet) resolve(ctx context.Context, v map[string]any, r docskema.Resolver) (map[string]any, error) {
	out := make(map[string]any, len(v))
	for k, x := range v {
		out[k] = x
	}
	for _, f := range fs.fields {
		x, ok := v[f.Name]
		if !ok {
			continue
		}
		rv, err := f.Node.Resolve(ctx, x, r)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", f.Name)
		}
		out[f.Name] = rv
	}
	return out, nil
}
