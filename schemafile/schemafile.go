// Package schemafile loads schema definitions written in YAML or JSON and
// turns them into dsl nodes assembled in a registry.
//
// A definition file lists named objects and documents:
//
//	objects:
//	  - name: hero
//	    fields:
//	      - {name: heading, type: string, max: 80}
//	documents:
//	  - name: post
//	    preview: {select: {title: title}}
//	    fields:
//	      - {name: title, type: string, min: 1}
//	      - {name: hero, type: hero, optional: true}
//	      - {name: author, type: reference, to: [author]}
//
// A field whose type is not a built-in kind names an object declared in the
// same file; such fields become by-name pointers to that object.
package schemafile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/dsl"
	"github.com/reoring/docskema/registry"
)

// Format selects the definition syntax.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// File is a decoded definition file.
type File struct {
	Objects   []Type `yaml:"objects" json:"objects"`
	Documents []Type `yaml:"documents" json:"documents"`
}

// Type declares a named object or a document.
type Type struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Preview     *Preview `yaml:"preview,omitempty" json:"preview,omitempty"`
	Fields      []Field  `yaml:"fields" json:"fields"`
}

// Preview is the select map of a document preview.
type Preview struct {
	Select map[string]string `yaml:"select" json:"select"`
}

// Field declares one field, or one array item kind when it appears under of.
type Field struct {
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Type        string   `yaml:"type" json:"type"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Optional    bool     `yaml:"optional,omitempty" json:"optional,omitempty"`
	Hidden      bool     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	ReadOnly    bool     `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	Min         *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Length      *int     `yaml:"length,omitempty" json:"length,omitempty"`
	NonEmpty    bool     `yaml:"nonEmpty,omitempty" json:"nonEmpty,omitempty"`
	Regex       string   `yaml:"regex,omitempty" json:"regex,omitempty"`
	List        []any    `yaml:"list,omitempty" json:"list,omitempty"`
	Rows        int      `yaml:"rows,omitempty" json:"rows,omitempty"`
	Integer     bool     `yaml:"integer,omitempty" json:"integer,omitempty"`
	Positive    bool     `yaml:"positive,omitempty" json:"positive,omitempty"`
	Precision   *int     `yaml:"precision,omitempty" json:"precision,omitempty"`
	Schemes     []string `yaml:"schemes,omitempty" json:"schemes,omitempty"`
	Relative    bool     `yaml:"relative,omitempty" json:"relative,omitempty"`
	Source      string   `yaml:"source,omitempty" json:"source,omitempty"`
	To          []string `yaml:"to,omitempty" json:"to,omitempty"`
	Weak        bool     `yaml:"weak,omitempty" json:"weak,omitempty"`
	Hotspot     bool     `yaml:"hotspot,omitempty" json:"hotspot,omitempty"`
	Accept      string   `yaml:"accept,omitempty" json:"accept,omitempty"`
	Of          []Field  `yaml:"of,omitempty" json:"of,omitempty"`
	Fields      []Field  `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Decode decodes a definition. Unknown keys are rejected.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, "schemafile: decode json")
		}
	case YAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, "schemafile: decode yaml")
		}
	default:
		return nil, errors.Errorf("schemafile: unknown format %q", format)
	}
	return &f, nil
}

// FormatOf picks the format from a file extension; anything that is not
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// LoadFile reads, decodes and builds the definition at path.
func LoadFile(path string, opts ...registry.Option) (*registry.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "schemafile: read %s", path)
	}
	return Load(data, FormatOf(path), opts...)
}

// Load decodes and builds a definition.
func Load(data []byte, format Format, opts ...registry.Option) (*registry.Schema, error) {
	f, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return f.Build(opts...)
}

// Build turns the definition into nodes and assembles them. Objects may
// point to each other by name in any declaration order; an object that
// contains itself, directly or through other objects, is rejected.
func (f *File) Build(opts ...registry.Option) (s *registry.Schema, err error) {
	defer func() {
		// dsl constructors panic on malformed compositions.
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.Wrap(e, "schemafile")
				return
			}
			err = errors.Errorf("schemafile: %v", r)
		}
	}()

	b := &builder{
		decls:    make(map[string]Type, len(f.Objects)),
		objects:  make(map[string]dsl.NamedObjectNode, len(f.Objects)),
		building: map[string]bool{},
	}
	for _, o := range f.Objects {
		if o.Name == "" {
			return nil, errors.New("schemafile: object without name")
		}
		if _, dup := b.decls[o.Name]; dup {
			return nil, errors.Errorf("schemafile: duplicate object %s", o.Name)
		}
		b.decls[o.Name] = o
	}

	reg := registry.New(opts...)
	for _, o := range f.Objects {
		obj, err := b.object(o.Name)
		if err != nil {
			return nil, err
		}
		reg.Object(obj)
	}
	for _, d := range f.Documents {
		if d.Name == "" {
			return nil, errors.New("schemafile: document without name")
		}
		fs, err := b.fields(d.Name, d.Fields)
		if err != nil {
			return nil, err
		}
		doc := dsl.Document(d.Name, fs, typeOptions(d)...)
		if d.Preview != nil {
			doc = doc.Preview(descriptor.Preview{Select: d.Preview.Select})
		}
		reg.Document(doc)
	}
	return reg.Build()
}

type builder struct {
	decls    map[string]Type
	objects  map[string]dsl.NamedObjectNode
	building map[string]bool
}

func (b *builder) object(name string) (dsl.NamedObjectNode, error) {
	if o, ok := b.objects[name]; ok {
		return o, nil
	}
	if b.building[name] {
		return dsl.NamedObjectNode{}, errors.Errorf("schemafile: object %s contains itself", name)
	}
	b.building[name] = true
	defer delete(b.building, name)

	decl := b.decls[name]
	fs, err := b.fields(name, decl.Fields)
	if err != nil {
		return dsl.NamedObjectNode{}, err
	}
	o := dsl.NamedObject(name, fs, typeOptions(decl)...)
	b.objects[name] = o
	return o, nil
}

func (b *builder) fields(owner string, defs []Field) (dsl.FieldSet, error) {
	fs := dsl.Fields()
	for _, def := range defs {
		if def.Name == "" {
			return fs, errors.Errorf("schemafile: %s: field without name", owner)
		}
		n, err := b.node(owner+"."+def.Name, def)
		if err != nil {
			return fs, err
		}
		if def.Optional {
			fs = fs.OptionalField(def.Name, n)
		} else {
			fs = fs.Field(def.Name, n)
		}
	}
	return fs, nil
}

func (b *builder) node(path string, def Field) (dsl.Child, error) {
	opts := fieldOptions(def)
	switch def.Type {
	case "string", "text":
		n := dsl.String(opts...)
		if def.Type == "text" {
			n = dsl.Text(opts...)
		}
		if def.Min != nil {
			n = n.Min(int(*def.Min))
		}
		if def.Max != nil {
			n = n.Max(int(*def.Max))
		}
		if def.Length != nil {
			n = n.Length(*def.Length)
		}
		if def.Regex != "" {
			n = n.Regex(def.Regex)
		}
		if len(def.List) > 0 {
			vals, err := stringList(path, def.List)
			if err != nil {
				return nil, err
			}
			n = n.List(vals...)
		}
		if def.Rows > 0 {
			n = n.Rows(def.Rows)
		}
		return n, nil
	case "email":
		return dsl.Email(opts...), nil
	case "url":
		n := dsl.URL(opts...)
		if len(def.Schemes) > 0 {
			n = n.Schemes(def.Schemes...)
		}
		if def.Relative {
			n = n.AllowRelative()
		}
		return n, nil
	case "number":
		n := dsl.Number(opts...)
		if def.Min != nil {
			n = n.Min(*def.Min)
		}
		if def.Max != nil {
			n = n.Max(*def.Max)
		}
		if def.Integer {
			n = n.Integer()
		}
		if def.Positive {
			n = n.Positive()
		}
		if def.Precision != nil {
			n = n.Precision(*def.Precision)
		}
		if len(def.List) > 0 {
			vals, err := numberList(path, def.List)
			if err != nil {
				return nil, err
			}
			n = n.List(vals...)
		}
		return n, nil
	case "boolean":
		return dsl.Boolean(opts...), nil
	case "datetime":
		return dsl.DateTime(opts...), nil
	case "date":
		return dsl.Date(opts...), nil
	case "slug":
		n := dsl.Slug(opts...)
		if def.Source != "" {
			n = n.Source(def.Source)
		}
		if def.Max != nil {
			n = n.Max(int(*def.Max))
		}
		return n, nil
	case "geopoint":
		return dsl.Geopoint(opts...), nil
	case "image", "file":
		n := dsl.File(opts...)
		if def.Type == "image" {
			n = dsl.Image(opts...)
		}
		if def.Hotspot {
			n = n.Hotspot()
		}
		if def.Accept != "" {
			n = n.Accept(def.Accept)
		}
		if len(def.Fields) > 0 {
			fs, err := b.fields(path, def.Fields)
			if err != nil {
				return nil, err
			}
			n = n.WithFields(fs)
		}
		return n, nil
	case "object":
		fs, err := b.fields(path, def.Fields)
		if err != nil {
			return nil, err
		}
		return dsl.Object(fs, opts...), nil
	case "array":
		if len(def.Of) == 0 {
			return nil, errors.Errorf("schemafile: %s: array without of", path)
		}
		items := dsl.Items()
		for i, of := range def.Of {
			n, err := b.node(path+"[]", of)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			items = items.Item(n)
		}
		n := dsl.Array(items, opts...)
		if def.Min != nil {
			n = n.Min(int(*def.Min))
		}
		if def.Max != nil {
			n = n.Max(int(*def.Max))
		}
		if def.Length != nil {
			n = n.Length(*def.Length)
		}
		if def.NonEmpty {
			n = n.NonEmpty()
		}
		return n, nil
	case "reference":
		if len(def.To) == 0 {
			return nil, errors.Errorf("schemafile: %s: reference without to", path)
		}
		n := dsl.Reference(opts...)
		for _, to := range def.To {
			n = n.ToName(to)
		}
		if def.Weak {
			n = n.Weak()
		}
		return n, nil
	case "":
		return nil, errors.Errorf("schemafile: %s: missing type", path)
	}
	if _, ok := b.decls[def.Type]; !ok {
		return nil, errors.Errorf("schemafile: %s: unknown type %s", path, def.Type)
	}
	obj, err := b.object(def.Type)
	if err != nil {
		return nil, err
	}
	return obj.Ref(opts...), nil
}

func typeOptions(t Type) []dsl.Option {
	var opts []dsl.Option
	if t.Title != "" {
		opts = append(opts, dsl.Title(t.Title))
	}
	if t.Description != "" {
		opts = append(opts, dsl.Description(t.Description))
	}
	return opts
}

func fieldOptions(f Field) []dsl.Option {
	opts := typeOptions(Type{Title: f.Title, Description: f.Description})
	if f.Hidden {
		opts = append(opts, dsl.Hidden())
	}
	if f.ReadOnly {
		opts = append(opts, dsl.ReadOnly())
	}
	return opts
}

func stringList(path string, list []any) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("schemafile: %s: list value %v is not a string", path, v)
		}
		out = append(out, s)
	}
	return out, nil
}

func numberList(path string, list []any) ([]float64, error) {
	out := make([]float64, 0, len(list))
	for _, v := range list {
		switch x := v.(type) {
		case int:
			out = append(out, float64(x))
		case int64:
			out = append(out, float64(x))
		case uint64:
			out = append(out, float64(x))
		case float64:
			out = append(out, x)
		default:
			return nil, errors.Errorf("schemafile: %s: list value %v is not a number", path, v)
		}
	}
	return out, nil
}
