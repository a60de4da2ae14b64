// Package registry assembles documents and named objects into a schema.
//
// Assembly checks what single nodes cannot see on their own: type names must
// be unique across documents and objects, every reference target must be a
// registered document, and every by-name object pointer must name a
// registered object. The assembled Schema emits the full descriptor list and
// implements docskema.Resolver by substituting generated documents for
// references.
package registry

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	"github.com/reoring/docskema/dsl"
	"github.com/reoring/docskema/mock"
)

// Option configures a Schema.
type Option func(*Schema)

// WithLogger sets the logger used for assembly and resolution decisions.
func WithLogger(l zerolog.Logger) Option { return func(s *Schema) { s.log = l } }

// WithMockOptions sets the options of every mock context the schema creates.
func WithMockOptions(opts ...mock.Option) Option {
	return func(s *Schema) { s.mockOpts = append([]mock.Option(nil), opts...) }
}

// Builder collects types before assembly.
type Builder struct {
	opts    []Option
	entries []entry
}

type entry struct {
	name string
	doc  *dsl.DocumentNode
	obj  *dsl.NamedObjectNode
}

func (e entry) node() dsl.AnyNode {
	if e.doc != nil {
		return e.doc.Any()
	}
	return e.obj.Any()
}

// New returns an empty Builder.
func New(opts ...Option) *Builder { return &Builder{opts: opts} }

// Document registers documents.
func (b *Builder) Document(docs ...dsl.DocumentNode) *Builder {
	for i := range docs {
		d := docs[i]
		b.entries = append(b.entries, entry{name: d.Name(), doc: &d})
	}
	return b
}

// Object registers named objects.
func (b *Builder) Object(objs ...dsl.NamedObjectNode) *Builder {
	for i := range objs {
		o := objs[i]
		b.entries = append(b.entries, entry{name: o.Name(), obj: &o})
	}
	return b
}

// Build assembles the schema.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		log:    zerolog.Nop(),
		byName: make(map[string]entry, len(b.entries)),
	}
	for _, o := range b.opts {
		if o != nil {
			o(s)
		}
	}

	var problems []string
	for _, e := range b.entries {
		if _, dup := s.byName[e.name]; dup {
			problems = append(problems, "duplicate type name "+e.name)
			continue
		}
		s.byName[e.name] = e
		s.order = append(s.order, e.name)
	}
	for _, name := range s.order {
		problems = append(problems, s.check(name, s.byName[name].node().Descriptor())...)
	}
	if len(problems) > 0 {
		return nil, errors.Errorf("registry: %s", strings.Join(problems, "; "))
	}
	s.log.Debug().Int("types", len(s.order)).Msg("schema assembled")
	return s, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

var builtin = map[string]bool{
	"string": true, "text": true, "email": true, "url": true, "number": true,
	"boolean": true, "datetime": true, "date": true, "slug": true, "geopoint": true,
	"image": true, "file": true, "object": true, "array": true, "document": true,
	"reference": true,
}

// check walks a descriptor tree and reports unknown names.
func (s *Schema) check(owner string, t *descriptor.Type) []string {
	var problems []string
	var walk func(path string, t *descriptor.Type)
	walk = func(path string, t *descriptor.Type) {
		if t == nil {
			return
		}
		switch {
		case t.Type == "reference":
			if len(t.To) == 0 {
				problems = append(problems, path+": reference without targets")
			}
			for _, to := range t.To {
				e, ok := s.byName[to.Type]
				if !ok || e.doc == nil {
					problems = append(problems, path+": reference to undeclared document "+to.Type)
				}
			}
		case !builtin[t.Type]:
			if e, ok := s.byName[t.Type]; !ok || e.obj == nil {
				problems = append(problems, path+": unknown object type "+t.Type)
			}
		}
		for _, f := range t.Fields {
			walk(path+"."+f.Name, f)
		}
		for _, of := range t.Of {
			walk(path+"[]"+itemLabel(of), of)
		}
	}
	walk(owner, t)
	return problems
}

func itemLabel(t *descriptor.Type) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Type
}

// Schema is an assembled set of types. It is safe for concurrent use.
type Schema struct {
	log      zerolog.Logger
	mockOpts []mock.Option
	byName   map[string]entry
	order    []string
}

// Names returns the registered type names in registration order.
func (s *Schema) Names() []string { return append([]string(nil), s.order...) }

// Document returns the document named name.
func (s *Schema) Document(name string) (dsl.DocumentNode, bool) {
	e, ok := s.byName[name]
	if !ok || e.doc == nil {
		return dsl.DocumentNode{}, false
	}
	return *e.doc, true
}

// Object returns the named object called name.
func (s *Schema) Object(name string) (dsl.NamedObjectNode, bool) {
	e, ok := s.byName[name]
	if !ok || e.obj == nil {
		return dsl.NamedObjectNode{}, false
	}
	return *e.obj, true
}

// Documents returns the document names, sorted.
func (s *Schema) Documents() []string {
	var out []string
	for name, e := range s.byName {
		if e.doc != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Node returns the type named name as an any-typed node.
func (s *Schema) Node(name string) (dsl.AnyNode, bool) {
	e, ok := s.byName[name]
	if !ok {
		return dsl.AnyNode{}, false
	}
	return e.node(), true
}

// Descriptors returns one descriptor per registered type in registration
// order.
func (s *Schema) Descriptors() []*descriptor.Type {
	out := make([]*descriptor.Type, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name].node().Descriptor())
	}
	return out
}

// MockContext returns a root mock context with the schema's options.
func (s *Schema) MockContext() mock.Context { return mock.New(s.mockOpts...) }

// Mock generates a raw value of the type named name.
func (s *Schema) Mock(name string) (any, error) {
	n, ok := s.Node(name)
	if !ok {
		return nil, errors.Errorf("registry: unknown type %q", name)
	}
	return n.Mock(s.MockContext()), nil
}

// Parse parses raw as the type named name.
func (s *Schema) Parse(ctx context.Context, name string, raw any) (any, error) {
	n, ok := s.Node(name)
	if !ok {
		return nil, errors.Errorf("registry: unknown type %q", name)
	}
	return n.Parse(ctx, raw)
}

// ParseResolve parses raw as the type named name and resolves every
// reference in it through the schema.
func (s *Schema) ParseResolve(ctx context.Context, name string, raw any) (any, error) {
	n, ok := s.Node(name)
	if !ok {
		return nil, errors.Errorf("registry: unknown type %q", name)
	}
	v, err := n.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	return n.Resolve(ctx, v, s)
}

// ResolveReference implements docskema.Resolver. Among the reference's
// registered targets that are not already being resolved, one is chosen by
// hashing the reference id; a document of that type is generated at a path
// derived from the id, given the id as _id, parsed and resolved in turn.
// When every target is being resolved the reference is left unchanged.
func (s *Schema) ResolveReference(ctx context.Context, ref docskema.Reference, targets []string) (any, bool, error) {
	var live []dsl.DocumentNode
	for _, name := range targets {
		doc, ok := s.Document(name)
		switch {
		case !ok:
			s.log.Debug().Str("ref", ref.Ref).Str("target", name).Msg("unknown reference target")
		case docskema.IsResolving(ctx, name):
			s.log.Debug().Str("ref", ref.Ref).Str("target", name).Msg("self-reference skipped")
		default:
			live = append(live, doc)
		}
	}
	if len(live) == 0 {
		return nil, false, nil
	}
	doc := live[pick(ref.Ref, len(live))]
	s.log.Debug().Str("ref", ref.Ref).Str("target", doc.Name()).Strs("stack", docskema.ResolvingStack(ctx)).Msg("resolving reference")

	raw, ok := doc.Mock(s.MockContext().At("/" + doc.Name() + "/" + docskema.EscapeToken(ref.Ref))).(map[string]any)
	if !ok {
		return nil, false, errors.Errorf("registry: mock of %s is not an object", doc.Name())
	}
	raw[dsl.IDField] = ref.Ref
	v, err := doc.Parse(ctx, raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "registry: generated %s does not parse", doc.Name())
	}
	out, err := doc.ResolveDocument(ctx, v, s)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func pick(id string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(n))
}
