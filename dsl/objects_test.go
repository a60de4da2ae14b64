package dsl_test

import (
	"context"
	"reflect"
	"testing"

	docskema "github.com/reoring/docskema"
	g "github.com/reoring/docskema/dsl"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

func TestFields_DuplicateNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate field")
		}
	}()
	_ = g.Fields().Field("title", g.String()).OptionalField("title", g.String())
}

func TestFields_ReservedNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on reserved field name")
		}
	}()
	_ = g.Fields().Field("_id", g.String())
}

func TestFields_Immutable(t *testing.T) {
	base := g.Fields().Field("a", g.String())
	left := base.Field("b", g.String())
	right := base.Field("c", g.Number())
	if base.Len() != 1 || left.Len() != 2 || right.Len() != 2 {
		t.Fatalf("unexpected lengths base=%d left=%d right=%d", base.Len(), left.Len(), right.Len())
	}
	if _, ok := left.Lookup("c"); ok {
		t.Fatalf("sibling extension leaked into left")
	}
}

func TestFields_DescriptorsComposeRequired(t *testing.T) {
	fs := g.Fields().
		Field("title", g.String().Max(80)).
		OptionalField("subtitle", g.String())
	ds := fs.Descriptors()
	if len(ds) != 2 || ds[0].Name != "title" || ds[1].Name != "subtitle" {
		t.Fatalf("unexpected descriptors: %+v", ds)
	}
	if got := flags(ds[0].Constraints()); !reflect.DeepEqual(got, []string{rules.FlagMax, rules.FlagRequired}) {
		t.Fatalf("want=[max required] got=%v", got)
	}
	if got := flags(ds[1].Constraints()); len(got) != 0 {
		t.Fatalf("optional field should carry no rules, got=%v", got)
	}
}

func TestObject_Parse(t *testing.T) {
	ctx := context.Background()
	obj := g.Object(g.Fields().
		Field("name", g.String()).
		OptionalField("age", g.Number().Integer()).
		Field("address", g.Object(g.Fields().Field("city", g.String().Max(5)))))

	v, err := obj.Parse(ctx, map[string]any{
		"name":    "Ann",
		"extra":   true,
		"address": map[string]any{"city": "Kyoto"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v["extra"]; ok {
		t.Fatalf("undeclared key should be dropped: %v", v)
	}
	if _, ok := v["age"]; ok {
		t.Fatalf("absent optional should be omitted: %v", v)
	}

	_, err = obj.Parse(ctx, map[string]any{"address": map[string]any{"city": "Sapporo"}})
	mustIssue(t, err, docskema.CodeRequired, "/name")
	mustIssue(t, err, docskema.CodeTooLong, "/address/city")

	_, err = obj.Parse(ctx, []any{})
	mustIssue(t, err, docskema.CodeInvalidType, "/")
}

func TestObject_MockPopulatesEveryField(t *testing.T) {
	obj := g.Object(g.Fields().
		Field("a", g.String()).
		OptionalField("b", g.Number()))
	raw, ok := obj.Mock(mock.New()).(map[string]any)
	if !ok {
		t.Fatalf("mock should be a map")
	}
	if _, ok := raw["a"]; !ok {
		t.Fatalf("missing a in %v", raw)
	}
	if _, ok := raw["b"]; !ok {
		t.Fatalf("missing optional b in %v", raw)
	}
}

func TestNamedObject(t *testing.T) {
	ctx := context.Background()
	hero := g.NamedObject("hero", g.Fields().Field("heading", g.String()))

	d := hero.Descriptor()
	if d.Type != "object" || d.Name != "hero" || len(d.Fields) != 1 {
		t.Fatalf("unexpected descriptor: %+v", d)
	}

	v, err := hero.Parse(ctx, map[string]any{"heading": "Hi"})
	if err != nil || v["_type"] != "hero" {
		t.Fatalf("want _type=hero got=%v err=%v", v, err)
	}
	_, err = hero.Parse(ctx, map[string]any{"_type": "cta", "heading": "Hi"})
	mustIssue(t, err, docskema.CodeInvalidLiteral, "/_type")

	raw := hero.Mock(mock.New(mock.Seed(3))).(map[string]any)
	if raw["_type"] != "hero" {
		t.Fatalf("mock missing type tag: %v", raw)
	}
}

func TestNamedObject_Ref(t *testing.T) {
	ctx := context.Background()
	hero := g.NamedObject("hero", g.Fields().Field("heading", g.String()))
	ref := hero.Ref(g.Title("Hero"))

	d := ref.Descriptor()
	if d.Type != "hero" || len(d.Fields) != 0 || d.Title != "Hero" {
		t.Fatalf("ref descriptor should only name the type: %+v", d)
	}
	raw := ref.Mock(mock.New())
	if _, err := ref.Parse(ctx, raw); err != nil {
		t.Fatalf("ref should delegate parse: %v", err)
	}
	_, err := ref.Parse(ctx, map[string]any{})
	mustIssue(t, err, docskema.CodeRequired, "/heading")
}

func TestNamedObject_DirectAndRefParseEqual(t *testing.T) {
	ctx := context.Background()
	fs := g.Fields().
		Field("heading", g.String()).
		OptionalField("count", g.Number().Integer())
	hero := g.NamedObject("hero", fs)

	direct := g.Object(g.Fields().Field("hero", hero))
	viaRef := g.Object(g.Fields().Field("hero", hero.Ref()))

	raw := map[string]any{"hero": map[string]any{"_type": "hero", "heading": "Hi", "count": 2.0}}
	a, err := direct.Parse(ctx, raw)
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	b, err := viaRef.Parse(ctx, raw)
	if err != nil {
		t.Fatalf("ref: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("want equal values\ndirect=%v\nref=%v", a, b)
	}
}
