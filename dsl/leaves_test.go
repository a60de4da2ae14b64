package dsl_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	docskema "github.com/reoring/docskema"
	g "github.com/reoring/docskema/dsl"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

func mustIssue(t *testing.T, err error, code, path string) {
	t.Helper()
	iss, ok := docskema.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues error, got %v", err)
	}
	if !iss.Has(code, path) {
		t.Fatalf("want=%s at %s got=%v", code, path, iss)
	}
}

func flags(cs []rules.Constraint) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Flag)
	}
	return out
}

func TestString_Basic(t *testing.T) {
	ctx := context.Background()
	s := g.String()

	v, err := s.Parse(ctx, "hello")
	if err != nil || v != "hello" {
		t.Fatalf("parse ok expected, got v=%v err=%v", v, err)
	}
	_, err = s.Parse(ctx, 1)
	mustIssue(t, err, docskema.CodeInvalidType, "/")
}

func TestString_Constraints(t *testing.T) {
	ctx := context.Background()
	s := g.String().Min(2).Max(4)

	_, err := s.Parse(ctx, "a")
	mustIssue(t, err, docskema.CodeTooShort, "/")
	_, err = s.Parse(ctx, "abcde")
	mustIssue(t, err, docskema.CodeTooLong, "/")
	if _, err := s.Parse(ctx, "abc"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got := flags(s.Descriptor().Constraints())
	if len(got) != 2 || got[0] != rules.FlagMin || got[1] != rules.FlagMax {
		t.Fatalf("want=[min max] got=%v", got)
	}

	_, err = g.String().Regex(`^[a-z]+$`).Parse(ctx, "ABC")
	mustIssue(t, err, docskema.CodePattern, "/")

	_, err = g.String().List("draft", "published").Parse(ctx, "archived")
	mustIssue(t, err, docskema.CodeInvalidEnum, "/")
}

func TestString_BuildersAreImmutable(t *testing.T) {
	base := g.String()
	_ = base.Max(3)
	if _, err := base.Parse(context.Background(), "longer than three"); err != nil {
		t.Fatalf("base node changed by derived builder: %v", err)
	}
}

func TestString_InvalidPatternPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = g.String().Regex("(")
}

func TestText_Descriptor(t *testing.T) {
	d := g.Text().Rows(4).Descriptor()
	if d.Type != "text" || d.Options["rows"] != 4 {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}

func TestEmailAndURL(t *testing.T) {
	ctx := context.Background()
	if _, err := g.Email().Parse(ctx, "a@example.com"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := g.Email().Parse(ctx, "not-an-email")
	mustIssue(t, err, docskema.CodeInvalidFormat, "/")

	if _, err := g.URL().Parse(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = g.URL().Parse(ctx, "/relative")
	mustIssue(t, err, docskema.CodeInvalidFormat, "/")
	if _, err := g.URL().AllowRelative().Parse(ctx, "/relative"); err != nil {
		t.Fatalf("relative should pass: %v", err)
	}
	_, err = g.URL().Parse(ctx, "ftp://example.com")
	mustIssue(t, err, docskema.CodeInvalidFormat, "/")
	if _, err := g.URL().Schemes("mailto").Parse(ctx, "mailto:a@example.com"); err != nil {
		t.Fatalf("mailto should pass: %v", err)
	}
}

func TestNumber_Basic(t *testing.T) {
	ctx := context.Background()
	n := g.Number()

	for _, raw := range []any{3.5, 7, int64(2), json.Number("1.25")} {
		if _, err := n.Parse(ctx, raw); err != nil {
			t.Fatalf("parse %v: %v", raw, err)
		}
	}
	v, _ := n.Parse(ctx, json.Number("1.25"))
	if v != 1.25 {
		t.Fatalf("want=1.25 got=%v", v)
	}
	_, err := n.Parse(ctx, "1")
	mustIssue(t, err, docskema.CodeInvalidType, "/")
}

func TestNumber_Constraints(t *testing.T) {
	ctx := context.Background()

	_, err := g.Number().Min(1).Parse(ctx, 0.5)
	mustIssue(t, err, docskema.CodeTooSmall, "/")
	_, err = g.Number().Max(1).Parse(ctx, 2)
	mustIssue(t, err, docskema.CodeTooBig, "/")
	_, err = g.Number().Integer().Parse(ctx, 1.5)
	mustIssue(t, err, docskema.CodeInvalidType, "/")
	_, err = g.Number().Positive().Parse(ctx, 0)
	mustIssue(t, err, docskema.CodeTooSmall, "/")
	_, err = g.Number().Precision(2).Parse(ctx, 1.234)
	mustIssue(t, err, docskema.CodeInvalidFormat, "/")
	if _, err := g.Number().Precision(2).Parse(ctx, 1.23); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = g.Number().List(1, 2, 3).Parse(ctx, 4)
	mustIssue(t, err, docskema.CodeInvalidEnum, "/")
}

func TestBoolean(t *testing.T) {
	ctx := context.Background()
	v, err := g.Boolean().Parse(ctx, true)
	if err != nil || !v {
		t.Fatalf("parse ok expected, got v=%v err=%v", v, err)
	}
	_, err = g.Boolean().Parse(ctx, "true")
	mustIssue(t, err, docskema.CodeInvalidType, "/")
}

func TestDateTime_ConvertsWireString(t *testing.T) {
	ctx := context.Background()
	v, err := g.DateTime().Parse(ctx, "2024-03-01T10:20:30+09:00")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2024, 3, 1, 1, 20, 30, 0, time.UTC)
	if !v.Equal(want) || v.Location() != time.UTC {
		t.Fatalf("want=%v got=%v", want, v)
	}
	_, err = g.DateTime().Parse(ctx, "yesterday")
	mustIssue(t, err, docskema.CodeInvalidFormat, "/")

	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = g.DateTime().Min(lo).Parse(ctx, "2023-12-31T23:59:59Z")
	mustIssue(t, err, docskema.CodeTooSmall, "/")
}

func TestDate(t *testing.T) {
	ctx := context.Background()
	v, err := g.Date().Parse(ctx, "2024-02-29")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Year() != 2024 || v.Month() != time.February || v.Day() != 29 {
		t.Fatalf("unexpected date: %v", v)
	}
	_, err = g.Date().Parse(ctx, "2023-02-29")
	mustIssue(t, err, docskema.CodeInvalidFormat, "/")
}

func TestSlug_UnwrapsEnvelope(t *testing.T) {
	ctx := context.Background()
	v, err := g.Slug().Parse(ctx, map[string]any{"_type": "slug", "current": "hello-world"})
	if err != nil || v != "hello-world" {
		t.Fatalf("want=hello-world got=%v err=%v", v, err)
	}
	_, err = g.Slug().Parse(ctx, map[string]any{"_type": "slug"})
	mustIssue(t, err, docskema.CodeRequired, "/current")
	_, err = g.Slug().Max(3).Parse(ctx, map[string]any{"current": "abcd"})
	mustIssue(t, err, docskema.CodeTooLong, "/current")

	d := g.Slug().Source("title").Max(96).Descriptor()
	if d.Options["source"] != "title" || d.Options["maxLength"] != 96 {
		t.Fatalf("unexpected options: %v", d.Options)
	}
}

func TestGeopoint(t *testing.T) {
	ctx := context.Background()
	p, err := g.Geopoint().Parse(ctx, map[string]any{"_type": "geopoint", "lat": 35.6, "lng": 139.7})
	if err != nil || p.Lat != 35.6 || p.Lng != 139.7 || p.Alt != nil {
		t.Fatalf("unexpected point=%+v err=%v", p, err)
	}
	_, err = g.Geopoint().Parse(ctx, map[string]any{"lat": 100, "lng": 0})
	mustIssue(t, err, docskema.CodeTooBig, "/lat")
	_, err = g.Geopoint().Parse(ctx, map[string]any{"lat": 1})
	mustIssue(t, err, docskema.CodeRequired, "/lng")
}

func TestImage(t *testing.T) {
	ctx := context.Background()
	img := g.Image().Hotspot().WithFields(g.Fields().OptionalField("alt", g.String()))
	v, err := img.Parse(ctx, map[string]any{
		"_type": "image",
		"asset": map[string]any{"_type": "reference", "_ref": "image-abc-10x10-png"},
		"alt":   "cover",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ref, ok := v["asset"].(docskema.Reference)
	if !ok || ref.Ref != "image-abc-10x10-png" || v["alt"] != "cover" {
		t.Fatalf("unexpected value: %v", v)
	}
	_, err = img.Parse(ctx, map[string]any{"_type": "image"})
	mustIssue(t, err, docskema.CodeRequired, "/asset")

	d := img.Descriptor()
	if d.Type != "image" || d.Options["hotspot"] != true || d.Field("alt") == nil {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}

func TestLeaves_MockParses(t *testing.T) {
	ctx := context.Background()
	lo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	nodes := map[string]g.Child{
		"string":      g.String(),
		"string-min":  g.String().Min(3).Max(10),
		"string-len":  g.String().Length(6),
		"string-list": g.String().List("a", "b"),
		"string-re":   g.String().Regex(`[a-z]{3}-[0-9]{2}`),
		"re-min":      g.String().Regex(`^[a-z]+$`).Min(20),
		"re-max":      g.String().Regex(`^x+$`).Max(3),
		"re-len":      g.String().Regex(`^[A-Z]{3}-\d+$`).Length(9),
		"re-range":    g.String().Regex(`^(ab|c)*z?$`).Min(12).Max(14),
		"text":        g.Text(),
		"email":       g.Email(),
		"url":         g.URL(),
		"number":      g.Number(),
		"integer":     g.Number().Min(1).Max(5).Integer(),
		"precision":   g.Number().Precision(2).Positive(),
		"boolean":     g.Boolean(),
		"datetime":    g.DateTime().Min(lo).Max(hi),
		"date":        g.Date(),
		"slug":        g.Slug().Max(20),
		"geopoint":    g.Geopoint(),
		"image":       g.Image().WithFields(g.Fields().Field("alt", g.String())),
		"file":        g.File(),
	}
	for name, n := range nodes {
		node := n.Any()
		for seed := uint64(0); seed < 25; seed++ {
			raw := node.Mock(mock.New(mock.Seed(seed)))
			if _, err := node.Parse(ctx, raw); err != nil {
				t.Fatalf("%s seed=%d: mock %v does not parse: %v", name, seed, raw, err)
			}
		}
	}
}
