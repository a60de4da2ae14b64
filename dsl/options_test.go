package dsl_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/descriptor"
	g "github.com/reoring/docskema/dsl"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/rules"
)

func upper(_ context.Context, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", errors.New("not a string")
	}
	return strings.ToUpper(s), nil
}

func TestParseWith_ConstraintsStillApply(t *testing.T) {
	ctx := context.Background()
	s := g.String(g.ParseWith(upper)).Max(3)

	v, err := s.Parse(ctx, "abc")
	if err != nil || v != "ABC" {
		t.Fatalf("want=ABC got=%v err=%v", v, err)
	}
	_, err = s.Parse(ctx, "abcd")
	mustIssue(t, err, docskema.CodeTooLong, "/")

	v, err = g.String(g.ParseWith(upper), g.SkipConstraints()).Max(3).Parse(ctx, "abcd")
	if err != nil || v != "ABCD" {
		t.Fatalf("want=ABCD got=%v err=%v", v, err)
	}

	_, err = s.Parse(ctx, 1)
	mustIssue(t, err, docskema.CodeParseError, "/")
}

func TestParseWith_WrongResultType(t *testing.T) {
	n := g.Number(g.ParseWith(func(context.Context, any) (string, error) { return "x", nil }))
	_, err := n.Parse(context.Background(), 1)
	mustIssue(t, err, docskema.CodeInvalidType, "/")
}

func TestMockWith(t *testing.T) {
	s := g.String(g.MockWith(func(mock.Context) any { return "fixed" }))
	if got := s.Mock(mock.New(mock.Seed(9))); got != "fixed" {
		t.Fatalf("want=fixed got=%v", got)
	}
}

func TestDescribeWith_AndMetadata(t *testing.T) {
	d := g.String(
		g.Title("Title"),
		g.Description("desc"),
		g.Hidden(),
		g.ReadOnly(),
		g.InitialValue("x"),
		g.Meta("fieldset", "seo"),
		g.DescribeWith(func(t *descriptor.Type) *descriptor.Type {
			t.Options = map[string]any{"layout": "radio"}
			return t
		}),
	).Descriptor()
	if d.Title != "Title" || d.Description != "desc" || !d.Hidden || !d.ReadOnly || d.InitialValue != "x" {
		t.Fatalf("metadata missing: %+v", d)
	}
	if d.Extra["fieldset"] != "seo" || d.Options["layout"] != "radio" {
		t.Fatalf("extras missing: %+v", d)
	}
}

func TestValidation_CustomRule(t *testing.T) {
	ctx := context.Background()
	unlucky := func(r rules.Rule) rules.Rule {
		return r.Custom(func(v any) error {
			if v.(float64) == 13 {
				return errors.New("unlucky")
			}
			return nil
		}).Error("no thirteen")
	}
	n := g.Number(g.Validation(unlucky)).Min(0)

	got := flags(n.Descriptor().Constraints())
	if len(got) != 2 || got[0] != rules.FlagMin || got[1] != rules.FlagCustom {
		t.Fatalf("want=[min custom] got=%v", got)
	}
	_, err := n.Parse(ctx, 13)
	mustIssue(t, err, docskema.CodeCustom, "/")
	if _, err := n.Parse(ctx, 12); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

type upperNode struct{}

func (upperNode) Descriptor() *descriptor.Type { return &descriptor.Type{Type: "string"} }
func (upperNode) Parse(ctx context.Context, raw any) (string, error) {
	return upper(ctx, raw)
}
func (upperNode) Mock(mock.Context) any { return "abc" }

func TestOf_AdaptsForeignNode(t *testing.T) {
	ctx := context.Background()
	obj := g.Object(g.Fields().Field("name", g.Of[string](upperNode{})))
	v, err := obj.Parse(ctx, obj.Mock(mock.New()))
	if err != nil || v["name"] != "ABC" {
		t.Fatalf("want name=ABC got=%v err=%v", v, err)
	}
	if _, ok := g.Of[string](upperNode{}).Orig().(upperNode); !ok {
		t.Fatalf("Orig should return the adapted node")
	}
}
