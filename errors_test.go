package docskema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	docskema "github.com/reoring/docskema"
)

func TestIssues_ErrorSummarizes(t *testing.T) {
	iss := docskema.Issues{
		{Path: "/a", Code: docskema.CodeRequired},
		{Path: "/b", Code: docskema.CodeInvalidType},
		{Path: "/c", Code: docskema.CodeTooLong},
		{Path: "/d", Code: docskema.CodeTooShort},
	}
	got := iss.Error()
	want := "required at /a; invalid_type at /b; too_long at /c; ... (total 4)"
	if got != want {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestAsIssues_ThroughWrapping(t *testing.T) {
	var err error = docskema.Fail(docskema.CodeParseError, "x")
	wrapped := fmt.Errorf("outer: %w", err)

	iss, ok := docskema.AsIssues(wrapped)
	if !ok || len(iss) != 1 || iss[0].Path != "/" {
		t.Fatalf("unexpected iss=%v ok=%v", iss, ok)
	}
	var target docskema.Issues
	if !errors.As(wrapped, &target) {
		t.Fatalf("errors.As should find Issues")
	}
	if _, ok := docskema.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain errors are not Issues")
	}
}

func TestRebase(t *testing.T) {
	child := docskema.Issues{
		{Path: "/", Code: docskema.CodeRequired},
		{Path: "/title", Code: docskema.CodeTooLong},
	}
	got := docskema.Rebase("/items/2", child)
	if got[0].Path != "/items/2" || got[1].Path != "/items/2/title" {
		t.Fatalf("unexpected paths: %v", got)
	}

	plain := docskema.Rebase("/x", errors.New("bad"))
	if len(plain) != 1 || plain[0].Code != docskema.CodeParseError || plain[0].Path != "/x" {
		t.Fatalf("unexpected: %v", plain)
	}
	if docskema.Rebase("/x", nil) != nil {
		t.Fatalf("nil error should rebase to nil")
	}
}

func TestPathRef(t *testing.T) {
	p := docskema.Root().Field("a/b").Index(3).Field("c~d")
	if got := p.Pointer(); got != "/a~1b/3/c~0d" {
		t.Fatalf("want=/a~1b/3/c~0d got=%s", got)
	}
	it := p.Issue(docskema.CodeTooBig, "too big", "max", 3)
	if it.Path != p.Pointer() || it.Params["max"] != 3 {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if got := docskema.At("/x/1").Pointer(); got != "/x/1" {
		t.Fatalf("want=/x/1 got=%s", got)
	}
	if !strings.HasPrefix(docskema.Root().Pointer(), "/") {
		t.Fatalf("root pointer should be /")
	}
}
