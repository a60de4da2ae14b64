package mock_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/reoring/docskema/mock"
)

func TestContext_Paths(t *testing.T) {
	mc := mock.New()
	if mc.Path() != "/" {
		t.Fatalf("want=/ got=%s", mc.Path())
	}
	if got := mc.Field("items").Index(2).Field("a/b").Path(); got != "/items/2/a~1b" {
		t.Fatalf("want=/items/2/a~1b got=%s", got)
	}
	if got := mc.Field("x").At("/post/abc").Path(); got != "/post/abc" {
		t.Fatalf("want=/post/abc got=%s", got)
	}
	var zero mock.Context
	if lo, hi := zero.ArrayLength(); lo != 1 || hi != 3 {
		t.Fatalf("zero context should use defaults, got %d..%d", lo, hi)
	}
}

func TestContext_SeedDependsOnPathAndBase(t *testing.T) {
	a := mock.New(mock.Seed(1))
	b := mock.New(mock.Seed(2))
	if a.Field("x").Seed() != mock.New(mock.Seed(1)).Field("x").Seed() {
		t.Fatalf("same base and path should give the same seed")
	}
	if a.Field("x").Seed() == a.Field("y").Seed() {
		t.Fatalf("different paths should give different seeds")
	}
	if a.Field("x").Seed() == b.Field("x").Seed() {
		t.Fatalf("different base seeds should give different seeds")
	}
}

func TestContext_Options(t *testing.T) {
	lo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := mock.New(mock.ArrayLength(4, 2), mock.TimeRange(lo, hi))
	if l, h := mc.ArrayLength(); l != 4 || h != 4 {
		t.Fatalf("want=4..4 got=%d..%d", l, h)
	}
	if l, h := mc.TimeRange(); !l.Equal(hi) || !h.Equal(lo) {
		t.Fatalf("time range should be ordered, got %v..%v", l, h)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	mc := mock.New(mock.Seed(99)).Field("title")
	g1, g2 := mc.Gen(), mc.Gen()
	if g1.ID() != g2.ID() || g1.Words(5, 20) != g2.Words(5, 20) || g1.Key() != g2.Key() {
		t.Fatalf("generators at the same path should agree")
	}
	if g1.ID() == mock.New(mock.Seed(99)).Field("body").Gen().ID() {
		t.Fatalf("ids at different paths should differ")
	}
}

func TestGenerator_Ranges(t *testing.T) {
	key := regexp.MustCompile(`^[0-9a-f]{12}$`)
	lo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		g := mock.New(mock.Seed(uint64(i))).Gen()
		if n := g.Int(3, 5); n < 3 || n > 5 {
			t.Fatalf("int out of range: %d", n)
		}
		if f := g.Float(-1, 1); f < -1 || f > 1 {
			t.Fatalf("float out of range: %v", f)
		}
		if s := g.Words(4, 9); len(s) < 4 || len(s) > 9 {
			t.Fatalf("words length out of range: %q", s)
		}
		if tm := g.Time(lo, hi); tm.Before(lo) || tm.After(hi) {
			t.Fatalf("time out of range: %v", tm)
		}
		if k := g.Key(); !key.MatchString(k) {
			t.Fatalf("unexpected key %q", k)
		}
		if r := g.Revision(); len(r) != 22 {
			t.Fatalf("unexpected revision %q", r)
		}
	}
}
