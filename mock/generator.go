package mock

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// namespace scopes generated identifiers.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/reoring/docskema"))

// Generator offers leaf-level value producers. It is seeded from a single
// Context and is not safe for concurrent use; create one per leaf.
type Generator struct {
	f    *gofakeit.Faker
	name []byte
}

func newGenerator(c Context) *Generator {
	seed := c.Seed()
	return &Generator{
		f:    gofakeit.New(seed),
		name: []byte(strconv.FormatUint(c.options().seed, 10) + ":" + c.Path()),
	}
}

// Faker exposes the seeded faker for custom mock overrides.
func (g *Generator) Faker() *gofakeit.Faker { return g.f }

// ID returns a UUID derived from the base seed and path.
func (g *Generator) ID() string { return uuid.NewSHA1(namespace, g.name).String() }

// Key returns a short hex key derived from the base seed and path, used for
// array element keys.
func (g *Generator) Key() string {
	u := uuid.NewSHA1(namespace, append([]byte("key:"), g.name...))
	return hex.EncodeToString(u[:6])
}

// Revision returns a revision token derived from the base seed and path.
func (g *Generator) Revision() string {
	u := uuid.NewSHA1(namespace, append([]byte("rev:"), g.name...))
	return strings.ReplaceAll(u.String(), "-", "")[:22]
}

// Int returns an int in [min, max].
func (g *Generator) Int(min, max int) int {
	if max <= min {
		return min
	}
	return g.f.IntRange(min, max)
}

// Float returns a float64 in [min, max].
func (g *Generator) Float(min, max float64) float64 {
	if max <= min {
		return min
	}
	return g.f.Float64Range(min, max)
}

// Bool returns a random boolean.
func (g *Generator) Bool() bool { return g.f.Bool() }

// Pick returns an index in [0, n).
func (g *Generator) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return g.f.IntRange(0, n-1)
}

// Time returns a time in [min, max] truncated to the second.
func (g *Generator) Time(min, max time.Time) time.Time {
	if !max.After(min) {
		return min.UTC()
	}
	t := g.f.DateRange(min, max).UTC().Truncate(time.Second)
	if t.Before(min) {
		return min.UTC()
	}
	return t
}

// Words returns lorem text whose length in bytes lies in [minLen, maxLen].
// A negative maxLen means unbounded; the text then has a few words.
func (g *Generator) Words(minLen, maxLen int) string {
	if minLen < 0 {
		minLen = 0
	}
	if maxLen >= 0 && maxLen < minLen {
		maxLen = minLen
	}
	var target int
	switch {
	case maxLen < 0:
		target = minLen + g.Int(3, 24)
	default:
		lo := minLen
		if lo == 0 && maxLen > 0 {
			lo = 1
		}
		target = g.Int(lo, maxLen)
	}
	if target == 0 {
		return ""
	}
	var b strings.Builder
	for b.Len() < target {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(g.f.Word())
	}
	s := b.String()[:target]
	if strings.HasSuffix(s, " ") {
		s = s[:len(s)-1] + "a"
	}
	return s
}

// Regex returns a string matching pattern.
func (g *Generator) Regex(pattern string) string { return g.f.Regex(pattern) }

// URL returns an absolute http(s) URL.
func (g *Generator) URL() string { return g.f.URL() }

// Email returns an email address.
func (g *Generator) Email() string { return g.f.Email() }

// Latitude returns a latitude in [-90, 90].
func (g *Generator) Latitude() float64 { return g.f.Latitude() }

// Longitude returns a longitude in [-180, 180].
func (g *Generator) Longitude() float64 { return g.f.Longitude() }
