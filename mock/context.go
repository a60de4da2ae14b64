// Package mock provides deterministic synthetic value generation for schema
// nodes. A Context carries the structural path from the root (field names
// and array indices as a JSON Pointer); every generator derived from it is
// seeded by that path, so generating twice at the same path yields the same
// value and there is no global random state.
package mock

import (
	"hash/fnv"
	"strconv"
	"strings"
	"time"
)

// Context is the generation context threaded through every Mock call. The
// zero value is usable and generates at the root path with default options.
type Context struct {
	path string
	opts *options
}

type options struct {
	seed     uint64
	arrayMin int
	arrayMax int
	timeMin  time.Time
	timeMax  time.Time
}

var defaultOptions = options{
	seed:     0,
	arrayMin: 1,
	arrayMax: 3,
	timeMin:  time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
	timeMax:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
}

// Option configures a Context.
type Option func(*options)

// Seed sets the base seed mixed into every path seed.
func Seed(n uint64) Option { return func(o *options) { o.seed = n } }

// ArrayLength sets the element count range used for arrays without
// cardinality constraints.
func ArrayLength(min, max int) Option {
	return func(o *options) {
		if min < 0 {
			min = 0
		}
		if max < min {
			max = min
		}
		o.arrayMin, o.arrayMax = min, max
	}
}

// TimeRange bounds generated timestamps and dates that carry no Min/Max of
// their own.
func TimeRange(min, max time.Time) Option {
	return func(o *options) {
		if max.Before(min) {
			min, max = max, min
		}
		o.timeMin, o.timeMax = min.UTC(), max.UTC()
	}
}

// New returns a root Context.
func New(opts ...Option) Context {
	o := defaultOptions
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return Context{path: "", opts: &o}
}

func (c Context) options() *options {
	if c.opts == nil {
		return &defaultOptions
	}
	return c.opts
}

// Field returns the context of the named child.
func (c Context) Field(name string) Context {
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return Context{path: c.path + "/" + esc, opts: c.opts}
}

// Index returns the context of the i-th array element.
func (c Context) Index(i int) Context {
	return Context{path: c.path + "/" + strconv.Itoa(i), opts: c.opts}
}

// At returns a context rooted at an unrelated path, keeping the options.
// Resolvers use it to generate a target document per reference id.
func (c Context) At(path string) Context {
	if path == "/" {
		path = ""
	}
	return Context{path: path, opts: c.opts}
}

// Path returns the JSON Pointer of the context ("/" at the root).
func (c Context) Path() string {
	if c.path == "" {
		return "/"
	}
	return c.path
}

// Seed returns the seed derived from the base seed and the path.
func (c Context) Seed() uint64 {
	h := fnv.New64a()
	var b [8]byte
	s := c.options().seed
	for i := range b {
		b[i] = byte(s >> (8 * i))
	}
	_, _ = h.Write(b[:])
	_, _ = h.Write([]byte(c.Path()))
	return h.Sum64()
}

// ArrayLength returns the configured default element count range.
func (c Context) ArrayLength() (min, max int) {
	o := c.options()
	return o.arrayMin, o.arrayMax
}

// TimeRange returns the configured default timestamp range.
func (c Context) TimeRange() (min, max time.Time) {
	o := c.options()
	return o.timeMin, o.timeMax
}

// Gen returns a generator seeded for this context's path.
func (c Context) Gen() *Generator { return newGenerator(c) }
