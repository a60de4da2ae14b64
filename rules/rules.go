// Package rules provides the declarative validation builder emitted into
// schema descriptors. A Rule is an immutable, fluent record of constraints;
// a Func transforms one Rule into another and is what descriptors carry.
//
//	v := rules.Compose(
//	    func(r rules.Rule) rules.Rule { return r.Min(1).Max(80) },
//	    func(r rules.Rule) rules.Rule { return r.Required() },
//	)
//	v(rules.New()).Constraints() // [min 1] [max 80] [required]
package rules

import "fmt"

// Flags used by the built-in constraints.
const (
	FlagRequired  = "required"
	FlagMin       = "min"
	FlagMax       = "max"
	FlagLength    = "length"
	FlagRegex     = "regex"
	FlagInteger   = "integer"
	FlagPositive  = "positive"
	FlagPrecision = "precision"
	FlagURI       = "uri"
	FlagEmail     = "email"
	FlagUnique    = "unique"
	FlagCustom    = "custom"
)

// Constraint is a single recorded rule call.
type Constraint struct {
	Flag       string `json:"flag" yaml:"flag"`
	Constraint any    `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	// Check is set for custom predicates. It runs against the application
	// value after parsing.
	Check func(v any) error `json:"-" yaml:"-"`
}

// Rule records constraints in call order. Methods never modify the
// receiver.
type Rule struct {
	cs []Constraint
}

// Func maps a Rule to a Rule. A nil Func is the identity.
type Func func(Rule) Rule

// New returns an empty Rule.
func New() Rule { return Rule{} }

func (r Rule) with(c Constraint) Rule {
	cs := make([]Constraint, len(r.cs), len(r.cs)+1)
	copy(cs, r.cs)
	return Rule{cs: append(cs, c)}
}

// Constraints returns a copy of the recorded constraints.
func (r Rule) Constraints() []Constraint { return append([]Constraint(nil), r.cs...) }

// Has reports whether a constraint with flag was recorded.
func (r Rule) Has(flag string) bool {
	for _, c := range r.cs {
		if c.Flag == flag {
			return true
		}
	}
	return false
}

func (r Rule) Required() Rule          { return r.with(Constraint{Flag: FlagRequired}) }
func (r Rule) Min(n any) Rule          { return r.with(Constraint{Flag: FlagMin, Constraint: n}) }
func (r Rule) Max(n any) Rule          { return r.with(Constraint{Flag: FlagMax, Constraint: n}) }
func (r Rule) Length(n int) Rule       { return r.with(Constraint{Flag: FlagLength, Constraint: n}) }
func (r Rule) Integer() Rule           { return r.with(Constraint{Flag: FlagInteger}) }
func (r Rule) Positive() Rule          { return r.with(Constraint{Flag: FlagPositive}) }
func (r Rule) Precision(n int) Rule    { return r.with(Constraint{Flag: FlagPrecision, Constraint: n}) }
func (r Rule) Email() Rule             { return r.with(Constraint{Flag: FlagEmail}) }
func (r Rule) Unique() Rule            { return r.with(Constraint{Flag: FlagUnique}) }
func (r Rule) URI(schemes ...string) Rule {
	opts := map[string]any{}
	if len(schemes) > 0 {
		opts["scheme"] = append([]string(nil), schemes...)
	}
	return r.with(Constraint{Flag: FlagURI, Constraint: opts})
}

// Regex records a pattern constraint; name is an optional label.
func (r Rule) Regex(pattern, name string) Rule {
	c := map[string]any{"pattern": pattern}
	if name != "" {
		c["name"] = name
	}
	return r.with(Constraint{Flag: FlagRegex, Constraint: c})
}

// Custom records a predicate checked against the parsed value.
func (r Rule) Custom(fn func(v any) error) Rule {
	return r.with(Constraint{Flag: FlagCustom, Check: fn})
}

// Error attaches msg to the most recently recorded constraint.
func (r Rule) Error(msg string) Rule {
	if len(r.cs) == 0 {
		return r
	}
	cs := append([]Constraint(nil), r.cs...)
	cs[len(cs)-1].Message = msg
	return Rule{cs: cs}
}

// Compose folds fns left to right into a single Func. Nil entries are
// skipped; the result of composing nothing is nil.
func Compose(fns ...Func) Func {
	var live []Func
	for _, f := range fns {
		if f != nil {
			live = append(live, f)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(r Rule) Rule {
		for _, f := range live {
			r = f(r)
		}
		return r
	}
}

// Check runs every custom predicate recorded by fn against v and returns
// the failures in order.
func Check(fn Func, v any) []error {
	if fn == nil {
		return nil
	}
	var errs []error
	for _, c := range fn(New()).cs {
		if c.Flag != FlagCustom || c.Check == nil {
			continue
		}
		if err := c.Check(v); err != nil {
			if c.Message != "" {
				err = fmt.Errorf("%s: %w", c.Message, err)
			}
			errs = append(errs, err)
		}
	}
	return errs
}
