package dsl

import "regexp/syntax"

// boundedPattern rewrites pattern into a narrower pattern whose matches all
// have the same rune count, somewhere in [lo, hi]. Lengths are tried from
// start, wrapping around. Every match of the result also matches pattern.
// It reports false when no length in range can be reached.
func boundedPattern(pattern string, lo, hi, start int) (string, bool) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil || hi < lo {
		return "", false
	}
	var slots []repeatSlot
	re = shrinkPattern(re, &slots)
	base := minWidth(re)
	span := hi - lo + 1
	for i := range span {
		t := lo + ((start-lo+i)%span+span)%span
		if fillSlots(slots, t-base) {
			return re.String(), true
		}
	}
	return "", false
}

// repeatSlot is a repetition of a fixed-width expression that can grow by
// up to room copies; room < 0 is unbounded.
type repeatSlot struct {
	node  *syntax.Regexp
	min   int
	width int
	room  int
}

func fillSlots(slots []repeatSlot, extra int) bool {
	if extra < 0 {
		return false
	}
	for _, s := range slots {
		k := extra / s.width
		if s.room >= 0 {
			k = min(k, s.room)
		}
		s.node.Min, s.node.Max = s.min+k, s.min+k
		extra -= k * s.width
	}
	return extra == 0
}

// shrinkPattern returns a copy of re where every optional part is dropped,
// alternations keep their shortest branch and repetitions are pinned to
// their minimum. Repetitions with a body of nonzero width are recorded in
// slots so their count can be raised afterwards.
func shrinkPattern(re *syntax.Regexp, slots *[]repeatSlot) *syntax.Regexp {
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus, syntax.OpRepeat:
		lo, hi := re.Min, re.Max
		switch re.Op {
		case syntax.OpStar:
			lo, hi = 0, -1
		case syntax.OpPlus:
			lo, hi = 1, -1
		}
		sub := re.Sub[0]
		if _, ok := fixedWidth(sub); !ok {
			// Pin the body to its shortest form so every copy has the same width.
			var inner []repeatSlot
			sub = shrinkPattern(sub, &inner)
		}
		if w, _ := fixedWidth(sub); w > 0 && (hi < 0 || hi > lo) {
			node := &syntax.Regexp{Op: syntax.OpRepeat, Flags: re.Flags, Min: lo, Max: lo, Sub: []*syntax.Regexp{sub}}
			room := -1
			if hi >= 0 {
				room = hi - lo
			}
			*slots = append(*slots, repeatSlot{node: node, min: lo, width: w, room: room})
			return node
		}
		if lo == 0 {
			return &syntax.Regexp{Op: syntax.OpEmptyMatch}
		}
		return &syntax.Regexp{Op: syntax.OpRepeat, Flags: re.Flags, Min: lo, Max: lo, Sub: []*syntax.Regexp{sub}}
	case syntax.OpQuest:
		return &syntax.Regexp{Op: syntax.OpEmptyMatch}
	case syntax.OpAlternate:
		best := re.Sub[0]
		for _, s := range re.Sub[1:] {
			if minWidth(s) < minWidth(best) {
				best = s
			}
		}
		return shrinkPattern(best, slots)
	case syntax.OpConcat, syntax.OpCapture:
		c := *re
		c.Sub = make([]*syntax.Regexp, len(re.Sub))
		for i, s := range re.Sub {
			c.Sub[i] = shrinkPattern(s, slots)
		}
		return &c
	}
	return re
}

func minWidth(re *syntax.Regexp) int {
	switch re.Op {
	case syntax.OpLiteral:
		return len(re.Rune)
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return 1
	case syntax.OpCapture, syntax.OpPlus:
		return minWidth(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min * minWidth(re.Sub[0])
	case syntax.OpConcat:
		n := 0
		for _, s := range re.Sub {
			n += minWidth(s)
		}
		return n
	case syntax.OpAlternate:
		n := -1
		for _, s := range re.Sub {
			if w := minWidth(s); n < 0 || w < n {
				n = w
			}
		}
		return max(n, 0)
	}
	return 0
}

// fixedWidth reports the rune count of re when every match has the same one.
func fixedWidth(re *syntax.Regexp) (int, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		return len(re.Rune), true
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return 1, true
	case syntax.OpEmptyMatch, syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText, syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return 0, true
	case syntax.OpCapture:
		return fixedWidth(re.Sub[0])
	case syntax.OpRepeat:
		if re.Min != re.Max {
			return 0, false
		}
		w, ok := fixedWidth(re.Sub[0])
		return re.Min * w, ok
	case syntax.OpConcat:
		n := 0
		for _, s := range re.Sub {
			w, ok := fixedWidth(s)
			if !ok {
				return 0, false
			}
			n += w
		}
		return n, true
	case syntax.OpAlternate:
		n := -1
		for _, s := range re.Sub {
			w, ok := fixedWidth(s)
			if !ok || (n >= 0 && w != n) {
				return 0, false
			}
			n = w
		}
		return n, true
	}
	return 0, false
}
