// Package heuristics implements content-based disambiguation of languages
// that share a file extension.
//
// A Group holds the ordered rules for one extension. Each rule pairs a
// Predicate, a small boolean tree over regular expressions, with the
// languages it identifies. The first rule whose predicate holds decides the
// result; later rules are never evaluated.
package heuristics

import (
	"regexp"
	"strings"
)

// Op is the kind of a Predicate node
type Op int

const (
	OpAlways Op = iota
	OpPattern
	OpAnd
	OpOr
	OpNot
)

var opNames = map[Op]string{
	OpAlways:  "always",
	OpPattern: "pattern",
	OpAnd:     "and",
	OpOr:      "or",
	OpNot:     "not",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Predicate is a boolean condition over file content.
// Predicates are immutable once built and safe for concurrent use.
type Predicate struct {
	Op       Op
	Pattern  *regexp.Regexp // set for OpPattern
	Children []Predicate    // operands of OpAnd / OpOr, single operand of OpNot
}

// Always holds for any content
func Always() Predicate {
	return Predicate{Op: OpAlways}
}

// Pattern holds when re matches anywhere in the content
func Pattern(re *regexp.Regexp) Predicate {
	return Predicate{Op: OpPattern, Pattern: re}
}

// And holds when every child holds. And() with no children holds.
func And(children ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Children: children}
}

// Or holds when at least one child holds. Or() with no children never holds.
func Or(children ...Predicate) Predicate {
	return Predicate{Op: OpOr, Children: children}
}

// Not inverts child
func Not(child Predicate) Predicate {
	return Predicate{Op: OpNot, Children: []Predicate{child}}
}

// Eval evaluates the predicate against content. And and Or short-circuit
// left to right.
func (p Predicate) Eval(content string) bool {
	switch p.Op {
	case OpAlways:
		return true
	case OpPattern:
		return p.Pattern != nil && p.Pattern.MatchString(content)
	case OpAnd:
		for _, c := range p.Children {
			if !c.Eval(content) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range p.Children {
			if c.Eval(content) {
				return true
			}
		}
		return false
	case OpNot:
		if len(p.Children) == 0 {
			return true
		}
		return !p.Children[0].Eval(content)
	default:
		return false
	}
}

// String renders the predicate in a compact prefix form, e.g.
// and(/^#include/, not(/std::/))
func (p Predicate) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func (p Predicate) write(b *strings.Builder) {
	switch p.Op {
	case OpAlways:
		b.WriteString("always")
	case OpPattern:
		b.WriteByte('/')
		if p.Pattern != nil {
			b.WriteString(strings.TrimPrefix(p.Pattern.String(), multiline))
		}
		b.WriteByte('/')
	default:
		b.WriteString(p.Op.String())
		b.WriteByte('(')
		for i, c := range p.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			c.write(b)
		}
		b.WriteByte(')')
	}
}
