package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Proposition values are boolean formulas over "variable = value" atoms of
// bounded integer variables.
type Proposition interface {
	String() string
	apply(c *logic.C, lm *litMapping) z.Lit
}

type eq struct {
	variable int
	value    int
}

func (p eq) String() string {
	return fmt.Sprintf("x%d=%d", p.variable, p.value)
}

func (p eq) apply(c *logic.C, lm *litMapping) z.Lit {
	return lm.LitOf(p.variable, p.value)
}

// Eq returns a Proposition that holds iff the variable takes the value.
func Eq(variable, value int) Proposition {
	return eq{variable: variable, value: value}
}

type and []Proposition

func (p and) String() string {
	return join("&", p)
}

func (p and) apply(c *logic.C, lm *litMapping) z.Lit {
	if len(p) == 0 {
		return c.T
	}
	ms := make([]z.Lit, len(p))
	for i, each := range p {
		ms[i] = each.apply(c, lm)
	}
	return c.Ands(ms...)
}

// And returns a Proposition that holds iff every operand holds. An empty
// conjunction is true.
func And(ps ...Proposition) Proposition {
	return and(ps)
}

type or []Proposition

func (p or) String() string {
	return join("|", p)
}

func (p or) apply(c *logic.C, lm *litMapping) z.Lit {
	if len(p) == 0 {
		return c.F
	}
	ms := make([]z.Lit, len(p))
	for i, each := range p {
		ms[i] = each.apply(c, lm)
	}
	return c.Ors(ms...)
}

// Or returns a Proposition that holds iff at least one operand holds. An
// empty disjunction is false.
func Or(ps ...Proposition) Proposition {
	return or(ps)
}

type not struct {
	operand Proposition
}

func (p not) String() string {
	return "!" + p.operand.String()
}

func (p not) apply(c *logic.C, lm *litMapping) z.Lit {
	return p.operand.apply(c, lm).Not()
}

// Not returns the negation of p.
func Not(p Proposition) Proposition {
	return not{operand: p}
}

type atLeast struct {
	n        int
	operands []Proposition
}

func (p atLeast) String() string {
	return fmt.Sprintf("atleast(%d, %s)", p.n, join(",", p.operands))
}

func (p atLeast) apply(c *logic.C, lm *litMapping) z.Lit {
	if p.n <= 0 {
		return c.T
	}
	if p.n > len(p.operands) {
		return c.F
	}
	// At least n operands hold iff at most len-n of them fail.
	ms := make([]z.Lit, len(p.operands))
	for i, each := range p.operands {
		ms[i] = each.apply(c, lm).Not()
	}
	return c.CardSort(ms).Leq(len(p.operands) - p.n)
}

// AtLeast returns a Proposition that holds iff at least n operands hold.
func AtLeast(n int, ps ...Proposition) Proposition {
	return atLeast{n: n, operands: ps}
}

func join(sep string, ps []Proposition) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.String()
	}
	return "(" + strings.Join(s, sep) + ")"
}
