package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// litMapping performs translation between integer variables and the
// one-hot literals that represent them in the SAT formula.
type litMapping struct {
	domains []int
	values  [][]z.Lit
	c       *logic.C
	marks   []int8
	errs    []error
}

// newLitMapping allocates one literal per (variable, value) pair and
// returns the propositions that make every variable take exactly one value.
func newLitMapping(domains []int) (*litMapping, []z.Lit) {
	size := 0
	for _, d := range domains {
		size += d
	}
	d := litMapping{
		domains: domains,
		values:  make([][]z.Lit, len(domains)),
		c:       logic.NewCCap(size),
	}

	var roots []z.Lit
	for variable, n := range domains {
		ms := make([]z.Lit, n)
		for value := range ms {
			ms[value] = d.c.Lit()
		}
		d.values[variable] = ms

		roots = append(roots, d.c.Ors(ms...))
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				roots = append(roots, d.c.Or(ms[i].Not(), ms[j].Not()))
			}
		}
	}
	return &d, roots
}

// LitOf returns the literal that is true iff the variable takes the given
// value. Values outside the variable's domain map to false.
func (d *litMapping) LitOf(variable, value int) z.Lit {
	if variable < 0 || variable >= len(d.values) {
		d.errs = append(d.errs, fmt.Errorf("variable %d referenced but not provided", variable))
		return d.c.F
	}
	if value < 0 || value >= len(d.values[variable]) {
		return d.c.F
	}
	return d.values[variable][value]
}

type valuer interface {
	Value(m z.Lit) bool
}

// ValueOf returns the value assigned to the variable in the last model
// found by g, or -1 if no value literal is true.
func (d *litMapping) ValueOf(g valuer, variable int) int {
	for value, m := range d.values[variable] {
		if g.Value(m) {
			return value
		}
	}
	return -1
}

// Init teaches g every clause of the circuit built so far, including the
// constant true literal.
func (d *litMapping) Init(g inter.Adder) {
	d.c.ToCnf(g)
	g.Add(d.c.T)
	g.Add(z.LitNull)
	d.marks = make([]int8, d.c.Len())
	for i := range d.marks {
		d.marks[i] = 1
	}
}

// Flush teaches g the clauses of every circuit node reachable from roots
// that has not been taught before.
func (d *litMapping) Flush(g inter.Adder, roots ...z.Lit) {
	if n := d.c.Len(); len(d.marks) < n {
		marks := make([]int8, len(d.marks), n)
		copy(marks, d.marks)
		d.marks = marks
	}
	d.marks, _ = d.c.CnfSince(g, d.marks, roots...)
}

// Error returns a single error value that is an aggregation of all
// errors encountered during a litMapping's lifetime, or nil if there have
// been no errors. A non-nil return value likely indicates a problem
// with the caller's propositions.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	s := make([]string, len(d.errs))
	for i, err := range d.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}
