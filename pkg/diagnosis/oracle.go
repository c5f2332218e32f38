package diagnosis

import (
	"github.com/operator-framework/combinatorics/pkg/model"
	"github.com/operator-framework/combinatorics/pkg/sat"
)

// Oracle decides whether a fixed background together with a subset of
// relaxable constraints is consistent. Constraints are identified by their
// index in the candidate list the oracle was built for.
type Oracle interface {
	IsConsistent(constraints []int) bool
}

// CoreOracle is an Oracle that can report which of the constraints of its
// most recent inconsistent query took part in the inconsistency.
type CoreOracle interface {
	Oracle
	Core() []int
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(constraints []int) bool

func (f OracleFunc) IsConsistent(constraints []int) bool {
	return f(constraints)
}

// specOracle answers consistency queries for the rows of one negated spec.
// Exclusion specs and correct error specs are hard; every other error spec
// is a relaxable candidate compiled into its own handle.
type specOracle struct {
	problem    *sat.Problem
	candidates []model.TupleSpec
	handles    []sat.Handle
	byHandle   map[sat.Handle]int
	row        []sat.Proposition
}

func newSpecOracle(m *model.Model, negated model.TupleSpec, options ...sat.Option) (*specOracle, error) {
	var hard []sat.Proposition
	for _, s := range m.ExclusionSpecs() {
		hard = append(hard, sat.SpecProposition(s))
	}
	o := &specOracle{byHandle: make(map[sat.Handle]int)}
	for _, s := range m.ErrorSpecs() {
		switch {
		case s.ID == negated.ID:
		case s.Correct:
			hard = append(hard, sat.SpecProposition(s))
		default:
			o.candidates = append(o.candidates, s)
		}
	}

	problem, err := sat.NewProblem(m.ParameterSizes(), append(options, sat.WithConstraints(hard...))...)
	if err != nil {
		return nil, err
	}
	o.problem = problem
	for i, s := range o.candidates {
		h := problem.Compile(sat.SpecProposition(s))
		o.handles = append(o.handles, h)
		o.byHandle[h] = i
	}
	return o, problem.Err()
}

// forRow fixes the row of the negated spec for subsequent queries.
func (o *specOracle) forRow(parameters, values []int) *specOracle {
	row := make([]sat.Proposition, len(parameters))
	for i, p := range parameters {
		row[i] = sat.Eq(p, values[i])
	}
	return &specOracle{
		problem:    o.problem,
		candidates: o.candidates,
		handles:    o.handles,
		byHandle:   o.byHandle,
		row:        row,
	}
}

func (o *specOracle) all() []int {
	out := make([]int, len(o.candidates))
	for i := range out {
		out[i] = i
	}
	return out
}

func (o *specOracle) IsConsistent(constraints []int) bool {
	handles := make([]sat.Handle, len(constraints))
	for i, c := range constraints {
		handles[i] = o.handles[c]
	}
	return o.problem.SolveWith(handles, o.row...)
}

func (o *specOracle) Core() []int {
	var out []int
	for _, h := range o.problem.Conflicts() {
		if c, ok := o.byHandle[h]; ok {
			out = append(out, c)
		}
	}
	return out
}
