package sat

import (
	"github.com/operator-framework/combinatorics/pkg/model"
)

// RowProposition holds iff every parameter takes the value at the same
// position of values.
func RowProposition(parameters, values []int) Proposition {
	ps := make([]Proposition, len(parameters))
	for i, p := range parameters {
		ps[i] = Eq(p, values[i])
	}
	return And(ps...)
}

// CombinationProposition holds iff every assigned parameter of c takes its
// assigned value.
func CombinationProposition(c model.Combination) Proposition {
	var ps []Proposition
	for p, v := range c {
		if v != model.NoValue {
			ps = append(ps, Eq(p, v))
		}
	}
	return And(ps...)
}

// Assignments returns one Eq proposition per assigned parameter of c.
func Assignments(c model.Combination) []Proposition {
	var ps []Proposition
	for p, v := range c {
		if v != model.NoValue {
			ps = append(ps, Eq(p, v))
		}
	}
	return ps
}

func matchesAnyRow(spec model.TupleSpec) Proposition {
	rows := make([]Proposition, len(spec.Tuples))
	for i, row := range spec.Tuples {
		rows[i] = RowProposition(spec.InvolvedParameters, row)
	}
	return Or(rows...)
}

// SpecProposition holds iff no forbidden row of spec is matched.
func SpecProposition(spec model.TupleSpec) Proposition {
	return Not(matchesAnyRow(spec))
}

// NegatedSpecProposition holds iff one of the forbidden rows of spec is
// matched.
func NegatedSpecProposition(spec model.TupleSpec) Proposition {
	return matchesAnyRow(spec)
}

// BuildPropositions returns one proposition per spec. The spec whose id
// equals negated (if any) is inverted so that one of its rows must be
// matched; pass a non-positive id to negate nothing.
func BuildPropositions(specs []model.TupleSpec, negated int) []Proposition {
	out := make([]Proposition, len(specs))
	for i, spec := range specs {
		if spec.ID == negated {
			out[i] = NegatedSpecProposition(spec)
			continue
		}
		out[i] = SpecProposition(spec)
	}
	return out
}
