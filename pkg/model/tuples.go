package model

import (
	"fmt"
	"strings"
)

// TupleSpec describes a set of forbidden value rows over a fixed list of
// parameters. Exclusion specs are always hard; error specs may be negated
// one at a time to generate negative tests.
type TupleSpec struct {
	// ID is positive and unique across exclusion and error specs.
	ID int `json:"id"`
	// InvolvedParameters lists the constrained parameters in row order.
	InvolvedParameters []int `json:"parameters"`
	// Tuples holds the forbidden rows. Each row has one value per
	// involved parameter.
	Tuples [][]int `json:"tuples"`
	// Correct marks the spec as independently verified. Correct specs are
	// never blamed during diagnosis.
	Correct bool `json:"correct,omitempty"`
}

// Project returns every forbidden row as a full-length Combination.
func (s TupleSpec) Project(numberOfParameters int) []Combination {
	out := make([]Combination, 0, len(s.Tuples))
	for _, row := range s.Tuples {
		out = append(out, CombinationOf(numberOfParameters, s.InvolvedParameters, row))
	}
	return out
}

// Matches reports whether the combination agrees with one of the forbidden
// rows on every involved parameter.
func (s TupleSpec) Matches(c Combination) bool {
	for _, row := range s.Tuples {
		if s.matchesRow(c, row) {
			return true
		}
	}
	return false
}

func (s TupleSpec) matchesRow(c Combination, row []int) bool {
	for i, p := range s.InvolvedParameters {
		if p >= len(c) || c[p] != row[i] {
			return false
		}
	}
	return true
}

// InvolvesParameter reports whether p is one of the involved parameters.
func (s TupleSpec) InvolvesParameter(p int) bool {
	for _, q := range s.InvolvedParameters {
		if q == p {
			return true
		}
	}
	return false
}

func (s TupleSpec) String() string {
	rows := make([]string, len(s.Tuples))
	for i, row := range s.Tuples {
		rows[i] = fmt.Sprint(row)
	}
	return fmt.Sprintf("spec %d on %v forbids {%s}", s.ID, s.InvolvedParameters, strings.Join(rows, " "))
}

func (s TupleSpec) clone() TupleSpec {
	out := TupleSpec{
		ID:                 s.ID,
		InvolvedParameters: append([]int(nil), s.InvolvedParameters...),
		Tuples:             make([][]int, len(s.Tuples)),
		Correct:            s.Correct,
	}
	for i, row := range s.Tuples {
		out.Tuples[i] = append([]int(nil), row...)
	}
	return out
}

// SeedMode controls whether a seed may share a generated row with other
// seeds.
type SeedMode int

const (
	// NonExclusive seeds are merged with other seeds that agree on every
	// jointly assigned parameter.
	NonExclusive SeedMode = iota
	// Exclusive seeds never share a row with another exclusive seed.
	Exclusive
)

func (m SeedMode) String() string {
	switch m {
	case NonExclusive:
		return "non-exclusive"
	case Exclusive:
		return "exclusive"
	}
	return fmt.Sprintf("SeedMode(%d)", int(m))
}

// Seed is a partial test row that must appear in the generated suite.
type Seed struct {
	Combination Combination
	Mode        SeedMode
	// Priority orders seed insertion; higher priorities are placed first.
	Priority float64
}

// StrengthGroup requires its parameters to be covered at a strength higher
// than the model default.
type StrengthGroup struct {
	Parameters []int `json:"parameters"`
	Strength   int   `json:"strength"`
}
