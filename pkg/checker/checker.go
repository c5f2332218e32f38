// Package checker answers validity queries for (partial) combinations of a
// model. Every checker is confined to a single generation run; none of them
// is safe for concurrent use.
package checker

import (
	"github.com/operator-framework/combinatorics/pkg/model"
)

// ConstraintChecker decides whether combinations can be extended to a test
// input that satisfies the constraints it was built for.
type ConstraintChecker interface {
	// IsValid reports whether c is valid.
	IsValid(c model.Combination) bool
	// IsExtensionValid reports whether c extended with the given
	// parameter, value pairs is valid. Pairs are flattened as
	// p0, v0, p1, v1, ...
	IsExtensionValid(c model.Combination, parameterValuePairs ...int) bool
	// IsDualValid reports whether the partial assignment of values to
	// parameters is valid on its own.
	IsDualValid(parameters, values []int) bool
	// AddConstraint forbids the given (partial) combination for all
	// subsequent queries.
	AddConstraint(forbidden model.Combination)
}

// NoConstraintChecker accepts every combination.
type NoConstraintChecker struct{}

var _ ConstraintChecker = NoConstraintChecker{}

func (NoConstraintChecker) IsValid(model.Combination) bool { return true }

func (NoConstraintChecker) IsExtensionValid(model.Combination, ...int) bool { return true }

func (NoConstraintChecker) IsDualValid([]int, []int) bool { return true }

func (NoConstraintChecker) AddConstraint(model.Combination) {}

// extend returns a copy of c with the given pairs applied. It reports false
// if a pair reassigns an already set parameter to a different value.
func extend(c model.Combination, pairs []int) (model.Combination, bool) {
	if len(pairs)%2 != 0 {
		panic("parameter value pairs must have even length")
	}
	out := c.Clone()
	for i := 0; i < len(pairs); i += 2 {
		p, v := pairs[i], pairs[i+1]
		if out[p] != model.NoValue && out[p] != v {
			return nil, false
		}
		out[p] = v
	}
	return out, true
}

// lookupNegated returns the error spec to negate. A non-positive id negates
// nothing.
func lookupNegated(m *model.Model, negated int) (model.TupleSpec, bool, error) {
	if negated <= 0 {
		return model.TupleSpec{}, false, nil
	}
	spec, ok := m.ErrorSpec(negated)
	if !ok {
		return model.TupleSpec{}, false, model.ErrUnknownSpec(negated)
	}
	return spec, true, nil
}
