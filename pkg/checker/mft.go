package checker

import (
	"github.com/operator-framework/combinatorics/pkg/mft"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// MinimalForbiddenTuplesChecker answers queries from a minimal
// forbidden-tuple table without a solver.
type MinimalForbiddenTuplesChecker struct {
	numberOfParameters int
	engine             *mft.Engine
}

var _ ConstraintChecker = &MinimalForbiddenTuplesChecker{}

// NewMinimalForbiddenTuplesChecker returns a checker for m. If negated is
// positive the error spec with that id is inverted according to mode.
func NewMinimalForbiddenTuplesChecker(m *model.Model, negated int, mode mft.GenerationMode) (*MinimalForbiddenTuplesChecker, error) {
	tuples := mft.ForbiddenTuples(m)
	if negated > 0 {
		var err error
		if tuples, err = mft.NegatedForbiddenTuples(m, negated, mode); err != nil {
			return nil, err
		}
	}
	return &MinimalForbiddenTuplesChecker{
		numberOfParameters: m.NumberOfParameters(),
		engine:             mft.New(m.ParameterSizes(), tuples),
	}, nil
}

func (c *MinimalForbiddenTuplesChecker) IsValid(combination model.Combination) bool {
	return c.engine.IsValid(combination)
}

func (c *MinimalForbiddenTuplesChecker) IsExtensionValid(combination model.Combination, parameterValuePairs ...int) bool {
	extended, ok := extend(combination, parameterValuePairs)
	return ok && c.engine.IsValid(extended)
}

func (c *MinimalForbiddenTuplesChecker) IsDualValid(parameters, values []int) bool {
	return c.engine.IsValid(model.CombinationOf(c.numberOfParameters, parameters, values))
}

func (c *MinimalForbiddenTuplesChecker) AddConstraint(forbidden model.Combination) {
	c.engine.AddConstraint(forbidden)
}

// ForbiddenTuples returns a snapshot of the checker's table.
func (c *MinimalForbiddenTuplesChecker) ForbiddenTuples() []model.Combination {
	return c.engine.Tuples()
}
