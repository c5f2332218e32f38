package checker

import (
	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/model"
	"github.com/operator-framework/combinatorics/pkg/sat"
)

// solverChecker answers queries by posting the assignments of a
// combination as assumptions on an incremental problem.
type solverChecker struct {
	numberOfParameters int
	problem            *sat.Problem
}

func newSolverChecker(m *model.Model, constraints []sat.Proposition) (*solverChecker, error) {
	problem, err := sat.NewProblem(m.ParameterSizes(), sat.WithConstraints(constraints...))
	if err != nil {
		return nil, err
	}
	return &solverChecker{
		numberOfParameters: m.NumberOfParameters(),
		problem:            problem,
	}, nil
}

func (s *solverChecker) IsValid(c model.Combination) bool {
	return s.problem.Solve(sat.Assignments(c)...)
}

func (s *solverChecker) IsExtensionValid(c model.Combination, parameterValuePairs ...int) bool {
	extended, ok := extend(c, parameterValuePairs)
	return ok && s.IsValid(extended)
}

func (s *solverChecker) IsDualValid(parameters, values []int) bool {
	assumptions := make([]sat.Proposition, len(parameters))
	for i, p := range parameters {
		assumptions[i] = sat.Eq(p, values[i])
	}
	return s.problem.Solve(assumptions...)
}

func (s *solverChecker) AddConstraint(forbidden model.Combination) {
	s.problem.AddConstraint(sat.Not(sat.CombinationProposition(forbidden)))
}

// HardConstraintChecker treats every exclusion and error spec as a hard
// constraint, with at most one error spec negated.
type HardConstraintChecker struct {
	solverChecker
}

var _ ConstraintChecker = &HardConstraintChecker{}

// NewHardConstraintChecker returns a HardConstraintChecker for m. If negated
// is positive the error spec with that id must be matched instead of
// avoided.
func NewHardConstraintChecker(m *model.Model, negated int) (*HardConstraintChecker, error) {
	if _, _, err := lookupNegated(m, negated); err != nil {
		return nil, err
	}
	s, err := newSolverChecker(m, sat.BuildPropositions(m.AllSpecs(), negated))
	if err != nil {
		return nil, err
	}
	return &HardConstraintChecker{solverChecker: *s}, nil
}

// partition splits the constraints of m into hard ones and relaxable error
// specs. Exclusion specs, correct error specs and the negated spec are hard.
func partition(m *model.Model, negated int) (hard, soft []sat.Proposition, err error) {
	if _, _, err := lookupNegated(m, negated); err != nil {
		return nil, nil, err
	}
	for _, s := range m.ExclusionSpecs() {
		hard = append(hard, sat.SpecProposition(s))
	}
	for _, s := range m.ErrorSpecs() {
		switch {
		case s.ID == negated:
			hard = append(hard, sat.NegatedSpecProposition(s))
		case s.Correct:
			hard = append(hard, sat.SpecProposition(s))
		default:
			soft = append(soft, sat.SpecProposition(s))
		}
	}
	return hard, soft, nil
}

// SoftConstraintChecker requires at least threshold of the relaxable error
// specs to hold.
type SoftConstraintChecker struct {
	solverChecker
	threshold int
}

var _ ConstraintChecker = &SoftConstraintChecker{}

// NewSoftConstraintChecker returns a SoftConstraintChecker for m.
func NewSoftConstraintChecker(m *model.Model, negated, threshold int) (*SoftConstraintChecker, error) {
	hard, soft, err := partition(m, negated)
	if err != nil {
		return nil, err
	}
	s, err := newSolverChecker(m, append(hard, sat.AtLeast(threshold, soft...)))
	if err != nil {
		return nil, err
	}
	return &SoftConstraintChecker{solverChecker: *s, threshold: threshold}, nil
}

// Threshold returns the number of relaxable specs that must hold.
func (s *SoftConstraintChecker) Threshold() int {
	return s.threshold
}

// DiagnosticConstraintChecker bounds the number of relaxed error specs per
// value of the negated spec's parameters: whenever parameter p takes value
// v, at most thresholds[(p,v)] relaxable specs may be violated.
type DiagnosticConstraintChecker struct {
	solverChecker
	thresholds map[diagnosis.ParameterValue]int
}

var _ ConstraintChecker = &DiagnosticConstraintChecker{}

// NewDiagnosticConstraintChecker returns a DiagnosticConstraintChecker for
// m with the error spec identified by negated inverted. Pairs missing from
// thresholds allow no relaxation.
func NewDiagnosticConstraintChecker(m *model.Model, negated int, thresholds map[diagnosis.ParameterValue]int) (*DiagnosticConstraintChecker, error) {
	spec, ok, err := lookupNegated(m, negated)
	if err != nil {
		return nil, err
	}
	hard, soft, err := partition(m, negated)
	if err != nil {
		return nil, err
	}
	if ok {
		sizes := m.ParameterSizes()
		for _, p := range spec.InvolvedParameters {
			for v := 0; v < sizes[p]; v++ {
				relaxed := thresholds[diagnosis.ParameterValue{Parameter: p, Value: v}]
				hard = append(hard, sat.Or(sat.Not(sat.Eq(p, v)), sat.AtLeast(len(soft)-relaxed, soft...)))
			}
		}
	} else {
		hard = append(hard, soft...)
	}

	s, err := newSolverChecker(m, hard)
	if err != nil {
		return nil, err
	}
	copied := make(map[diagnosis.ParameterValue]int, len(thresholds))
	for pv, t := range thresholds {
		copied[pv] = t
	}
	return &DiagnosticConstraintChecker{solverChecker: *s, thresholds: copied}, nil
}

// Threshold returns the number of relaxable specs that may be violated when
// the given parameter takes the given value.
func (d *DiagnosticConstraintChecker) Threshold(parameter, value int) int {
	return d.thresholds[diagnosis.ParameterValue{Parameter: parameter, Value: value}]
}

// ExistentialHardConstraintChecker is a HardConstraintChecker whose negated
// spec is reduced to a single witness row: the first forbidden row that is
// reachable under the remaining constraints.
type ExistentialHardConstraintChecker struct {
	solverChecker
	witness []int
}

var _ ConstraintChecker = &ExistentialHardConstraintChecker{}

// NewExistentialHardConstraintChecker returns an
// ExistentialHardConstraintChecker for m. If no row of the negated spec is
// reachable the checker rejects every combination.
func NewExistentialHardConstraintChecker(m *model.Model, negated int) (*ExistentialHardConstraintChecker, error) {
	spec, ok, err := lookupNegated(m, negated)
	if err != nil {
		return nil, err
	}
	if !ok {
		h, err := NewHardConstraintChecker(m, 0)
		if err != nil {
			return nil, err
		}
		return &ExistentialHardConstraintChecker{solverChecker: h.solverChecker}, nil
	}

	var background []model.TupleSpec
	for _, s := range m.AllSpecs() {
		if s.ID != negated {
			background = append(background, s)
		}
	}
	constraints := sat.BuildPropositions(background, 0)
	s, err := newSolverChecker(m, constraints)
	if err != nil {
		return nil, err
	}

	var witness []int
	for _, row := range spec.Tuples {
		if s.problem.Solve(sat.RowProposition(spec.InvolvedParameters, row)) {
			witness = append([]int(nil), row...)
			break
		}
	}
	if witness == nil {
		s.problem.AddConstraint(sat.Or())
	} else {
		s.problem.AddConstraint(sat.RowProposition(spec.InvolvedParameters, witness))
	}
	return &ExistentialHardConstraintChecker{solverChecker: *s, witness: witness}, nil
}

// Witness returns the forbidden row kept reachable, or nil if none is.
func (e *ExistentialHardConstraintChecker) Witness() []int {
	return append([]int(nil), e.witness...)
}
