package mft

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/operator-framework/combinatorics/pkg/model"
)

// GenerationMode selects how a negated error spec is turned into forbidden
// tuples.
type GenerationMode int

const (
	// General keeps every forbidden row of the negated spec reachable.
	General GenerationMode = iota
	// Existential keeps a single witness row of the negated spec reachable.
	Existential
)

func (m GenerationMode) String() string {
	switch m {
	case General:
		return "general"
	case Existential:
		return "existential"
	}
	return fmt.Sprintf("GenerationMode(%d)", int(m))
}

// ForbiddenTuples returns the initial forbidden tuples of m: one entry per
// row of every exclusion and error spec.
func ForbiddenTuples(m *model.Model) []model.Combination {
	var out []model.Combination
	for _, s := range m.AllSpecs() {
		out = append(out, s.Project(m.NumberOfParameters())...)
	}
	return out
}

// NegatedForbiddenTuples returns the initial forbidden tuples of m with the
// error spec identified by negated inverted. In General mode every value
// row over the spec's parameters that is not one of its forbidden rows is
// forbidden. In Existential mode only the first forbidden row that is valid
// under the remaining constraints stays allowed.
func NegatedForbiddenTuples(m *model.Model, negated int, mode GenerationMode) ([]model.Combination, error) {
	spec, ok := m.ErrorSpec(negated)
	if !ok {
		return nil, model.ErrUnknownSpec(negated)
	}

	n := m.NumberOfParameters()
	var background []model.Combination
	for _, s := range m.AllSpecs() {
		if s.ID == negated {
			continue
		}
		background = append(background, s.Project(n)...)
	}

	allowed := spec.Project(n)
	switch mode {
	case General:
	case Existential:
		engine := New(m.ParameterSizes(), background)
		var witness []model.Combination
		for _, row := range allowed {
			if engine.IsValid(row) {
				witness = append(witness, row)
				break
			}
		}
		allowed = witness
	default:
		return nil, errors.Errorf("unsupported generation mode %s", mode)
	}

	sizes := m.ParameterSizes()
	return append(background, complement(n, sizes, spec.InvolvedParameters, allowed)...), nil
}

// complement enumerates every assignment of parameters and returns those not
// listed in allowed.
func complement(n int, sizes []int, parameters []int, allowed []model.Combination) []model.Combination {
	keep := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		keep[a.Key()] = struct{}{}
	}

	var out []model.Combination
	current := model.NewCombination(n)
	var walk func(i int)
	walk = func(i int) {
		if i == len(parameters) {
			if _, ok := keep[current.Key()]; !ok {
				out = append(out, current.Clone())
			}
			return
		}
		p := parameters[i]
		for v := 0; v < sizes[p]; v++ {
			current[p] = v
			walk(i + 1)
		}
		current[p] = model.NoValue
	}
	walk(0)
	return out
}
